// Package io converts diagrams to and from their persisted and exchanged
// document forms.
//
// # Record
//
// A [Record] is the at-rest form of a diagram: identical to
// [model.Diagram] except that createdAt and updatedAt are ISO-8601 strings
// in UTC with millisecond precision ("2024-05-01T12:00:00.000Z"). Stores
// persist records; [ToRecord] and [FromRecord] convert.
//
// # Import
//
// [Import] accepts a JSON or YAML document and applies the exchange rules:
//
//   - the document must be an object with non-empty string "id" and "name"
//   - "actors", "states", "flows" and "conditions" that are missing or not
//     arrays become empty
//   - missing timestamps default to the import time
//
// Any failure is reported as a single INVALID_FORMAT error; callers keep
// their current diagram untouched in that case.
//
// # Export
//
// [Export] writes the record form as indented JSON or as YAML. Exported
// documents re-import to an equal diagram.
package io
