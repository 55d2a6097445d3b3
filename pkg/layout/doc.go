// Package layout projects a behavioral model onto a positioned sequence
// diagram.
//
// [Compute] is a pure function of its input: it performs no I/O, never
// fails, and returns byte-identical output for identical diagrams, so
// callers may recompute on every edit and diff the results.
//
// # Geometry
//
// Actors occupy fixed-width columns in model order. Each flow consumes
// rows from a single running cursor: an optional section header when the
// diagram has more than one flow, a trigger marker above the first row,
// one row per renderable step, and a gap after the flow. A step is
// renderable only when both endpoints resolve to known actors; anything
// else is skipped and recorded in [Layout.Skipped].
//
// # Output
//
// A [Layout] holds actor, flow-header and trigger [Node] values followed by
// one [Edge] per rendered step. Coordinates are in diagram units with the
// first actor column at x = 0; trigger markers may extend left of it, which
// is reflected in [Layout.MinX].
package layout
