// Package store persists diagrams.
//
// Every backend stores the record form from [io.Record] so that documents
// written by one backend can be exported, imported or migrated to another
// without loss. Backends:
//   - [Memory]: in-process map for tests and ephemeral servers
//   - [File]: one JSON file per diagram, the CLI default
//   - [Redis]: snappy-compressed records with a sorted index
//   - [Mongo]: one document per diagram
//   - [Postgres]: a jsonb column per diagram
//
// Lookups of an unknown id fail with DIAGRAM_NOT_FOUND; deleting an unknown
// id succeeds.
package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/model"
)

// Store is implemented by every persistence backend.
type Store interface {
	// Get returns a copy of the stored diagram.
	Get(ctx context.Context, id string) (*model.Diagram, error)

	// Put inserts or replaces the diagram with d.ID.
	Put(ctx context.Context, d *model.Diagram) error

	// Delete removes the diagram. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries ordered by most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	Close() error
}

// Summary describes a stored diagram without its contents.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Actors      int       `json:"actors"`
	States      int       `json:"states"`
	Flows       int       `json:"flows"`
	Steps       int       `json:"steps"`
	Conditions  int       `json:"conditions"`
}

// Summarize builds the summary of d.
func Summarize(d *model.Diagram) Summary {
	return Summary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Actors:      len(d.Actors),
		States:      len(d.States),
		Flows:       len(d.Flows),
		Steps:       d.TotalSteps(),
		Conditions:  len(d.Conditions),
	}
}

// SortSummaries orders summaries by UpdatedAt descending, then by id.
func SortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// NotFound returns the error reported for an unknown diagram id.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeDiagramNotFound, "diagram %q not found", id)
}

// unavailable wraps a backend failure.
func unavailable(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStoreUnavailable, err, format, args...)
}

// checkPut validates a diagram before it is written.
func checkPut(d *model.Diagram) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "diagram is nil")
	}
	return errors.ValidateID(d.ID)
}

// alive reports a cancelled context as a store failure.
func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err, "store request cancelled")
	}
	return nil
}
