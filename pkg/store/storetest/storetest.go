// Package storetest provides the behavioral contract every store backend
// must satisfy.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/store"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 123_000_000, time.UTC)

// Diagram returns a populated diagram with the given id, updated at
// base+offset.
func Diagram(id string, offset time.Duration) *model.Diagram {
	return &model.Diagram{
		ID:        id,
		Name:      "Diagram " + id,
		CreatedAt: base,
		UpdatedAt: base.Add(offset),
		Actors: []model.Actor{
			{ID: "A", Name: "Button", Type: model.ActorComponent},
			{ID: "B", Name: "Cart", Type: model.ActorStore, Scope: model.ScopeGlobal},
		},
		States: []model.State{{ID: "s1", Name: "cartItems", Owner: "B"}},
		Flows: []model.Flow{{
			ID:      "f1",
			Name:    "Add",
			Trigger: model.FlowTrigger{Type: model.TriggerUserAction, Actor: "A", Action: "click"},
			Steps: []model.FlowStep{
				{ID: "e1", Type: model.StepDispatch, From: "A", To: "B", Action: "ADD"},
				{ID: "e2", Type: model.StepStateChange, From: "B", To: "A", State: "s1"},
			},
		}},
		Conditions: []model.Condition{},
	}
}

// Run exercises st against the store contract. st must start empty.
func Run(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := st.Get(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeDiagramNotFound), "got %v", err)
	})

	t.Run("PutGet", func(t *testing.T) {
		d := Diagram("put-get", 0)
		require.NoError(t, st.Put(ctx, d))

		got, err := st.Get(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.Name, got.Name)
		assert.True(t, d.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, d.UpdatedAt.Equal(got.UpdatedAt))
		assert.Equal(t, d.Actors, got.Actors)
		assert.Equal(t, d.States, got.States)
		assert.Equal(t, d.Flows, got.Flows)
		assert.NotNil(t, got.Conditions)

		got.Name = "mutated"
		again, err := st.Get(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.Name, again.Name, "Get must return a copy")

		require.NoError(t, st.Delete(ctx, d.ID))
	})

	t.Run("PutReplaces", func(t *testing.T) {
		d := Diagram("replace", 0)
		require.NoError(t, st.Put(ctx, d))
		d.Name = "Renamed"
		d.Actors = d.Actors[:1]
		require.NoError(t, st.Put(ctx, d))

		got, err := st.Get(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Len(t, got.Actors, 1)

		require.NoError(t, st.Delete(ctx, d.ID))
	})

	t.Run("PutInvalidID", func(t *testing.T) {
		err := st.Put(ctx, Diagram("../escape", 0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidID), "got %v", err)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		assert.NoError(t, st.Delete(ctx, "never-existed"))
	})

	t.Run("Delete", func(t *testing.T) {
		d := Diagram("delete-me", 0)
		require.NoError(t, st.Put(ctx, d))
		require.NoError(t, st.Delete(ctx, d.ID))
		_, err := st.Get(ctx, d.ID)
		assert.True(t, errors.Is(err, errors.ErrCodeDiagramNotFound))
	})

	t.Run("ListOrder", func(t *testing.T) {
		require.NoError(t, st.Put(ctx, Diagram("old", time.Minute)))
		require.NoError(t, st.Put(ctx, Diagram("new", time.Hour)))
		require.NoError(t, st.Put(ctx, Diagram("tie-b", 30*time.Minute)))
		require.NoError(t, st.Put(ctx, Diagram("tie-a", 30*time.Minute)))

		list, err := st.List(ctx)
		require.NoError(t, err)
		ids := make([]string, len(list))
		for i, s := range list {
			ids[i] = s.ID
		}
		assert.Equal(t, []string{"new", "tie-a", "tie-b", "old"}, ids)

		first := list[0]
		assert.Equal(t, "Diagram new", first.Name)
		assert.Equal(t, 2, first.Actors)
		assert.Equal(t, 1, first.States)
		assert.Equal(t, 1, first.Flows)
		assert.Equal(t, 2, first.Steps)
		assert.Equal(t, 0, first.Conditions)

		for _, id := range ids {
			require.NoError(t, st.Delete(ctx, id))
		}
		list, err = st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
