// Package editor holds the editing session for one diagram.
//
// A [Session] is an explicit object owned by whoever drives the editor (a
// CLI command, an HTTP handler, the terminal viewer). It serializes
// mutations, validates every entity before it enters the diagram, notifies
// subscribers after each change, and persists through a [store.Store].
//
// Reads always return copies, so callers can hold a diagram while the
// session keeps changing:
//
//	s, err := editor.Open(ctx, st, id)
//	if err != nil {
//	    return err
//	}
//	s.Subscribe(func(d *model.Diagram) { redraw(layout.Compute(d)) })
//	if _, err := s.AddActor(model.Actor{Name: "Cart", Type: model.ActorStore}); err != nil {
//	    return err
//	}
//	return s.Save(ctx)
//
// Deletes never cascade: removing an actor leaves steps that reference it
// in place, and the layout engine skips them.
package editor
