package editor

import (
	"slices"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/model"
)

// ActorPatch is a partial actor update. Nil fields are left unchanged.
type ActorPatch struct {
	Name        *string
	Type        *model.ActorType
	Scope       *model.StateScope
	Description *string
	Color       *string
	Parent      *string
}

func (p ActorPatch) apply(a *model.Actor) {
	set(&a.Name, p.Name)
	set(&a.Type, p.Type)
	set(&a.Scope, p.Scope)
	set(&a.Description, p.Description)
	set(&a.Color, p.Color)
	set(&a.Parent, p.Parent)
}

// StatePatch is a partial state update.
type StatePatch struct {
	Name        *string
	Owner       *string
	DataType    *string
	Description *string
}

func (p StatePatch) apply(s *model.State) {
	set(&s.Name, p.Name)
	set(&s.Owner, p.Owner)
	set(&s.DataType, p.DataType)
	set(&s.Description, p.Description)
}

// ConditionPatch is a partial condition update.
type ConditionPatch struct {
	Expression  *string
	Description *string
}

func (p ConditionPatch) apply(c *model.Condition) {
	set(&c.Expression, p.Expression)
	set(&c.Description, p.Description)
}

// FlowPatch is a partial flow update. Steps are edited with the step
// methods.
type FlowPatch struct {
	Name        *string
	Description *string
	Trigger     *model.FlowTrigger
}

func (p FlowPatch) apply(f *model.Flow) {
	set(&f.Name, p.Name)
	set(&f.Description, p.Description)
	set(&f.Trigger, p.Trigger)
}

// StepPatch is a partial step update.
type StepPatch struct {
	Type        *model.StepType
	From        *string
	To          *string
	Action      *string
	State       *string
	Payload     *string
	Description *string
	Condition   *string
	IsAsync     *bool
}

func (p StepPatch) apply(s *model.FlowStep) {
	set(&s.Type, p.Type)
	set(&s.From, p.From)
	set(&s.To, p.To)
	set(&s.Action, p.Action)
	set(&s.State, p.State)
	set(&s.Payload, p.Payload)
	set(&s.Description, p.Description)
	set(&s.Condition, p.Condition)
	set(&s.IsAsync, p.IsAsync)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// matches returns the positions of every item with the given id.
func matches[T any](items []T, id string, key func(*T) string) []int {
	var out []int
	for i := range items {
		if key(&items[i]) == id {
			out = append(out, i)
		}
	}
	return out
}

func notFound(kind, id string) error {
	return errors.New(errors.ErrCodeNotFound, "%s %q not found", kind, id)
}

func conflict(kind, id string) error {
	return errors.New(errors.ErrCodeConflict, "%s %q already exists", kind, id)
}

// add appends item after assigning an id and validating it.
func add[T any](items *[]T, kind string, item T, key func(*T) *string, validate func(T) error) (T, error) {
	if *key(&item) == "" {
		*key(&item) = model.NewID()
	}
	if err := validate(item); err != nil {
		return item, err
	}
	id := *key(&item)
	if len(matches(*items, id, func(t *T) string { return *key(t) })) > 0 {
		return item, conflict(kind, id)
	}
	*items = append(*items, item)
	return item, nil
}

// update applies patch to every item with id. The patched value is
// validated before anything is written.
func update[T any](items []T, kind, id string, key func(*T) string, patch func(*T), validate func(T) error) (T, error) {
	idx := matches(items, id, key)
	if len(idx) == 0 {
		var zero T
		return zero, notFound(kind, id)
	}
	next := items[idx[0]]
	patch(&next)
	if err := validate(next); err != nil {
		return next, err
	}
	for _, i := range idx {
		patch(&items[i])
	}
	return next, nil
}

// remove deletes every item with id.
func remove[T any](items *[]T, kind, id string, key func(*T) string) error {
	n := len(*items)
	*items = slices.DeleteFunc(*items, func(t T) bool { return key(&t) == id })
	if len(*items) == n {
		return notFound(kind, id)
	}
	return nil
}

func actorID(a *model.Actor) *string         { return &a.ID }
func stateID(s *model.State) *string         { return &s.ID }
func conditionID(c *model.Condition) *string { return &c.ID }
func flowID(f *model.Flow) *string           { return &f.ID }
func stepID(s *model.FlowStep) *string       { return &s.ID }

func value[T any](f func(*T) *string) func(*T) string {
	return func(t *T) string { return *f(t) }
}

// AddActor appends a as the right-most column. An empty id is replaced
// with a fresh one; the stored actor is returned.
func (s *Session) AddActor(a model.Actor) (model.Actor, error) {
	var out model.Actor
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = add(&d.Actors, "actor", a, actorID, model.ValidateActor)
		return err
	})
	return out, err
}

// UpdateActor applies p to the actor with id.
func (s *Session) UpdateActor(id string, p ActorPatch) (model.Actor, error) {
	var out model.Actor
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = update(d.Actors, "actor", id, value(actorID), p.apply, model.ValidateActor)
		return err
	})
	return out, err
}

// DeleteActor removes the actor. References to it are left in place.
func (s *Session) DeleteActor(id string) error {
	return s.mutate(func(d *model.Diagram) error {
		return remove(&d.Actors, "actor", id, value(actorID))
	})
}

// MoveActor moves the actor with id to column index, clamped to the
// valid range.
func (s *Session) MoveActor(id string, index int) error {
	return s.mutate(func(d *model.Diagram) error {
		return move(d.Actors, "actor", id, index, value(actorID))
	})
}

// AddState appends a state definition.
func (s *Session) AddState(st model.State) (model.State, error) {
	var out model.State
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = add(&d.States, "state", st, stateID, model.ValidateState)
		return err
	})
	return out, err
}

// UpdateState applies p to the state with id.
func (s *Session) UpdateState(id string, p StatePatch) (model.State, error) {
	var out model.State
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = update(d.States, "state", id, value(stateID), p.apply, model.ValidateState)
		return err
	})
	return out, err
}

// DeleteState removes the state definition.
func (s *Session) DeleteState(id string) error {
	return s.mutate(func(d *model.Diagram) error {
		return remove(&d.States, "state", id, value(stateID))
	})
}

// AddCondition appends a condition.
func (s *Session) AddCondition(c model.Condition) (model.Condition, error) {
	var out model.Condition
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = add(&d.Conditions, "condition", c, conditionID, model.ValidateCondition)
		return err
	})
	return out, err
}

// UpdateCondition applies p to the condition with id.
func (s *Session) UpdateCondition(id string, p ConditionPatch) (model.Condition, error) {
	var out model.Condition
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = update(d.Conditions, "condition", id, value(conditionID), p.apply, model.ValidateCondition)
		return err
	})
	return out, err
}

// DeleteCondition removes the condition.
func (s *Session) DeleteCondition(id string) error {
	return s.mutate(func(d *model.Diagram) error {
		return remove(&d.Conditions, "condition", id, value(conditionID))
	})
}

// AddFlow appends a flow. Steps without ids receive fresh ones.
func (s *Session) AddFlow(f model.Flow) (model.Flow, error) {
	f.Steps = slices.Clone(f.Steps)
	if f.Steps == nil {
		f.Steps = []model.FlowStep{}
	}
	for i := range f.Steps {
		if f.Steps[i].ID == "" {
			f.Steps[i].ID = model.NewID()
		}
	}
	var out model.Flow
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = add(&d.Flows, "flow", f, flowID, model.ValidateFlow)
		return err
	})
	return out, err
}

// UpdateFlow applies p to the flow with id.
func (s *Session) UpdateFlow(id string, p FlowPatch) (model.Flow, error) {
	var out model.Flow
	err := s.mutate(func(d *model.Diagram) error {
		var err error
		out, err = update(d.Flows, "flow", id, value(flowID), p.apply, model.ValidateFlow)
		return err
	})
	return out, err
}

// DeleteFlow removes the flow and its steps.
func (s *Session) DeleteFlow(id string) error {
	return s.mutate(func(d *model.Diagram) error {
		return remove(&d.Flows, "flow", id, value(flowID))
	})
}

// withFlow runs fn on the first flow with id.
func withFlow(d *model.Diagram, id string, fn func(f *model.Flow) error) error {
	idx := matches(d.Flows, id, value(flowID))
	if len(idx) == 0 {
		return notFound("flow", id)
	}
	return fn(&d.Flows[idx[0]])
}

// AddStep appends a step to the flow.
func (s *Session) AddStep(flow string, st model.FlowStep) (model.FlowStep, error) {
	var out model.FlowStep
	err := s.mutate(func(d *model.Diagram) error {
		return withFlow(d, flow, func(f *model.Flow) error {
			var err error
			out, err = add(&f.Steps, "step", st, stepID, model.ValidateStep)
			return err
		})
	})
	return out, err
}

// UpdateStep applies p to the step with id in the flow.
func (s *Session) UpdateStep(flow, id string, p StepPatch) (model.FlowStep, error) {
	var out model.FlowStep
	err := s.mutate(func(d *model.Diagram) error {
		return withFlow(d, flow, func(f *model.Flow) error {
			var err error
			out, err = update(f.Steps, "step", id, value(stepID), p.apply, model.ValidateStep)
			return err
		})
	})
	return out, err
}

// DeleteStep removes the step from the flow.
func (s *Session) DeleteStep(flow, id string) error {
	return s.mutate(func(d *model.Diagram) error {
		return withFlow(d, flow, func(f *model.Flow) error {
			return remove(&f.Steps, "step", id, value(stepID))
		})
	})
}

// MoveStep moves the step to position index within its flow.
func (s *Session) MoveStep(flow, id string, index int) error {
	return s.mutate(func(d *model.Diagram) error {
		return withFlow(d, flow, func(f *model.Flow) error {
			return move(f.Steps, "step", id, index, value(stepID))
		})
	})
}

// move relocates the first item with id to index, shifting the items in
// between.
func move[T any](items []T, kind, id string, index int, key func(*T) string) error {
	idx := matches(items, id, key)
	if len(idx) == 0 {
		return notFound(kind, id)
	}
	from := idx[0]
	to := max(0, min(index, len(items)-1))
	item := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = item
	return nil
}
