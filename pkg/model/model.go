package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Actor is a participant drawn as a column with a lifeline.
type Actor struct {
	ID          string     `json:"id" yaml:"id" bson:"id" validate:"required"`
	Name        string     `json:"name" yaml:"name" bson:"name" validate:"required,max=256"`
	Type        ActorType  `json:"type" yaml:"type" bson:"type" validate:"required,oneof=component store service external"`
	Scope       StateScope `json:"scope,omitempty" yaml:"scope,omitempty" bson:"scope,omitempty" validate:"omitempty,oneof=local subtree global"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Color       string     `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty" validate:"omitempty,iscolor"`
	Parent      string     `json:"parent,omitempty" yaml:"parent,omitempty" bson:"parent,omitempty"` // Enclosing actor id; carried, not drawn
}

// State is a named piece of data owned by an actor.
type State struct {
	ID          string `json:"id" yaml:"id" bson:"id" validate:"required"`
	Name        string `json:"name" yaml:"name" bson:"name" validate:"required,max=256"`
	Owner       string `json:"owner" yaml:"owner" bson:"owner"`
	DataType    string `json:"dataType,omitempty" yaml:"dataType,omitempty" bson:"dataType,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
}

// Condition is a reusable guard expression that steps can reference.
type Condition struct {
	ID          string `json:"id" yaml:"id" bson:"id" validate:"required"`
	Expression  string `json:"expression" yaml:"expression" bson:"expression" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
}

// FlowTrigger is the event that starts a flow.
type FlowTrigger struct {
	Type   TriggerType `json:"type" yaml:"type" bson:"type" validate:"required,oneof=userAction lifecycle subscription timer"`
	Actor  string      `json:"actor" yaml:"actor" bson:"actor"`
	Action string      `json:"action" yaml:"action" bson:"action"`
	Target string      `json:"target,omitempty" yaml:"target,omitempty" bson:"target,omitempty"`
}

// FlowStep is a single interaction between two actors.
type FlowStep struct {
	ID          string   `json:"id" yaml:"id" bson:"id" validate:"required"`
	Type        StepType `json:"type" yaml:"type" bson:"type" validate:"required,oneof=dispatch stateChange subscribe effect render"`
	From        string   `json:"from,omitempty" yaml:"from,omitempty" bson:"from,omitempty"`
	To          string   `json:"to,omitempty" yaml:"to,omitempty" bson:"to,omitempty"`
	Action      string   `json:"action,omitempty" yaml:"action,omitempty" bson:"action,omitempty"`
	State       string   `json:"state,omitempty" yaml:"state,omitempty" bson:"state,omitempty"`
	Payload     string   `json:"payload,omitempty" yaml:"payload,omitempty" bson:"payload,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Condition   string   `json:"condition,omitempty" yaml:"condition,omitempty" bson:"condition,omitempty"`
	IsAsync     bool     `json:"isAsync,omitempty" yaml:"isAsync,omitempty" bson:"isAsync,omitempty"`
}

// Flow is an ordered sequence of steps started by a trigger.
type Flow struct {
	ID          string      `json:"id" yaml:"id" bson:"id" validate:"required"`
	Name        string      `json:"name" yaml:"name" bson:"name" validate:"required,max=256"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Trigger     FlowTrigger `json:"trigger" yaml:"trigger" bson:"trigger"`
	Steps       []FlowStep  `json:"steps" yaml:"steps" bson:"steps" validate:"dive"`
}

// Diagram is the root document.
type Diagram struct {
	ID          string      `json:"id" yaml:"id" bson:"id"`
	Name        string      `json:"name" yaml:"name" bson:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" yaml:"updatedAt" bson:"updatedAt"`
	Actors      []Actor     `json:"actors" yaml:"actors" bson:"actors"`
	States      []State     `json:"states" yaml:"states" bson:"states"`
	Flows       []Flow      `json:"flows" yaml:"flows" bson:"flows"`
	Conditions  []Condition `json:"conditions" yaml:"conditions" bson:"conditions"`
}

// NewID returns a fresh random identifier for a diagram or entity.
func NewID() string {
	return uuid.NewString()
}

// New returns an empty diagram named name, stamped with now.
func New(name string, now time.Time) *Diagram {
	now = now.UTC().Truncate(time.Millisecond)
	return &Diagram{
		ID:         NewID(),
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
		Actors:     []Actor{},
		States:     []State{},
		Flows:      []Flow{},
		Conditions: []Condition{},
	}
}

// TotalSteps returns the number of steps across all flows.
func (d *Diagram) TotalSteps() int {
	n := 0
	for i := range d.Flows {
		n += len(d.Flows[i].Steps)
	}
	return n
}

// Normalize replaces nil collections with empty ones so the document
// always serializes arrays rather than null.
func (d *Diagram) Normalize() {
	if d.Actors == nil {
		d.Actors = []Actor{}
	}
	if d.States == nil {
		d.States = []State{}
	}
	if d.Flows == nil {
		d.Flows = []Flow{}
	}
	if d.Conditions == nil {
		d.Conditions = []Condition{}
	}
	for i := range d.Flows {
		if d.Flows[i].Steps == nil {
			d.Flows[i].Steps = []FlowStep{}
		}
	}
}

// Clone returns a deep copy of d. A nil diagram clones to nil.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	c := *d
	c.Actors = slices.Clone(d.Actors)
	c.States = slices.Clone(d.States)
	c.Conditions = slices.Clone(d.Conditions)
	c.Flows = make([]Flow, len(d.Flows))
	for i, f := range d.Flows {
		f.Steps = slices.Clone(f.Steps)
		c.Flows[i] = f
	}
	c.Normalize()
	return &c
}
