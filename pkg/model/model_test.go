package model

import (
	"testing"
	"time"

	"github.com/matzehuels/stateflow/pkg/errors"
)

func sample() *Diagram {
	d := New("cart", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	d.Actors = []Actor{
		{ID: "cart", Name: "CartButton", Type: ActorComponent},
		{ID: "store", Name: "CartStore", Type: ActorStore, Scope: ScopeGlobal},
		{ID: "cart", Name: "Shadow", Type: ActorService},
	}
	d.States = []State{{ID: "items", Name: "cartItems", Owner: "store"}}
	d.Conditions = []Condition{{ID: "c1", Expression: "items > 0"}}
	d.Flows = []Flow{{
		ID:      "add",
		Name:    "Add to cart",
		Trigger: FlowTrigger{Type: TriggerUserAction, Actor: "cart", Action: "click"},
		Steps: []FlowStep{
			{ID: "s1", Type: StepDispatch, From: "cart", To: "store", Action: "addItem"},
		},
	}}
	return d
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))
	d := New("checkout", now)

	if d.ID == "" {
		t.Fatal("ID is empty")
	}
	if d.Name != "checkout" {
		t.Errorf("Name = %q, want checkout", d.Name)
	}
	if !d.CreatedAt.Equal(d.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", d.CreatedAt, d.UpdatedAt)
	}
	if d.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt location = %v, want UTC", d.CreatedAt.Location())
	}
	if got := d.CreatedAt.Nanosecond(); got != 123000000 {
		t.Errorf("CreatedAt nanos = %d, want millisecond precision", got)
	}
	if d.Actors == nil || d.States == nil || d.Flows == nil || d.Conditions == nil {
		t.Error("collections must be empty, not nil")
	}

	if other := New("checkout", now); other.ID == d.ID {
		t.Error("two diagrams share an id")
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := sample()
	c := d.Clone()

	c.Actors[0].Name = "changed"
	c.Flows[0].Steps[0].Action = "changed"
	c.Flows[0].Name = "changed"

	if d.Actors[0].Name != "CartButton" {
		t.Error("actor mutation leaked into original")
	}
	if d.Flows[0].Steps[0].Action != "addItem" {
		t.Error("step mutation leaked into original")
	}
	if d.Flows[0].Name != "Add to cart" {
		t.Error("flow mutation leaked into original")
	}

	var nilDiagram *Diagram
	if nilDiagram.Clone() != nil {
		t.Error("Clone(nil) should be nil")
	}
}

func TestNormalize(t *testing.T) {
	d := &Diagram{Flows: []Flow{{ID: "f"}}}
	d.Normalize()
	if d.Actors == nil || d.States == nil || d.Conditions == nil || d.Flows[0].Steps == nil {
		t.Error("Normalize left a nil collection")
	}
}

func TestTotalSteps(t *testing.T) {
	d := sample()
	d.Flows = append(d.Flows, Flow{ID: "f2", Steps: make([]FlowStep, 3)})
	if got := d.TotalSteps(); got != 4 {
		t.Errorf("TotalSteps() = %d, want 4", got)
	}
}

func TestIndex(t *testing.T) {
	ix := NewIndex(sample())

	a, ok := ix.Actor("cart")
	if !ok || a.Name != "CartButton" {
		t.Errorf("Actor(cart) = %+v, %v; want first occurrence", a, ok)
	}
	if pos, ok := ix.ActorPosition("store"); !ok || pos != 1 {
		t.Errorf("ActorPosition(store) = %d, %v; want 1, true", pos, ok)
	}
	if s, ok := ix.State("items"); !ok || s.Name != "cartItems" {
		t.Errorf("State(items) = %+v, %v", s, ok)
	}
	if c, ok := ix.Condition("c1"); !ok || c.Expression != "items > 0" {
		t.Errorf("Condition(c1) = %+v, %v", c, ok)
	}
	if f, ok := ix.Flow("add"); !ok || len(f.Steps) != 1 {
		t.Errorf("Flow(add) = %+v, %v", f, ok)
	}

	misses := []struct {
		name string
		ok   bool
	}{
		{"actor", func() bool { _, ok := ix.Actor("ghost"); return ok }()},
		{"empty actor", func() bool { _, ok := ix.Actor(""); return ok }()},
		{"state", func() bool { _, ok := ix.State("ghost"); return ok }()},
		{"condition", func() bool { _, ok := ix.Condition("ghost"); return ok }()},
		{"flow", func() bool { _, ok := ix.Flow("ghost"); return ok }()},
	}
	for _, m := range misses {
		if m.ok {
			t.Errorf("%s lookup of missing id reported ok", m.name)
		}
	}

	if _, ok := NewIndex(nil).Actor("cart"); ok {
		t.Error("nil diagram index should miss")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"valid actor", ValidateActor(Actor{ID: "a", Name: "A", Type: ActorStore, Scope: ScopeLocal}), false},
		{"actor without scope", ValidateActor(Actor{ID: "a", Name: "A", Type: ActorComponent}), false},
		{"actor bad type", ValidateActor(Actor{ID: "a", Name: "A", Type: "widget"}), true},
		{"actor bad scope", ValidateActor(Actor{ID: "a", Name: "A", Type: ActorStore, Scope: "planet"}), true},
		{"actor missing name", ValidateActor(Actor{ID: "a", Type: ActorStore}), true},
		{"actor hex color", ValidateActor(Actor{ID: "a", Name: "A", Type: ActorComponent, Color: "#ff8800"}), false},
		{"actor rgb color", ValidateActor(Actor{ID: "a", Name: "A", Type: ActorComponent, Color: "rgb(255,136,0)"}), false},
		{"actor attribute injection color", ValidateActor(Actor{ID: "a", Name: "A", Type: ActorComponent, Color: `red" onload="alert(1)`}), true},
		{"valid state", ValidateState(State{ID: "s", Name: "S", Owner: "a"}), false},
		{"state dangling owner ok", ValidateState(State{ID: "s", Name: "S", Owner: "ghost"}), false},
		{"condition without expression", ValidateCondition(Condition{ID: "c"}), true},
		{"valid step", ValidateStep(FlowStep{ID: "s", Type: StepEffect}), false},
		{"step bad type", ValidateStep(FlowStep{ID: "s", Type: "teleport"}), true},
		{"valid flow", ValidateFlow(sample().Flows[0]), false},
		{"flow bad trigger", ValidateFlow(Flow{ID: "f", Name: "F", Trigger: FlowTrigger{Type: "cron"}}), true},
		{"flow bad nested step", ValidateFlow(Flow{ID: "f", Name: "F", Trigger: FlowTrigger{Type: TriggerTimer}, Steps: []FlowStep{{ID: "s"}}}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", tt.err, tt.wantErr)
			}
			if tt.err != nil && !errors.Is(tt.err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", errors.GetCode(tt.err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestViolationsUseJSONNames(t *testing.T) {
	vs := Violations("flow", Flow{ID: "f", Name: "F", Trigger: FlowTrigger{Type: TriggerTimer}, Steps: []FlowStep{{ID: "s", Type: "bogus"}}})
	if len(vs) != 1 {
		t.Fatalf("got %d violations, want 1: %+v", len(vs), vs)
	}
	if vs[0].Field != "flow.steps[0].type" {
		t.Errorf("Field = %q, want flow.steps[0].type", vs[0].Field)
	}
	if vs[0].Tag != "oneof" {
		t.Errorf("Tag = %q, want oneof", vs[0].Tag)
	}
}

func TestValidColor(t *testing.T) {
	tests := []struct {
		color string
		want  bool
	}{
		{"#fff", true},
		{"#3b82f6", true},
		{"rgba(0,0,0,0.5)", true},
		{"hsl(120,50%,50%)", true},
		{"", false},
		{"blue", false},
		{`#fff" onload="x`, false},
		{"url(#grad)", false},
	}

	for _, tt := range tests {
		if got := ValidColor(tt.color); got != tt.want {
			t.Errorf("ValidColor(%q) = %v, want %v", tt.color, got, tt.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseActorType("service"); err != nil {
		t.Errorf("ParseActorType(service) error = %v", err)
	}
	if _, err := ParseActorType("robot"); err == nil {
		t.Error("ParseActorType(robot) should fail")
	}
	if s, err := ParseStateScope(""); err != nil || s != "" {
		t.Errorf("ParseStateScope(\"\") = %q, %v", s, err)
	}
	if _, err := ParseStateScope("world"); err == nil {
		t.Error("ParseStateScope(world) should fail")
	}
	if _, err := ParseStepType("stateChange"); err != nil {
		t.Errorf("ParseStepType(stateChange) error = %v", err)
	}
	if _, err := ParseTriggerType("timer"); err != nil {
		t.Errorf("ParseTriggerType(timer) error = %v", err)
	}
	if _, err := ParseTriggerType("webhook"); err == nil {
		t.Error("ParseTriggerType(webhook) should fail")
	}
}
