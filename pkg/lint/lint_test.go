package lint

import (
	"testing"

	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/model"
)

func clean() *model.Diagram {
	return &model.Diagram{
		ID:   "d",
		Name: "Cart",
		Actors: []model.Actor{
			{ID: "A", Name: "Button", Type: model.ActorComponent},
			{ID: "B", Name: "Cart", Type: model.ActorStore, Scope: model.ScopeGlobal},
		},
		States:     []model.State{{ID: "s1", Name: "cartItems", Owner: "B"}},
		Conditions: []model.Condition{{ID: "c1", Expression: "items > 0 && !loading"}},
		Flows: []model.Flow{{
			ID:      "f1",
			Name:    "Add",
			Trigger: model.FlowTrigger{Type: model.TriggerUserAction, Actor: "A", Action: "click"},
			Steps: []model.FlowStep{
				{ID: "e1", Type: model.StepDispatch, From: "A", To: "B", Action: "ADD", Condition: "c1"},
				{ID: "e2", Type: model.StepStateChange, From: "B", To: "A", State: "s1"},
			},
		}},
	}
}

func TestCheckClean(t *testing.T) {
	r := Check(clean())
	if len(r.Issues) != 0 {
		t.Fatalf("issues = %v", r.Issues)
	}
	if r.HasErrors() {
		t.Error("HasErrors = true")
	}
}

func TestCheckNil(t *testing.T) {
	r := Check(nil)
	if r.Issues == nil || len(r.Issues) != 0 {
		t.Errorf("Check(nil) = %#v", r)
	}
}

func TestCheckIssues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *model.Diagram)
		kind     Kind
		severity Severity
		path     string
	}{
		{
			name:     "blank name",
			mutate:   func(d *model.Diagram) { d.Name = " " },
			kind:     KindInvalidField,
			severity: SeverityError,
			path:     "name",
		},
		{
			name:     "duplicate actor",
			mutate:   func(d *model.Diagram) { d.Actors = append(d.Actors, model.Actor{ID: "A", Name: "Dup", Type: model.ActorService}) },
			kind:     KindDuplicateID,
			severity: SeverityError,
			path:     "actors[2].id",
		},
		{
			name:     "invalid actor type",
			mutate:   func(d *model.Diagram) { d.Actors[0].Type = "widget" },
			kind:     KindInvalidField,
			severity: SeverityError,
			path:     "actors[0].type",
		},
		{
			name:     "invalid step type",
			mutate:   func(d *model.Diagram) { d.Flows[0].Steps[1].Type = "teleport" },
			kind:     KindInvalidField,
			severity: SeverityError,
			path:     "flows[0].steps[1].type",
		},
		{
			name:     "scope on component",
			mutate:   func(d *model.Diagram) { d.Actors[0].Scope = model.ScopeLocal },
			kind:     KindScopeIgnored,
			severity: SeverityWarning,
			path:     "actors[0].scope",
		},
		{
			name:     "dangling owner",
			mutate:   func(d *model.Diagram) { d.States[0].Owner = "Z" },
			kind:     KindDanglingRef,
			severity: SeverityWarning,
			path:     "states[0].owner",
		},
		{
			name:     "dangling state",
			mutate:   func(d *model.Diagram) { d.Flows[0].Steps[1].State = "nope" },
			kind:     KindDanglingRef,
			severity: SeverityWarning,
			path:     "flows[0].steps[1].state",
		},
		{
			name:     "dangling condition",
			mutate:   func(d *model.Diagram) { d.Flows[0].Steps[0].Condition = "c9" },
			kind:     KindDanglingRef,
			severity: SeverityWarning,
			path:     "flows[0].steps[0].condition",
		},
		{
			name:     "dangling trigger",
			mutate:   func(d *model.Diagram) { d.Flows[0].Trigger.Actor = "ghost" },
			kind:     KindDanglingRef,
			severity: SeverityWarning,
			path:     "flows[0].trigger.actor",
		},
		{
			name:     "missing from",
			mutate:   func(d *model.Diagram) { d.Flows[0].Steps[0].From = "" },
			kind:     KindSkippedStep,
			severity: SeverityWarning,
			path:     "flows[0].steps[0].from",
		},
		{
			name:     "unknown to",
			mutate:   func(d *model.Diagram) { d.Flows[0].Steps[0].To = "Z" },
			kind:     KindSkippedStep,
			severity: SeverityWarning,
			path:     "flows[0].steps[0].to",
		},
		{
			name:     "self step",
			mutate:   func(d *model.Diagram) { d.Flows[0].Steps[0].To = "A" },
			kind:     KindSelfStep,
			severity: SeverityInfo,
			path:     "flows[0].steps[0]",
		},
		{
			name:     "bad expression",
			mutate:   func(d *model.Diagram) { d.Conditions[0].Expression = "items >" },
			kind:     KindBadExpression,
			severity: SeverityWarning,
			path:     "conditions[0].expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := clean()
			tt.mutate(d)
			r := Check(d)
			if len(r.Issues) != 1 {
				t.Fatalf("issues = %v, want exactly one", r.Issues)
			}
			got := r.Issues[0]
			if got.Kind != tt.kind || got.Severity != tt.severity || got.Path != tt.path {
				t.Errorf("issue = %+v, want %s/%s at %s", got, tt.severity, tt.kind, tt.path)
			}
			if r.HasErrors() != (tt.severity == SeverityError) {
				t.Errorf("HasErrors = %v", r.HasErrors())
			}
		})
	}
}

func TestCheckModelOrder(t *testing.T) {
	d := clean()
	d.Flows[0].Steps[1].State = "nope"
	d.States[0].Owner = "Z"
	d.Actors[0].Type = "widget"

	r := Check(d)
	want := []string{"actors[0].type", "states[0].owner", "flows[0].steps[1].state"}
	if len(r.Issues) != len(want) {
		t.Fatalf("issues = %v", r.Issues)
	}
	for i, p := range want {
		if r.Issues[i].Path != p {
			t.Errorf("issue %d path = %q, want %q", i, r.Issues[i].Path, p)
		}
	}
}

func TestSkippedStepsMatchLayout(t *testing.T) {
	d := clean()
	d.Flows[0].Steps = append(d.Flows[0].Steps,
		model.FlowStep{ID: "e3", Type: model.StepEffect, From: "A"},
		model.FlowStep{ID: "e4", Type: model.StepRender, From: "X", To: "Y"},
		model.FlowStep{ID: "e5", Type: model.StepRender, From: "B", To: "B"},
	)

	skippedSteps := map[string]bool{}
	for _, i := range Check(d).Issues {
		if i.Kind == KindSkippedStep {
			skippedSteps[i.Path[:len("flows[0].steps[0]")]] = true
		}
	}
	l := layout.Compute(d)
	if len(skippedSteps) != len(l.Skipped) {
		t.Errorf("lint flags %d skipped steps, layout skipped %d", len(skippedSteps), len(l.Skipped))
	}
}
