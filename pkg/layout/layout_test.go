package layout

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

func cartDiagram() *model.Diagram {
	d := model.New("cart", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	d.Actors = []model.Actor{
		{ID: "A", Name: "CartButton", Type: model.ActorComponent},
		{ID: "B", Name: "CartStore", Type: model.ActorStore, Scope: model.ScopeGlobal},
	}
	d.States = []model.State{{ID: "S", Name: "cartItems", Owner: "B"}}
	d.Flows = []model.Flow{{
		ID:   "f1",
		Name: "Add item",
		Steps: []model.FlowStep{
			{ID: "s1", Type: model.StepDispatch, From: "A", To: "B", Action: "add"},
			{ID: "s2", Type: model.StepStateChange, From: "B", To: "A", State: "S", Description: "update"},
		},
	}}
	return d
}

func TestComputeCartScenario(t *testing.T) {
	l := Compute(cartDiagram())

	actors := l.Actors()
	if len(actors) != 2 {
		t.Fatalf("got %d actor nodes, want 2", len(actors))
	}
	if actors[0].X != 0 || actors[1].X != 200 {
		t.Errorf("actor x = %v, %v; want 0, 200", actors[0].X, actors[1].X)
	}
	for _, n := range l.Nodes {
		if n.Kind == KindFlowHeader {
			t.Errorf("single-flow diagram emitted header %q", n.ID)
		}
	}
	if len(l.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(l.Edges))
	}

	e1, e2 := l.Edges[0], l.Edges[1]
	if e1.ID != "f1-s1" || e1.Label != "dispatch" || e1.Color != styles.ColorNeutral {
		t.Errorf("edge1 = %s %q %s; want f1-s1 \"dispatch\" neutral", e1.ID, e1.Label, e1.Color)
	}
	if e1.Detail != "add" {
		t.Errorf("edge1 detail = %q, want add", e1.Detail)
	}
	if !strings.Contains(e2.Caption, "cartItems") {
		t.Errorf("edge2 caption = %q, want it to mention cartItems", e2.Caption)
	}
	if e2.Label != "update" {
		t.Errorf("edge2 label = %q, want update", e2.Label)
	}
	if e2.Color != styles.ColorStoreGlobal {
		t.Errorf("edge2 color = %s, want %s", e2.Color, styles.ColorStoreGlobal)
	}
	if e1.Y != 100 || e2.Y != 160 {
		t.Errorf("edge y = %v, %v; want 100, 160", e1.Y, e2.Y)
	}
	if l.LifelineHeight != 500 {
		t.Errorf("lifeline = %v, want 500", l.LifelineHeight)
	}
	for _, n := range actors {
		if n.Actor.LifelineHeight != l.LifelineHeight {
			t.Errorf("actor %s lifeline = %v, want %v", n.ID, n.Actor.LifelineHeight, l.LifelineHeight)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	if l := Compute(nil); !l.Empty() {
		t.Error("nil diagram should give an empty layout")
	}

	d := cartDiagram()
	d.Actors = nil
	if l := Compute(d); !l.Empty() {
		t.Errorf("no actors: got %d nodes, %d edges", len(l.Nodes), len(l.Edges))
	}

	d = cartDiagram()
	d.Flows = nil
	l := Compute(d)
	if len(l.Nodes) != 2 || len(l.Edges) != 0 {
		t.Errorf("no flows: got %d nodes, %d edges; want actor nodes only", len(l.Nodes), len(l.Edges))
	}
}

func TestComputeGeometry(t *testing.T) {
	l := Compute(cartDiagram())
	right, left := l.Edges[0], l.Edges[1]

	if right.Direction != DirRight || left.Direction != DirLeft {
		t.Fatalf("directions = %s, %s", right.Direction, left.Direction)
	}
	// Lifeline centers are at 75 and 275.
	if right.Path[0].X != 75 || right.Path[1].X != 275 {
		t.Errorf("right path = %+v", right.Path)
	}
	if right.Arrow.X != 267 {
		t.Errorf("right arrow x = %v, want 267", right.Arrow.X)
	}
	if left.Arrow.X != 83 {
		t.Errorf("left arrow x = %v, want 83", left.Arrow.X)
	}
	if right.LabelX != 175 || right.LabelY != right.Y {
		t.Errorf("label at (%v, %v), want (175, %v)", right.LabelX, right.LabelY, right.Y)
	}
	if right.SourceX != 0 || right.TargetX != 200 {
		t.Errorf("source/target x = %v, %v", right.SourceX, right.TargetX)
	}
}

func TestComputeLabels(t *testing.T) {
	tests := []struct {
		name string
		step model.FlowStep
		want string
	}{
		{"subscribe with state", model.FlowStep{Type: model.StepSubscribe, State: "S", Action: "watch"}, "Notify: cartItems"},
		{"subscribe dangling state", model.FlowStep{Type: model.StepSubscribe, State: "ghost", Action: "watch"}, "watch"},
		{"subscribe bare", model.FlowStep{Type: model.StepSubscribe}, "subscribe"},
		{"dispatch ignores action", model.FlowStep{Type: model.StepDispatch, Action: "add"}, "dispatch"},
		{"effect description", model.FlowStep{Type: model.StepEffect, Description: "fetch"}, "fetch"},
		{"render action wins", model.FlowStep{Type: model.StepRender, Action: "paint", Description: "draw"}, "paint"},
		{"state change fallback", model.FlowStep{Type: model.StepStateChange}, "stateChange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cartDiagram()
			tt.step.ID, tt.step.From, tt.step.To = "x", "B", "A"
			d.Flows[0].Steps = []model.FlowStep{tt.step}
			l := Compute(d)
			if len(l.Edges) != 1 {
				t.Fatalf("got %d edges", len(l.Edges))
			}
			if got := l.Edges[0].Label; got != tt.want {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeDecorations(t *testing.T) {
	d := cartDiagram()
	d.Conditions = []model.Condition{{ID: "c1", Expression: "items.length > 0"}}
	d.Flows[0].Steps = []model.FlowStep{
		{ID: "s1", Type: model.StepSubscribe, From: "B", To: "A", State: "S", Action: "onItems", IsAsync: true, Condition: "c1"},
		{ID: "s2", Type: model.StepEffect, From: "A", To: "B", Condition: "ghost"},
	}
	l := Compute(d)
	sub, eff := l.Edges[0], l.Edges[1]

	if !sub.Dashed || !sub.Animated || sub.Stroke.Dash != "4 4" || sub.Stroke.Width != 2 {
		t.Errorf("subscribe decorations = %+v", sub)
	}
	if !sub.Async || sub.Condition != "items.length > 0" {
		t.Errorf("badges = async %v, condition %q", sub.Async, sub.Condition)
	}
	if sub.Glyph != "◎" || sub.Detail != "onItems" {
		t.Errorf("glyph/detail = %q/%q", sub.Glyph, sub.Detail)
	}
	if sub.Color != styles.ColorComponent {
		t.Errorf("subscribe toward a component = %s, want %s", sub.Color, styles.ColorComponent)
	}
	if eff.Dashed || eff.Animated || eff.Async || eff.Condition != "" {
		t.Errorf("effect decorations = %+v", eff)
	}
	if eff.Color != styles.ColorStoreGlobal {
		t.Errorf("effect toward global store = %s", eff.Color)
	}
}

func TestComputeReferenceMisses(t *testing.T) {
	d := cartDiagram()
	d.Flows[0].Steps = []model.FlowStep{
		{ID: "ghost-src", Type: model.StepEffect, From: "ghost", To: "A"},
		{ID: "ok1", Type: model.StepEffect, From: "A", To: "B"},
		{ID: "no-to", Type: model.StepEffect, From: "A"},
		{ID: "ghost-dst", Type: model.StepEffect, From: "A", To: "ghost"},
		{ID: "ok2", Type: model.StepEffect, From: "B", To: "A"},
	}
	d.Flows[0].Trigger = model.FlowTrigger{Type: model.TriggerUserAction, Actor: "ghost", Action: "click"}

	l := Compute(d)
	if len(l.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(l.Edges))
	}
	if l.Edges[0].Row != 0 || l.Edges[1].Row != 1 {
		t.Errorf("rows = %v, %v; skipped steps must not consume rows", l.Edges[0].Row, l.Edges[1].Row)
	}
	if len(l.Skipped) != 3 {
		t.Errorf("skipped = %+v, want 3 entries", l.Skipped)
	}
	if _, ok := l.Node(TriggerID("f1")); ok {
		t.Error("trigger with unknown actor should be omitted")
	}
}

func TestComputeUnknownTargetStyleDefaults(t *testing.T) {
	d := cartDiagram()
	d.Actors = append(d.Actors, model.Actor{ID: "C", Name: "Untyped"})
	d.Flows[0].Steps = []model.FlowStep{{ID: "s", Type: model.StepRender, From: "A", To: "C"}}
	l := Compute(d)
	e := l.Edges[0]
	if e.TargetType != model.ActorComponent || e.TargetScope != model.ScopeLocal {
		t.Errorf("target style = %s/%s, want component/local", e.TargetType, e.TargetScope)
	}
	if e.Color != styles.ColorComponent {
		t.Errorf("color = %s", e.Color)
	}
}

func TestComputeStateChangeColor(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		state string
		from  string
		to    string
		want  string
	}{
		{"owner wins", "C", "S", "B", "A", styles.ColorStoreLocal},
		{"dangling owner falls back to store source", "gone", "S", "B", "A", styles.ColorStoreGlobal},
		{"missing state falls back to store source", "B", "", "B", "A", styles.ColorStoreGlobal},
		{"dangling owner and non-store source use target", "gone", "S", "A", "B", styles.ColorStoreGlobal},
		{"dangling owner and component target", "gone", "S", "A", "A", styles.ColorComponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cartDiagram()
			d.Actors = append(d.Actors, model.Actor{ID: "C", Name: "Draft", Type: model.ActorStore, Scope: model.ScopeLocal})
			d.States[0].Owner = tt.owner
			d.Flows[0].Steps = []model.FlowStep{{ID: "s", Type: model.StepStateChange, From: tt.from, To: tt.to, State: tt.state}}

			e := Compute(d).Edges[0]
			if e.Color != tt.want {
				t.Errorf("color = %s, want %s", e.Color, tt.want)
			}
			target := model.NewIndex(d)
			a, _ := target.Actor(tt.to)
			wantType, wantScope := actorStyle(a)
			if e.TargetType != wantType || e.TargetScope != wantScope {
				t.Errorf("target style = %s/%s, want %s/%s", e.TargetType, e.TargetScope, wantType, wantScope)
			}
		})
	}
}

func TestComputeTargetStyleIsRealTarget(t *testing.T) {
	l := Compute(cartDiagram())
	if e := l.Edges[0]; e.TargetType != model.ActorStore || e.TargetScope != model.ScopeGlobal {
		t.Errorf("dispatch target style = %s/%s, want store/global", e.TargetType, e.TargetScope)
	}
	if e := l.Edges[1]; e.TargetType != model.ActorComponent || e.TargetScope != model.ScopeLocal {
		t.Errorf("state change target style = %s/%s, want component/local", e.TargetType, e.TargetScope)
	}
}

func TestComputeTrigger(t *testing.T) {
	d := cartDiagram()
	d.Flows[0].Trigger = model.FlowTrigger{Type: model.TriggerUserAction, Actor: "B", Action: "click", Target: "button"}
	l := Compute(d)

	n, ok := l.Node("trigger-f1")
	if !ok {
		t.Fatal("trigger node missing")
	}
	if n.Label != "Trigger: click (button)" {
		t.Errorf("label = %q", n.Label)
	}
	if n.X != 80 || n.Y != 60 {
		t.Errorf("position = (%v, %v), want (80, 60)", n.X, n.Y)
	}
	if n.Width != 150 || n.Trigger.Fill != styles.TriggerFill || n.Trigger.Border != styles.TriggerBorder {
		t.Errorf("trigger style = %+v width %v", n.Trigger, n.Width)
	}

	d.Flows[0].Trigger = model.FlowTrigger{Type: model.TriggerLifecycle, Actor: "A", Action: "mount"}
	l = Compute(d)
	n, _ = l.Node("trigger-f1")
	if n.Label != "Trigger: mount" {
		t.Errorf("label without target = %q", n.Label)
	}
	if l.MinX != -120 {
		t.Errorf("MinX = %v, want -120", l.MinX)
	}
}

func TestComputeMultipleFlows(t *testing.T) {
	d := cartDiagram()
	d.Flows = append(d.Flows, model.Flow{
		ID:      "f2",
		Name:    "Checkout",
		Trigger: model.FlowTrigger{Type: model.TriggerUserAction, Actor: "A", Action: "pay"},
		Steps:   []model.FlowStep{{ID: "s1", Type: model.StepEffect, From: "A", To: "B"}},
	})
	l := Compute(d)

	h1, ok1 := l.Node("flow-f1")
	h2, ok2 := l.Node("flow-f2")
	if !ok1 || !ok2 {
		t.Fatal("flow headers missing")
	}
	if h1.Width != 350 || h1.X != 0 {
		t.Errorf("header span = x %v width %v, want 0/350", h1.X, h1.Width)
	}
	if h1.Flow.Steps != 2 || h2.Flow.Steps != 1 {
		t.Errorf("header step counts = %d, %d", h1.Flow.Steps, h2.Flow.Steps)
	}

	// Flow 1: header row 0, steps rows 1-2, gap to 4.5.
	// Flow 2: header row 4.5, step row 5.5.
	rows := []float64{}
	for _, e := range l.Edges {
		rows = append(rows, e.Row)
	}
	want := []float64{1, 2, 5.5}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("rows = %v, want %v", rows, want)
		}
	}
	if h2.Flow.Row != 4.5 {
		t.Errorf("second header row = %v, want 4.5", h2.Flow.Row)
	}
	if tr, ok := l.Node("trigger-f2"); !ok || tr.Y != 100+5.5*60-40 {
		t.Errorf("trigger-f2 = %+v, %v", tr, ok)
	}

	// Actor nodes first, then generated nodes in emission order.
	var kinds []NodeKind
	for _, n := range l.Nodes {
		kinds = append(kinds, n.Kind)
	}
	wantKinds := []NodeKind{KindActor, KindActor, KindFlowHeader, KindFlowHeader, KindTrigger}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("kinds = %v", kinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
		}
	}
}

func TestComputeSelfLoop(t *testing.T) {
	d := cartDiagram()
	d.Flows[0].Steps = []model.FlowStep{
		{ID: "loop", Type: model.StepEffect, From: "B", To: "B", Action: "recompute"},
		{ID: "next", Type: model.StepEffect, From: "A", To: "B"},
	}
	l := Compute(d)
	if len(l.Edges) != 2 {
		t.Fatalf("self step must be rendered, got %d edges", len(l.Edges))
	}
	loop := l.Edges[0]
	if loop.Direction != DirSelf {
		t.Errorf("direction = %s, want self", loop.Direction)
	}
	if len(loop.Path) != 4 {
		t.Fatalf("loop path = %+v", loop.Path)
	}
	cx := 275.0
	if loop.Path[0].X != cx || loop.Path[1].X != cx+40 || loop.Path[3].X != cx {
		t.Errorf("loop path = %+v", loop.Path)
	}
	if loop.Path[2].Y != loop.Y+30 {
		t.Errorf("loop drop = %v, want %v", loop.Path[2].Y, loop.Y+30)
	}
	if loop.Arrow.X != cx+8 {
		t.Errorf("arrow x = %v, want %v", loop.Arrow.X, cx+8)
	}
	if l.Edges[1].Row != 1 {
		t.Errorf("next row = %v, want 1", l.Edges[1].Row)
	}
}

func TestComputeLifelineCoversRows(t *testing.T) {
	d := cartDiagram()
	d.Flows = nil
	for i := range 10 {
		id := string(rune('a' + i))
		d.Flows = append(d.Flows, model.Flow{
			ID:    id,
			Name:  id,
			Steps: []model.FlowStep{{ID: "s", Type: model.StepEffect, From: "A", To: "B"}},
		})
	}
	l := Compute(d)

	if l.LifelineHeight <= 10*60+200 {
		t.Errorf("lifeline = %v, expected it to grow past the step budget", l.LifelineHeight)
	}
	last := l.Edges[len(l.Edges)-1]
	if bottom := DefaultConfig().ActorHeight + l.LifelineHeight; bottom < last.Y {
		t.Errorf("lifeline bottom %v above last row %v", bottom, last.Y)
	}
	if l.Height != DefaultConfig().ActorHeight+l.LifelineHeight {
		t.Errorf("height = %v", l.Height)
	}
}

func TestComputeActorColorOverride(t *testing.T) {
	d := cartDiagram()
	d.Actors[0].Color = "#ff00ff"
	l := Compute(d)
	if got := l.Nodes[0].Actor.Color; got != "#ff00ff" {
		t.Errorf("color = %s, want override", got)
	}
	if got := l.Nodes[1].Actor.Color; got != styles.ColorStoreGlobal {
		t.Errorf("color = %s, want palette", got)
	}
	if l.Nodes[1].Actor.Icon != "📦" {
		t.Errorf("icon = %s", l.Nodes[1].Actor.Icon)
	}
}

func TestComputeInvalidActorColorFallsBack(t *testing.T) {
	for _, color := range []string{`red" onload="alert(1)`, "url(#x)", "#12345g", "not a color"} {
		d := cartDiagram()
		d.Actors[0].Color = color
		if got := Compute(d).Nodes[0].Actor.Color; got != styles.ColorComponent {
			t.Errorf("color %q resolved to %s, want palette %s", color, got, styles.ColorComponent)
		}
	}
}

func TestComputeLegend(t *testing.T) {
	l := Compute(cartDiagram())
	if len(l.Legend) != 4 {
		t.Fatalf("legend = %+v", l.Legend)
	}
	if l.Legend[0].Kind != model.ActorComponent || l.Legend[0].Count != 1 {
		t.Errorf("legend[0] = %+v", l.Legend[0])
	}
	if l.Legend[3].Kind != model.ActorExternal || l.Legend[3].Color != "#f97316" || l.Legend[3].Count != 0 {
		t.Errorf("legend[3] = %+v", l.Legend[3])
	}
}

func TestComputeOptions(t *testing.T) {
	l := Compute(cartDiagram(), WithActorSpacing(100, 20), WithStepHeight(40))
	if l.Nodes[1].X != 120 {
		t.Errorf("second column = %v, want 120", l.Nodes[1].X)
	}
	if l.Edges[1].Y != 140 {
		t.Errorf("second row y = %v, want 140", l.Edges[1].Y)
	}

	bad := DefaultConfig()
	bad.ActorWidth = 0
	bad.StepHeight = -5
	l = Compute(cartDiagram(), WithConfig(bad))
	if l.Nodes[1].X != 200 || l.Edges[1].Y != 160 {
		t.Errorf("invalid config should fall back to defaults: x %v y %v", l.Nodes[1].X, l.Edges[1].Y)
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	d := cartDiagram()
	before := d.Clone()
	Compute(d)
	if d.Flows[0].Steps[1].Description != before.Flows[0].Steps[1].Description || len(d.Actors) != len(before.Actors) {
		t.Error("Compute mutated its input")
	}
}
