package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

// Compute lays out d. A nil diagram or one without actors yields an empty
// layout; a diagram without flows yields actor nodes only.
func Compute(d *model.Diagram, opts ...Option) Layout {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.normalized()

	if d == nil || len(d.Actors) == 0 {
		return Layout{Nodes: []Node{}, Edges: []Edge{}}
	}
	e := &engine{cfg: cfg, d: d, ix: model.NewIndex(d)}
	return e.run()
}

type engine struct {
	cfg    Config
	d      *model.Diagram
	ix     *model.Index
	cursor float64
	maxY   float64
	minX   float64

	nodes   []Node
	edges   []Edge
	skipped []Skip
}

func (e *engine) pitch() float64 { return e.cfg.ActorWidth + e.cfg.ActorGap }

func (e *engine) rowY(row float64) float64 { return e.cfg.StartY + row*e.cfg.StepHeight }

func (e *engine) span() float64 {
	return float64(len(e.d.Actors)-1)*e.pitch() + e.cfg.ActorWidth
}

// columnX returns the left edge of the actor's column.
func (e *engine) columnX(id string) (float64, bool) {
	i, ok := e.ix.ActorPosition(id)
	if !ok {
		return 0, false
	}
	return float64(i) * e.pitch(), true
}

func (e *engine) reach(y float64) {
	e.maxY = max(e.maxY, y)
}

func (e *engine) run() Layout {
	multi := len(e.d.Flows) > 1
	for i := range e.d.Flows {
		e.layoutFlow(&e.d.Flows[i], multi)
	}

	lifeline := max(e.cfg.MinHeight, float64(e.d.TotalSteps())*e.cfg.StepHeight+e.cfg.HeightMargin)
	if need := e.maxY + e.cfg.StepHeight - e.cfg.ActorHeight; need > lifeline {
		lifeline = need
	}

	nodes := make([]Node, 0, len(e.d.Actors)+len(e.nodes))
	nodes = append(nodes, e.actorNodes(lifeline)...)
	nodes = append(nodes, e.nodes...)

	edges := e.edges
	if edges == nil {
		edges = []Edge{}
	}
	return Layout{
		MinX:           e.minX,
		Width:          e.span() - e.minX,
		Height:         e.cfg.ActorHeight + lifeline,
		LifelineHeight: lifeline,
		Nodes:          nodes,
		Edges:          edges,
		Legend:         e.legend(),
		Skipped:        e.skipped,
	}
}

func (e *engine) actorNodes(lifeline float64) []Node {
	out := make([]Node, len(e.d.Actors))
	for i, a := range e.d.Actors {
		x := float64(i) * e.pitch()
		color := a.Color
		if !model.ValidColor(color) {
			color = styles.ColorFor(a.Type, a.Scope)
		}
		out[i] = Node{
			ID:     a.ID,
			Kind:   KindActor,
			X:      x,
			Y:      0,
			Width:  e.cfg.ActorWidth,
			Height: e.cfg.ActorHeight,
			Label:  a.Name,
			Actor: &ActorData{
				Index:          i,
				Type:           a.Type,
				Scope:          a.Scope,
				Icon:           styles.IconFor(a.Type),
				Color:          color,
				Description:    a.Description,
				LifelineX:      x + e.cfg.ActorWidth/2,
				LifelineHeight: lifeline,
			},
		}
	}
	return out
}

func (e *engine) legend() []LegendEntry {
	out := make([]LegendEntry, len(model.ActorTypes))
	for i, kind := range model.ActorTypes {
		out[i] = LegendEntry{Kind: kind, Color: styles.LegendColor(kind)}
		for _, a := range e.d.Actors {
			if a.Type == kind {
				out[i].Count++
			}
		}
	}
	return out
}

func (e *engine) layoutFlow(f *model.Flow, multi bool) {
	header := -1
	if multi {
		y := e.rowY(e.cursor) - e.cfg.HeaderHeight/2
		header = len(e.nodes)
		e.nodes = append(e.nodes, Node{
			ID:     FlowHeaderID(f.ID),
			Kind:   KindFlowHeader,
			X:      0,
			Y:      y,
			Width:  e.span(),
			Height: e.cfg.HeaderHeight,
			Label:  f.Name,
			Flow:   &FlowData{FlowID: f.ID, Description: f.Description, Row: e.cursor},
		})
		e.reach(y + e.cfg.HeaderHeight)
		e.cursor += e.cfg.HeaderSlots
	}

	e.layoutTrigger(f)

	rendered := 0
	for i := range f.Steps {
		if e.layoutStep(f.ID, &f.Steps[i]) {
			rendered++
		}
	}
	if header >= 0 {
		e.nodes[header].Flow.Steps = rendered
	}

	if multi {
		e.cursor += e.cfg.MultiFlowGap
	} else {
		e.cursor += e.cfg.FlowGap
	}
}

func (e *engine) layoutTrigger(f *model.Flow) {
	t := f.Trigger
	if t.Actor == "" {
		return
	}
	ax, ok := e.columnX(t.Actor)
	if !ok {
		return
	}
	label := "Trigger: " + t.Action
	if t.Target != "" {
		label += " (" + t.Target + ")"
	}
	x := ax - e.cfg.TriggerOffsetX
	y := e.rowY(e.cursor) - e.cfg.TriggerOffsetY
	e.nodes = append(e.nodes, Node{
		ID:     TriggerID(f.ID),
		Kind:   KindTrigger,
		X:      x,
		Y:      y,
		Width:  e.cfg.TriggerWidth,
		Height: e.cfg.TriggerHeight,
		Label:  label,
		Trigger: &TriggerData{
			FlowID: f.ID,
			Type:   t.Type,
			Actor:  t.Actor,
			Action: t.Action,
			Target: t.Target,
			Fill:   styles.TriggerFill,
			Border: styles.TriggerBorder,
		},
	})
	e.minX = min(e.minX, x)
	e.reach(y + e.cfg.TriggerHeight)
}

func (e *engine) skip(flowID string, s *model.FlowStep, format string, args ...any) {
	e.skipped = append(e.skipped, Skip{FlowID: flowID, StepID: s.ID, Reason: fmt.Sprintf(format, args...)})
}

// layoutStep emits the edge for s and reports whether it was rendered.
func (e *engine) layoutStep(flowID string, s *model.FlowStep) bool {
	if s.From == "" || s.To == "" {
		e.skip(flowID, s, "step has no %s", missingEnd(s))
		return false
	}
	sourceX, ok := e.columnX(s.From)
	if !ok {
		e.skip(flowID, s, "unknown source actor %q", s.From)
		return false
	}
	targetX, ok := e.columnX(s.To)
	if !ok {
		e.skip(flowID, s, "unknown target actor %q", s.To)
		return false
	}

	source, _ := e.ix.Actor(s.From)
	target, _ := e.ix.Actor(s.To)
	kind, scope := actorStyle(target)

	var stateName string
	state, hasState := e.ix.State(s.State)
	if hasState {
		stateName = state.Name
	}
	colorKind, colorScope := kind, scope
	if s.Type == model.StepStateChange {
		colorKind, colorScope = stateChangeStyle(e.ix, state, hasState, source, kind, scope)
	}

	var condition string
	if c, ok := e.ix.Condition(s.Condition); ok {
		condition = c.Expression
	}

	label := stepLabel(s, stateName)
	edge := Edge{
		ID:          EdgeID(flowID, s.ID),
		FlowID:      flowID,
		StepID:      s.ID,
		StepType:    s.Type,
		Source:      s.From,
		Target:      s.To,
		Row:         e.cursor,
		Y:           e.rowY(e.cursor),
		SourceX:     sourceX,
		TargetX:     targetX,
		Label:       label,
		Caption:     caption(label, stateName),
		Detail:      stepDetail(s),
		Glyph:       styles.GlyphFor(s.Type),
		StateName:   stateName,
		Color:       styles.EdgeColor(s.Type, colorKind, colorScope),
		Stroke:      styles.StrokeFor(s.Type),
		Dashed:      s.Type == model.StepSubscribe,
		Animated:    s.Type == model.StepSubscribe,
		Async:       s.IsAsync,
		Condition:   condition,
		TargetType:  kind,
		TargetScope: scope,
	}
	e.route(&edge, s.From == s.To)

	e.edges = append(e.edges, edge)
	e.cursor++
	return true
}

// route fills in the edge path between lifeline centers.
func (e *engine) route(edge *Edge, self bool) {
	y := edge.Y
	sx := edge.SourceX + e.cfg.ActorWidth/2
	tx := edge.TargetX + e.cfg.ActorWidth/2

	if self || sx == tx {
		loop := e.cfg.SelfLoopWidth
		drop := e.cfg.StepHeight / 2
		edge.Direction = DirSelf
		edge.Path = []Point{{sx, y}, {sx + loop, y}, {sx + loop, y + drop}, {sx, y + drop}}
		edge.Arrow = Point{sx + e.cfg.ArrowOffset, y + drop}
		edge.LabelX, edge.LabelY = sx+loop/2, y
		e.reach(y + drop)
		return
	}

	sign := 1.0
	edge.Direction = DirRight
	if tx < sx {
		sign = -1
		edge.Direction = DirLeft
	}
	edge.Path = []Point{{sx, y}, {tx, y}}
	edge.Arrow = Point{tx - sign*e.cfg.ArrowOffset, y}
	edge.LabelX, edge.LabelY = (sx+tx)/2, y
	e.reach(y)
}

// actorStyle returns the kind and scope used for coloring, defaulting an
// unset kind to component and an unset scope to local.
// stateChangeStyle picks the kind a state change is colored by: the actor
// owning the state, else the source when it is a store, else the target.
func stateChangeStyle(ix *model.Index, state model.State, hasState bool, source model.Actor, kind model.ActorType, scope model.StateScope) (model.ActorType, model.StateScope) {
	if hasState {
		if owner, ok := ix.Actor(state.Owner); ok {
			return actorStyle(owner)
		}
	}
	if source.Type == model.ActorStore {
		return actorStyle(source)
	}
	return kind, scope
}

func actorStyle(a model.Actor) (model.ActorType, model.StateScope) {
	kind, scope := a.Type, a.Scope
	if kind == "" {
		kind = model.ActorComponent
	}
	if scope == "" {
		scope = model.ScopeLocal
	}
	return kind, scope
}

func stepLabel(s *model.FlowStep, stateName string) string {
	switch {
	case s.Type == model.StepSubscribe && stateName != "":
		return "Notify: " + stateName
	case s.Type == model.StepDispatch:
		return "dispatch"
	}
	for _, v := range []string{s.Action, s.Description} {
		if v != "" {
			return v
		}
	}
	return string(s.Type)
}

func stepDetail(s *model.FlowStep) string {
	switch s.Type {
	case model.StepSubscribe, model.StepDispatch:
		return s.Action
	}
	return ""
}

func caption(label, stateName string) string {
	if stateName == "" || strings.Contains(label, stateName) {
		return label
	}
	return label + " (" + stateName + ")"
}

func missingEnd(s *model.FlowStep) string {
	switch {
	case s.From == "" && s.To == "":
		return "source or target"
	case s.From == "":
		return "source"
	}
	return "target"
}
