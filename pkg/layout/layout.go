package layout

import (
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

// NodeKind discriminates the visual nodes of a layout.
type NodeKind string

// Node kinds.
const (
	KindActor      NodeKind = "actor"
	KindFlowHeader NodeKind = "flowHeader"
	KindTrigger    NodeKind = "trigger"
)

// Direction is the horizontal direction of an edge.
type Direction string

// Edge directions.
const (
	DirRight Direction = "right"
	DirLeft  Direction = "left"
	DirSelf  Direction = "self"
)

// Node id prefixes for generated nodes.
const (
	FlowHeaderPrefix = "flow-"
	TriggerPrefix    = "trigger-"
)

// Layout is the positioned output of [Compute].
type Layout struct {
	MinX           float64       `json:"min_x"`
	Width          float64       `json:"width"`
	Height         float64       `json:"height"`
	LifelineHeight float64       `json:"lifeline_height"`
	Nodes          []Node        `json:"nodes"`
	Edges          []Edge        `json:"edges"`
	Legend         []LegendEntry `json:"legend,omitempty"`
	Skipped        []Skip        `json:"skipped,omitempty"`
}

// Node is a positioned box. Exactly one of the payload pointers matching
// Kind is set.
type Node struct {
	ID      string       `json:"id"`
	Kind    NodeKind     `json:"kind"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Label   string       `json:"label"`
	Actor   *ActorData   `json:"actor,omitempty"`
	Flow    *FlowData    `json:"flow,omitempty"`
	Trigger *TriggerData `json:"trigger,omitempty"`
}

// ActorData decorates an actor node.
type ActorData struct {
	Index          int              `json:"index"`
	Type           model.ActorType  `json:"type"`
	Scope          model.StateScope `json:"scope,omitempty"`
	Icon           string           `json:"icon"`
	Color          string           `json:"color"`
	Description    string           `json:"description,omitempty"`
	LifelineX      float64          `json:"lifeline_x"`
	LifelineHeight float64          `json:"lifeline_height"`
}

// FlowData decorates a flow header node.
type FlowData struct {
	FlowID      string  `json:"flow_id"`
	Description string  `json:"description,omitempty"`
	Row         float64 `json:"row"`
	Steps       int     `json:"steps"` // Rendered steps only
}

// TriggerData decorates a trigger node.
type TriggerData struct {
	FlowID string            `json:"flow_id"`
	Type   model.TriggerType `json:"type"`
	Actor  string            `json:"actor"`
	Action string            `json:"action"`
	Target string            `json:"target,omitempty"`
	Fill   string            `json:"fill"`
	Border string            `json:"border"`
}

// Point is a position in diagram coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is one rendered flow step.
type Edge struct {
	ID       string         `json:"id"`
	FlowID   string         `json:"flow_id"`
	StepID   string         `json:"step_id"`
	StepType model.StepType `json:"step_type"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`

	Row       float64   `json:"row"`
	Y         float64   `json:"y"`
	SourceX   float64   `json:"source_x"` // Column x of the source actor
	TargetX   float64   `json:"target_x"` // Column x of the target actor
	Direction Direction `json:"direction"`
	Path      []Point   `json:"path"`
	Arrow     Point     `json:"arrow"`
	LabelX    float64   `json:"label_x"`
	LabelY    float64   `json:"label_y"`

	Label     string `json:"label"`
	Caption   string `json:"caption"`          // Label annotated with the state name
	Detail    string `json:"detail,omitempty"` // Action of a subscribe or dispatch step
	Glyph     string `json:"glyph"`
	StateName string `json:"state_name,omitempty"`

	Color       string           `json:"color"`
	Stroke      styles.Stroke    `json:"stroke"`
	Dashed      bool             `json:"dashed,omitempty"`
	Animated    bool             `json:"animated,omitempty"`
	Async       bool             `json:"async,omitempty"`
	Condition   string           `json:"condition,omitempty"`
	TargetType  model.ActorType  `json:"target_type"`
	TargetScope model.StateScope `json:"target_scope"`
}

// LegendEntry is one actor kind of the overview legend.
type LegendEntry struct {
	Kind  model.ActorType `json:"kind"`
	Color string          `json:"color"`
	Count int             `json:"count"`
}

// Skip records a step that was not rendered.
type Skip struct {
	FlowID string `json:"flow_id"`
	StepID string `json:"step_id"`
	Reason string `json:"reason"`
}

// Empty reports whether the layout has nothing to draw.
func (l Layout) Empty() bool {
	return len(l.Nodes) == 0 && len(l.Edges) == 0
}

// Node returns the node with the given id.
func (l Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// FlowEdges returns the edges of one flow in row order.
func (l Layout) FlowEdges(flowID string) []Edge {
	var out []Edge
	for _, e := range l.Edges {
		if e.FlowID == flowID {
			out = append(out, e)
		}
	}
	return out
}

// Actors returns the actor nodes in column order.
func (l Layout) Actors() []Node {
	var out []Node
	for _, n := range l.Nodes {
		if n.Kind == KindActor {
			out = append(out, n)
		}
	}
	return out
}

// FlowHeaderID returns the node id of a flow's section header.
func FlowHeaderID(flowID string) string { return FlowHeaderPrefix + flowID }

// TriggerID returns the node id of a flow's trigger marker.
func TriggerID(flowID string) string { return TriggerPrefix + flowID }

// EdgeID returns the edge id of a step.
func EdgeID(flowID, stepID string) string { return flowID + "-" + stepID }
