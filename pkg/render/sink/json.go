package sink

import (
	"encoding/json"

	"github.com/matzehuels/stateflow/pkg/focus"
	"github.com/matzehuels/stateflow/pkg/layout"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	id, name string
	focus    string
}

// WithJSONDiagram records the diagram identity in the output.
func WithJSONDiagram(id, name string) JSONOption {
	return func(r *jsonRenderer) { r.id, r.name = id, name }
}

// WithJSONFocus adds the focus target of flowID, when it has one.
func WithJSONFocus(flowID string) JSONOption {
	return func(r *jsonRenderer) { r.focus = flowID }
}

type jsonDiagram struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type jsonOutput struct {
	Diagram *jsonDiagram  `json:"diagram,omitempty"`
	Focus   *focus.Target `json:"focus,omitempty"`
	layout.Layout
}

// RenderJSON encodes l as indented JSON for web front ends and debugging.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Layout: l}
	if r.id != "" {
		out.Diagram = &jsonDiagram{ID: r.id, Name: r.name}
	}
	if r.focus != "" {
		if t, ok := focus.Resolve(l, r.focus); ok {
			out.Focus = &t
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
