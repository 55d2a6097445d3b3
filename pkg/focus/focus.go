// Package focus turns "show me this flow" into a one-shot navigation
// command for a renderer.
//
// A [Slot] holds at most one pending request. Issuing a new request
// replaces the previous one; the renderer consumes it with [Slot.Take],
// after which the slot is empty again. [Resolve] maps a flow id to the
// layout node the renderer should scroll or zoom to.
package focus

import (
	"sync"

	"github.com/matzehuels/stateflow/pkg/layout"
)

// Request asks the renderer to bring a flow into view.
type Request struct {
	FlowID string
}

// Slot is a single pending focus request. The zero value is ready to use
// and safe for concurrent use.
type Slot struct {
	mu      sync.Mutex
	pending *Request
}

// Request records a focus request for flowID, replacing any request that
// has not been taken yet.
func (s *Slot) Request(flowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &Request{FlowID: flowID}
}

// Take consumes the pending request. It reports false when there is none.
func (s *Slot) Take() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Request{}, false
	}
	r := *s.pending
	s.pending = nil
	return r, true
}

// Pending returns the pending request without consuming it.
func (s *Slot) Pending() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Request{}, false
	}
	return *s.pending, true
}

// Clear drops any pending request.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// NodeID returns the id of the flow-header node for flowID.
func NodeID(flowID string) string {
	return layout.FlowHeaderID(flowID)
}

// Target is the region a renderer should bring into view.
type Target struct {
	ID     string  `json:"id"`
	FlowID string  `json:"flow_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Resolve finds the node to focus for flowID. Diagrams with a single flow
// have no section header, so the trigger marker is used instead, then the
// flow's first edge. It reports false when the flow has nothing on screen.
func Resolve(l layout.Layout, flowID string) (Target, bool) {
	if n, ok := l.Node(layout.FlowHeaderID(flowID)); ok {
		return nodeTarget(n, flowID), true
	}
	if n, ok := l.Node(layout.TriggerID(flowID)); ok {
		return nodeTarget(n, flowID), true
	}
	if edges := l.FlowEdges(flowID); len(edges) > 0 {
		e := edges[0]
		x1, x2 := e.Path[0].X, e.Path[0].X
		for _, p := range e.Path {
			x1, x2 = min(x1, p.X), max(x2, p.X)
		}
		return Target{ID: e.ID, FlowID: flowID, X: x1, Y: e.Y, Width: x2 - x1, Height: 0}, true
	}
	return Target{}, false
}

func nodeTarget(n layout.Node, flowID string) Target {
	return Target{ID: n.ID, FlowID: flowID, X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}
