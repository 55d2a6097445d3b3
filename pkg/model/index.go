package model

// Index resolves weak references inside a diagram.
//
// Lookups never fail loudly: a dangling id simply reports ok == false.
// When ids are duplicated the first occurrence wins, matching the order in
// which entities appear in the document. An Index is a snapshot; rebuild it
// after mutating the diagram.
type Index struct {
	actors     map[string]int
	states     map[string]int
	conditions map[string]int
	flows      map[string]int
	d          *Diagram
}

// NewIndex builds lookup tables for d. A nil diagram yields an index on
// which every lookup misses.
func NewIndex(d *Diagram) *Index {
	if d == nil {
		d = &Diagram{}
	}
	ix := &Index{
		actors:     make(map[string]int, len(d.Actors)),
		states:     make(map[string]int, len(d.States)),
		conditions: make(map[string]int, len(d.Conditions)),
		flows:      make(map[string]int, len(d.Flows)),
		d:          d,
	}
	for i, a := range d.Actors {
		if _, dup := ix.actors[a.ID]; !dup {
			ix.actors[a.ID] = i
		}
	}
	for i, s := range d.States {
		if _, dup := ix.states[s.ID]; !dup {
			ix.states[s.ID] = i
		}
	}
	for i, c := range d.Conditions {
		if _, dup := ix.conditions[c.ID]; !dup {
			ix.conditions[c.ID] = i
		}
	}
	for i, f := range d.Flows {
		if _, dup := ix.flows[f.ID]; !dup {
			ix.flows[f.ID] = i
		}
	}
	return ix
}

// Actor returns the actor with the given id.
func (ix *Index) Actor(id string) (Actor, bool) {
	i, ok := ix.ActorPosition(id)
	if !ok {
		return Actor{}, false
	}
	return ix.d.Actors[i], true
}

// ActorPosition returns the column position of the actor with the given id.
func (ix *Index) ActorPosition(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	i, ok := ix.actors[id]
	return i, ok
}

// State returns the state with the given id.
func (ix *Index) State(id string) (State, bool) {
	if id == "" {
		return State{}, false
	}
	i, ok := ix.states[id]
	if !ok {
		return State{}, false
	}
	return ix.d.States[i], true
}

// Condition returns the condition with the given id.
func (ix *Index) Condition(id string) (Condition, bool) {
	if id == "" {
		return Condition{}, false
	}
	i, ok := ix.conditions[id]
	if !ok {
		return Condition{}, false
	}
	return ix.d.Conditions[i], true
}

// Flow returns the flow with the given id.
func (ix *Index) Flow(id string) (Flow, bool) {
	if id == "" {
		return Flow{}, false
	}
	i, ok := ix.flows[id]
	if !ok {
		return Flow{}, false
	}
	return ix.d.Flows[i], true
}
