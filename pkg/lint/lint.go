// Package lint reports structural problems in a diagram.
//
// The layout engine tolerates dangling references by skipping what it
// cannot draw; lint makes those omissions visible before rendering. Issues
// are reported in model order: diagram, actors, states, conditions, flows.
package lint

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/matzehuels/stateflow/pkg/model"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Kind classifies an issue.
type Kind string

const (
	KindDuplicateID   Kind = "duplicate-id"
	KindInvalidField  Kind = "invalid-field"
	KindDanglingRef   Kind = "dangling-ref"
	KindSkippedStep   Kind = "skipped-step"
	KindScopeIgnored  Kind = "scope-ignored"
	KindSelfStep      Kind = "self-step"
	KindBadExpression Kind = "bad-expression"
)

// Issue is a single finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Path, i.Message)
}

// Report is the result of [Check].
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Count returns the number of issues with the given severity.
func (r Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Check inspects d and returns every issue found. A nil diagram yields an
// empty report.
func Check(d *model.Diagram) Report {
	c := &checker{issues: []Issue{}}
	if d == nil {
		return Report{Issues: c.issues}
	}
	c.ix = model.NewIndex(d)

	if strings.TrimSpace(d.Name) == "" {
		c.add(SeverityError, KindInvalidField, "name", "diagram name is required")
	}
	c.actors(d.Actors)
	c.states(d.States)
	c.conditions(d.Conditions)
	c.flows(d.Flows)
	return Report{Issues: c.issues}
}

type checker struct {
	ix     *model.Index
	issues []Issue
}

func (c *checker) add(sev Severity, kind Kind, path, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Severity: sev,
		Kind:     kind,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) violations(path string, v any) {
	for _, vi := range model.Violations(path, v) {
		c.add(SeverityError, KindInvalidField, vi.Field, "%s", vi.Message)
	}
}

// duplicates tracks ids already seen within one collection.
type duplicates map[string]int

func (c *checker) unique(seen duplicates, path, id string, i int) {
	if id == "" {
		return
	}
	if first, ok := seen[id]; ok {
		c.add(SeverityError, KindDuplicateID, path, "id %q already used at index %d; lookups resolve to the first", id, first)
		return
	}
	seen[id] = i
}

func (c *checker) actors(actors []model.Actor) {
	seen := duplicates{}
	for i, a := range actors {
		path := fmt.Sprintf("actors[%d]", i)
		c.unique(seen, path+".id", a.ID, i)
		c.violations(path, a)
		if a.Scope != "" && a.Type != model.ActorStore {
			c.add(SeverityWarning, KindScopeIgnored, path+".scope", "scope %q only affects store actors", a.Scope)
		}
		if a.Parent != "" {
			if _, ok := c.ix.Actor(a.Parent); !ok {
				c.add(SeverityWarning, KindDanglingRef, path+".parent", "unknown actor %q", a.Parent)
			}
		}
	}
}

func (c *checker) states(states []model.State) {
	seen := duplicates{}
	for i, s := range states {
		path := fmt.Sprintf("states[%d]", i)
		c.unique(seen, path+".id", s.ID, i)
		c.violations(path, s)
		if s.Owner == "" {
			continue
		}
		if _, ok := c.ix.Actor(s.Owner); !ok {
			c.add(SeverityWarning, KindDanglingRef, path+".owner", "unknown actor %q", s.Owner)
		}
	}
}

func (c *checker) conditions(conds []model.Condition) {
	seen := duplicates{}
	for i, cond := range conds {
		path := fmt.Sprintf("conditions[%d]", i)
		c.unique(seen, path+".id", cond.ID, i)
		c.violations(path, cond)
		c.expression(path+".expression", cond.Expression)
	}
}

// expression reports guards that do not parse. Free variables are allowed
// because conditions describe application state the diagram does not model.
func (c *checker) expression(path, src string) {
	if strings.TrimSpace(src) == "" {
		return
	}
	if _, err := expr.Compile(src, expr.Env(map[string]any{}), expr.AllowUndefinedVariables()); err != nil {
		c.add(SeverityWarning, KindBadExpression, path, "expression does not compile: %s", firstLine(err.Error()))
	}
}

func (c *checker) flows(flows []model.Flow) {
	seen := duplicates{}
	for i := range flows {
		f := &flows[i]
		path := fmt.Sprintf("flows[%d]", i)
		c.unique(seen, path+".id", f.ID, i)
		c.violations(path, *f)

		if f.Trigger.Actor != "" {
			if _, ok := c.ix.Actor(f.Trigger.Actor); !ok {
				c.add(SeverityWarning, KindDanglingRef, path+".trigger.actor", "unknown actor %q; trigger is not drawn", f.Trigger.Actor)
			}
		}

		stepSeen := duplicates{}
		for j := range f.Steps {
			c.step(stepSeen, fmt.Sprintf("%s.steps[%d]", path, j), j, &f.Steps[j])
		}
	}
}

func (c *checker) step(seen duplicates, path string, j int, s *model.FlowStep) {
	c.unique(seen, path+".id", s.ID, j)

	skipped := false
	for _, end := range []struct{ field, id string }{{"from", s.From}, {"to", s.To}} {
		if end.id == "" {
			c.add(SeverityWarning, KindSkippedStep, path+"."+end.field, "step has no %s actor and is not drawn", end.field)
			skipped = true
			continue
		}
		if _, ok := c.ix.Actor(end.id); !ok {
			c.add(SeverityWarning, KindSkippedStep, path+"."+end.field, "unknown actor %q; step is not drawn", end.id)
			skipped = true
		}
	}
	if !skipped && s.From == s.To {
		c.add(SeverityInfo, KindSelfStep, path, "step from %q to itself is drawn as a loop", s.From)
	}

	if s.State != "" {
		if _, ok := c.ix.State(s.State); !ok {
			c.add(SeverityWarning, KindDanglingRef, path+".state", "unknown state %q", s.State)
		}
	}
	if s.Condition != "" {
		if _, ok := c.ix.Condition(s.Condition); !ok {
			c.add(SeverityWarning, KindDanglingRef, path+".condition", "unknown condition %q", s.Condition)
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
