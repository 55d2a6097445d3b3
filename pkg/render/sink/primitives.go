package sink

import (
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

const (
	padding   = 24.0
	legendGap = 24.0
	legendW   = 130.0
	legendRow = 18.0
)

// scene is a layout converted into style primitives.
type scene struct {
	columns  []styles.Column
	bands    []styles.Band
	markers  []styles.Marker
	messages []styles.Message
	legend   []styles.LegendItem

	minX, minY, width, height float64
}

// buildScene converts l. Elements of focusFlow are highlighted.
func buildScene(l layout.Layout, focusFlow string, withLegend bool) scene {
	s := scene{
		minX:   l.MinX - padding,
		minY:   -padding,
		width:  l.Width + 2*padding,
		height: l.Height + 2*padding,
	}

	for _, n := range l.Nodes {
		switch n.Kind {
		case layout.KindActor:
			a := n.Actor
			s.columns = append(s.columns, styles.Column{
				ID:         n.ID,
				Label:      n.Label,
				Kind:       string(a.Type),
				Icon:       a.Icon,
				Color:      a.Color,
				X:          n.X,
				Y:          n.Y,
				W:          n.Width,
				H:          n.Height,
				LifelineX:  a.LifelineX,
				LifelineY1: n.Y + n.Height,
				LifelineY2: n.Y + n.Height + a.LifelineHeight,
			})
		case layout.KindFlowHeader:
			s.bands = append(s.bands, styles.Band{
				ID:        n.ID,
				Label:     n.Label,
				X:         n.X,
				Y:         n.Y,
				W:         n.Width,
				H:         n.Height,
				Highlight: focusFlow != "" && n.Flow.FlowID == focusFlow,
			})
		case layout.KindTrigger:
			s.markers = append(s.markers, styles.Marker{
				ID:        n.ID,
				Label:     n.Label,
				X:         n.X,
				Y:         n.Y,
				W:         n.Width,
				H:         n.Height,
				Fill:      n.Trigger.Fill,
				Border:    n.Trigger.Border,
				Highlight: focusFlow != "" && n.Trigger.FlowID == focusFlow,
			})
		}
	}

	for _, e := range l.Edges {
		pts := make([]styles.Point, len(e.Path))
		for i, p := range e.Path {
			pts[i] = styles.Point{X: p.X, Y: p.Y}
		}
		dir := 1.0
		if e.Direction == layout.DirLeft {
			dir = -1
		}
		s.messages = append(s.messages, styles.Message{
			ID:        e.ID,
			Points:    pts,
			Arrow:     styles.Point{X: e.Arrow.X, Y: e.Arrow.Y},
			Dir:       dir,
			Color:     e.Color,
			Stroke:    e.Stroke,
			Glyph:     e.Glyph,
			Label:     e.Caption,
			LabelX:    e.LabelX,
			LabelY:    e.LabelY,
			Async:     e.Async,
			Condition: e.Condition,
			Highlight: focusFlow != "" && e.FlowID == focusFlow,
		})
	}

	if withLegend {
		for _, entry := range l.Legend {
			s.legend = append(s.legend, styles.LegendItem{Label: string(entry.Kind), Color: entry.Color})
		}
		s.width += legendW + legendGap
	}
	return s
}

// legendOrigin is the top-left corner of the legend box.
func (s scene) legendOrigin() (float64, float64) {
	return s.minX + s.width - padding - legendW, 0
}
