package styles

import "bytes"

// Style defines the visual appearance of a sequence diagram.
// Implementations control how actor headers, lifelines, flow bands,
// trigger markers and messages are drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (markers, filters, fonts).
	RenderDefs(buf *bytes.Buffer)
	// RenderLifeline writes the vertical guide under an actor header.
	RenderLifeline(buf *bytes.Buffer, c Column)
	// RenderColumn writes an actor header box.
	RenderColumn(buf *bytes.Buffer, c Column)
	// RenderBand writes a flow section header spanning all columns.
	RenderBand(buf *bytes.Buffer, b Band)
	// RenderMarker writes a flow trigger marker.
	RenderMarker(buf *bytes.Buffer, m Marker)
	// RenderMessage writes a step's line and arrowhead.
	RenderMessage(buf *bytes.Buffer, m Message)
	// RenderLabel writes a step's label pill and badges.
	RenderLabel(buf *bytes.Buffer, m Message)
	// RenderLegend writes the actor-kind legend with its top-left corner at (x, y).
	RenderLegend(buf *bytes.Buffer, items []LegendItem, x, y float64)
}

// Point is a position in diagram coordinates.
type Point struct {
	X, Y float64
}

// Column contains everything needed to draw one actor and its lifeline.
type Column struct {
	ID         string
	Label      string  // Actor name
	Kind       string  // Actor type, shown under the name
	Icon       string
	Color      string  // Border color
	X, Y, W, H float64 // Header box
	LifelineX  float64
	LifelineY1 float64
	LifelineY2 float64
	Highlight  bool
}

// Band is a flow section header.
type Band struct {
	ID         string
	Label      string
	X, Y, W, H float64
	Highlight  bool
}

// Marker is a flow trigger box.
type Marker struct {
	ID         string
	Label      string
	X, Y, W, H float64
	Fill       string
	Border     string
	Highlight  bool
}

// Message is a single step edge.
type Message struct {
	ID        string
	Points    []Point // Polyline from source to target lifeline
	Arrow     Point   // Arrowhead tip
	Dir       float64 // +1 arrow points right, -1 points left
	Color     string
	Stroke    Stroke
	Glyph     string
	Label     string
	LabelX    float64
	LabelY    float64
	Async     bool
	Condition string // Guard expression, empty when unconditioned
	Highlight bool
}

// LegendItem is one row of the actor-kind legend.
type LegendItem struct {
	Label string
	Color string
}
