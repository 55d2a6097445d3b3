package styles

import (
	"bytes"
	"fmt"
)

const (
	arrowLen   = 8.0
	arrowHalf  = 4.0
	labelPadX  = 8.0
	labelH     = 20.0
	badgeR     = 7.0
	legendRowH = 18.0
	legendW    = 130.0
)

// Simple is a clean, flat style with rounded boxes and dashed lifelines.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <style>
      text { font-family: ui-sans-serif, system-ui, sans-serif; }
      .focus rect { stroke-width: 3; }
      .focus polyline { stroke-width: 3; }
    </style>
  </defs>
`)
}

func (Simple) RenderLifeline(buf *bytes.Buffer, c Column) {
	fmt.Fprintf(buf, `  <line id="lifeline-%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#d1d5db" stroke-width="1" stroke-dasharray="6 4"/>`+"\n",
		EscapeXML(c.ID), c.LifelineX, c.LifelineY1, c.LifelineX, c.LifelineY2)
}

func (Simple) RenderColumn(buf *bytes.Buffer, c Column) {
	WrapHighlight(buf, c.Highlight, func() {
		fmt.Fprintf(buf, `  <rect id="actor-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="#ffffff" stroke="%s" stroke-width="2"/>`+"\n",
			EscapeXML(c.ID), c.X, c.Y, c.W, c.H, EscapeXML(c.Color))
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="16">%s</text>`+"\n",
			c.X+12, c.Y+c.H/2+6, EscapeXML(c.Icon))
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="600" fill="#1f2937">%s</text>`+"\n",
			c.X+38, c.Y+c.H/2-2, FontSize+1, EscapeXML(Truncate(c.Label, c.W-46)))
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" fill="#6b7280">%s</text>`+"\n",
			c.X+38, c.Y+c.H/2+14, FontSize-1, EscapeXML(c.Kind))
	})
}

func (Simple) RenderBand(buf *bytes.Buffer, b Band) {
	WrapHighlight(buf, b.Highlight, func() {
		fmt.Fprintf(buf, `  <rect id="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="#f1f5f9" stroke="#cbd5e1"/>`+"\n",
			EscapeXML(b.ID), b.X, b.Y, b.W, b.H)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="600" fill="#334155">%s</text>`+"\n",
			b.X+10, b.Y+b.H/2+4, FontSize, EscapeXML(Truncate(b.Label, b.W-20)))
	})
}

func (Simple) RenderMarker(buf *bytes.Buffer, m Marker) {
	WrapHighlight(buf, m.Highlight, func() {
		fmt.Fprintf(buf, `  <rect id="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			EscapeXML(m.ID), m.X, m.Y, m.W, m.H, EscapeXML(m.Fill), EscapeXML(m.Border))
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" fill="#78350f">%s</text>`+"\n",
			m.X+6, m.Y+m.H/2+4, FontSize, EscapeXML(Truncate(m.Label, m.W-12)))
	})
}

func (Simple) RenderMessage(buf *bytes.Buffer, m Message) {
	dash := ""
	if m.Stroke.Dash != "" {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, EscapeXML(m.Stroke.Dash))
	}
	WrapHighlight(buf, m.Highlight, func() {
		fmt.Fprintf(buf, `  <polyline id="edge-%s" points="%s" fill="none" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
			EscapeXML(m.ID), fmtPoints(m.Points), EscapeXML(m.Color), m.Stroke.Width, dash)
		base := m.Arrow.X - m.Dir*arrowLen
		fmt.Fprintf(buf, `  <polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`+"\n",
			m.Arrow.X, m.Arrow.Y, base, m.Arrow.Y-arrowHalf, base, m.Arrow.Y+arrowHalf, EscapeXML(m.Color))
	})
}

func (Simple) RenderLabel(buf *bytes.Buffer, m Message) {
	text := m.Glyph + " " + m.Label
	w := TextWidth(text) + 2*labelPadX
	x := m.LabelX - w/2
	y := m.LabelY - labelH - 2
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s"/>`+"\n",
		x, y, w, labelH, EscapeXML(m.Color))
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" fill="#ffffff" text-anchor="middle">%s</text>`+"\n",
		m.LabelX, y+labelH/2+4, FontSize, EscapeXML(text))

	bx := x + w + badgeR + 2
	if m.Async {
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="#0ea5e9"><title>async</title></circle>`+"\n", bx, y+labelH/2, badgeR)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="9" fill="#ffffff" text-anchor="middle">A</text>`+"\n", bx, y+labelH/2+3)
		bx += 2*badgeR + 2
	}
	if m.Condition != "" {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" fill="#b45309">[%s]</text>`+"\n",
			bx-badgeR, y+labelH/2+4, FontSize-1, EscapeXML(m.Condition))
	}
}

func (Simple) RenderLegend(buf *bytes.Buffer, items []LegendItem, x, y float64) {
	h := float64(len(items))*legendRowH + 10
	fmt.Fprintf(buf, `  <g id="legend"><rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="#ffffff" stroke="#e5e7eb"/>`+"\n",
		x, y, legendW, h)
	for i, it := range items {
		ry := y + 5 + float64(i)*legendRowH
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>`+"\n", x+8, ry+3, EscapeXML(it.Color))
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="11" fill="#374151">%s</text>`+"\n", x+24, ry+12, EscapeXML(it.Label))
	}
	buf.WriteString("  </g>\n")
}

var _ Style = Simple{}
