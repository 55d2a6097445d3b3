package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stateflow/pkg/focus"
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style  styles.Style
	legend bool
	focus  string
}

// WithStyle selects the drawing style. The default is [styles.Simple].
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithLegend adds the actor-kind legend to the right of the diagram.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithFocus highlights the header, trigger and messages of one flow and
// records the flow's focus node on the root element.
func WithFocus(flowID string) SVGOption { return func(r *svgRenderer) { r.focus = flowID } }

// RenderSVG draws l as a standalone SVG document. Drawing order is
// lifelines, actor headers, flow bands, triggers, messages, then labels so
// that labels are never covered by lines.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	s := buildScene(l, r.focus, r.legend)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f"`,
		s.minX, s.minY, s.width, s.height, s.width, s.height)
	if r.focus != "" {
		if t, ok := focus.Resolve(l, r.focus); ok {
			fmt.Fprintf(&buf, ` data-focus="%s"`, styles.EscapeXML(t.ID))
		}
	}
	buf.WriteString(">\n")
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n",
		s.minX, s.minY, s.width, s.height)

	r.style.RenderDefs(&buf)
	for _, c := range s.columns {
		r.style.RenderLifeline(&buf, c)
	}
	for _, c := range s.columns {
		r.style.RenderColumn(&buf, c)
	}
	for _, b := range s.bands {
		r.style.RenderBand(&buf, b)
	}
	for _, m := range s.markers {
		r.style.RenderMarker(&buf, m)
	}
	for _, m := range s.messages {
		r.style.RenderMessage(&buf, m)
	}
	for _, m := range s.messages {
		r.style.RenderLabel(&buf, m)
	}
	if len(s.legend) > 0 {
		x, y := s.legendOrigin()
		r.style.RenderLegend(&buf, s.legend, x, y)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
