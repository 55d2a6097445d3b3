package sink

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	legend bool
	focus  string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGLegend adds the actor-kind legend.
func WithPNGLegend() PNGOption { return func(r *pngRenderer) { r.legend = true } }

// WithPNGFocus highlights one flow.
func WithPNGFocus(flowID string) PNGOption { return func(r *pngRenderer) { r.focus = flowID } }

var (
	fontsOnce sync.Once
	regular   *truetype.Font
	bold      *truetype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// RenderPNG rasterizes l. The Go fonts carry no emoji, so actor icons and
// step glyphs are left out of the raster.
func RenderPNG(l layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	s := buildScene(l, r.focus, r.legend)

	w := max(1, int(s.width*r.scale))
	h := max(1, int(s.height*r.scale))
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.Scale(r.scale, r.scale)
	dc.Translate(-s.minX, -s.minY)

	regularFace := face(regular, styles.FontSize)
	boldFace := face(bold, styles.FontSize+1)
	smallFace := face(regular, styles.FontSize-1)

	for _, c := range s.columns {
		dc.SetHexColor("#d1d5db")
		dc.SetLineWidth(1)
		dc.SetDash(6, 4)
		dc.DrawLine(c.LifelineX, c.LifelineY1, c.LifelineX, c.LifelineY2)
		dc.Stroke()
		dc.SetDash()
	}
	for _, c := range s.columns {
		dc.DrawRoundedRectangle(c.X, c.Y, c.W, c.H, 8)
		dc.SetHexColor("#ffffff")
		dc.FillPreserve()
		dc.SetHexColor(c.Color)
		dc.SetLineWidth(2)
		dc.Stroke()

		dc.SetFontFace(boldFace)
		dc.SetHexColor("#1f2937")
		dc.DrawString(styles.Truncate(c.Label, c.W-24), c.X+12, c.Y+c.H/2-2)
		dc.SetFontFace(smallFace)
		dc.SetHexColor("#6b7280")
		dc.DrawString(c.Kind, c.X+12, c.Y+c.H/2+14)
	}
	for _, b := range s.bands {
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 4)
		dc.SetHexColor("#f1f5f9")
		dc.FillPreserve()
		dc.SetHexColor("#cbd5e1")
		dc.SetLineWidth(highlightWidth(b.Highlight, 1))
		dc.Stroke()
		dc.SetFontFace(boldFace)
		dc.SetHexColor("#334155")
		dc.DrawString(styles.Truncate(b.Label, b.W-20), b.X+10, b.Y+b.H/2+4)
	}
	for _, m := range s.markers {
		dc.DrawRoundedRectangle(m.X, m.Y, m.W, m.H, 4)
		dc.SetHexColor(m.Fill)
		dc.FillPreserve()
		dc.SetHexColor(m.Border)
		dc.SetLineWidth(highlightWidth(m.Highlight, 1))
		dc.Stroke()
		dc.SetFontFace(regularFace)
		dc.SetHexColor("#78350f")
		dc.DrawString(styles.Truncate(m.Label, m.W-12), m.X+6, m.Y+m.H/2+4)
	}
	for _, m := range s.messages {
		drawMessage(dc, m)
	}
	dc.SetFontFace(regularFace)
	for _, m := range s.messages {
		drawLabel(dc, m)
	}
	if len(s.legend) > 0 {
		x, y := s.legendOrigin()
		drawLegend(dc, s.legend, x, y, smallFace)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func highlightWidth(on bool, base float64) float64 {
	if on {
		return 3
	}
	return base
}

func drawMessage(dc *gg.Context, m styles.Message) {
	if len(m.Points) < 2 {
		return
	}
	dc.SetHexColor(m.Color)
	dc.SetLineWidth(highlightWidth(m.Highlight, m.Stroke.Width))
	if m.Stroke.Dash != "" {
		dc.SetDash(4, 4)
	}
	dc.MoveTo(m.Points[0].X, m.Points[0].Y)
	for _, p := range m.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
	dc.SetDash()

	base := m.Arrow.X - m.Dir*8
	dc.MoveTo(m.Arrow.X, m.Arrow.Y)
	dc.LineTo(base, m.Arrow.Y-4)
	dc.LineTo(base, m.Arrow.Y+4)
	dc.ClosePath()
	dc.Fill()
}

func drawLabel(dc *gg.Context, m styles.Message) {
	tw, _ := dc.MeasureString(m.Label)
	w := tw + 16
	x := m.LabelX - w/2
	y := m.LabelY - 22
	dc.DrawRoundedRectangle(x, y, w, 20, 4)
	dc.SetHexColor(m.Color)
	dc.Fill()
	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored(m.Label, m.LabelX, y+10, 0.5, 0.35)

	bx := x + w + 9
	if m.Async {
		dc.DrawCircle(bx, y+10, 7)
		dc.SetHexColor("#0ea5e9")
		dc.Fill()
		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored("A", bx, y+10, 0.5, 0.35)
		bx += 16
	}
	if m.Condition != "" {
		dc.SetHexColor("#b45309")
		dc.DrawString("["+m.Condition+"]", bx-7, y+14)
	}
}

func drawLegend(dc *gg.Context, items []styles.LegendItem, x, y float64, f font.Face) {
	h := float64(len(items))*legendRow + 10
	dc.DrawRoundedRectangle(x, y, legendW, h, 4)
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor("#e5e7eb")
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.SetFontFace(f)
	for i, it := range items {
		ry := y + 5 + float64(i)*legendRow
		dc.DrawRectangle(x+8, ry+3, 10, 10)
		dc.SetHexColor(it.Color)
		dc.Fill()
		dc.SetHexColor("#374151")
		dc.DrawString(it.Label, x+24, ry+12)
	}
}
