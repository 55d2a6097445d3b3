// Package sink renders a computed sequence layout to output formats.
//
// All sinks consume a [layout.Layout] and never look at the diagram
// itself, so a cached layout renders identically in every format:
//
//	l := layout.Compute(d)
//	svg := sink.RenderSVG(l, sink.WithLegend(), sink.WithFocus("checkout"))
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//	js, err := sink.RenderJSON(l, sink.WithJSONDiagram(d.ID, d.Name))
//
// The SVG sink delegates drawing to a [styles.Style]; the PNG sink
// rasterizes the same primitives with fogleman/gg using the Go fonts.
package sink
