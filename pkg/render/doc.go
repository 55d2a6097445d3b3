// Package render groups the output side of stateflow.
//
// # Overview
//
// A diagram is first positioned by [layout.Compute]; the packages below turn
// that geometry into artifacts:
//
//   - [styles]: the visual resolver (palette, glyphs, icons, stroke styles)
//     and the [styles.Style] drawing interface
//   - [sink]: SVG, JSON and PNG output of a computed layout
//   - [nodelink]: an actor interaction graph rendered through Graphviz
//
// # Usage
//
//	l := layout.Compute(d)
//	svg := sink.RenderSVG(l, sink.WithLegend(), sink.WithFocus("checkout"))
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	graph, err := nodelink.RenderSVG(dot)
//
// [layout.Compute]: github.com/matzehuels/stateflow/pkg/layout.Compute
// [styles]: github.com/matzehuels/stateflow/pkg/render/styles
// [styles.Style]: github.com/matzehuels/stateflow/pkg/render/styles.Style
// [sink]: github.com/matzehuels/stateflow/pkg/render/sink
// [nodelink]: github.com/matzehuels/stateflow/pkg/render/nodelink
package render
