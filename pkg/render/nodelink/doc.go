// Package nodelink renders actor interactions as a node-link graph.
//
// # Overview
//
// Where the sequence view lays out every step in time order, this package
// collapses a diagram into "who talks to whom": one node per actor and one
// edge per directed actor pair that exchanges at least one message. It is
// rendered in-process with Graphviz.
//
// # Usage
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
//   - Detailed: edge labels list each step caption under the step count.
//
// Edges are derived from the sequence layout, so steps that reference
// missing actors are omitted here too.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for SVG rendering; no
// external binaries are required.
package nodelink
