package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/model"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed lists the labels of every step on an edge.
	// When false, edges only carry the step count.
	Detailed bool
}

// pair is one directed actor-to-actor connection.
type pair struct {
	from, to string
	labels   []string
}

// ToDOT converts the actor interactions of d to Graphviz DOT.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Steps the layout engine would skip are left out, so the graph shows
// exactly the messages of the sequence view, merged per actor pair.
func ToDOT(d *model.Diagram, opts Options) string {
	l := layout.Compute(d)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range l.Actors() {
		label := n.Label + "\n" + string(n.Actor.Type)
		fmt.Fprintf(&buf, "  %q [label=%q, color=%q, penwidth=2];\n", n.ID, label, n.Actor.Color)
	}

	pairs := collect(l.Edges)
	if len(pairs) > 0 {
		buf.WriteString("\n")
	}
	for _, p := range pairs {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", p.from, p.to, fmtLabel(p, opts.Detailed))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// collect merges edges by (source, target) in first-seen order.
func collect(edges []layout.Edge) []*pair {
	var out []*pair
	seen := make(map[[2]string]*pair)
	for _, e := range edges {
		k := [2]string{e.Source, e.Target}
		p, ok := seen[k]
		if !ok {
			p = &pair{from: e.Source, to: e.Target}
			seen[k] = p
			out = append(out, p)
		}
		p.labels = append(p.labels, e.Caption)
	}
	return out
}

func fmtLabel(p *pair, detailed bool) string {
	n := len(p.labels)
	count := fmt.Sprintf("%d step", n)
	if n != 1 {
		count += "s"
	}
	if !detailed {
		return count
	}
	return count + "\n" + strings.Join(p.labels, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based root element with a
// plain viewBox so the SVG scales like the sequence renderer's output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
