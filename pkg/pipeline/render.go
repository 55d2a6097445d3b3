package pipeline

import (
	"fmt"

	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/render/nodelink"
	"github.com/matzehuels/stateflow/pkg/render/sink"
	"github.com/matzehuels/stateflow/pkg/render/styles"
)

// RenderFromLayout generates output artifacts in the requested formats.
// d supplies the diagram identity for JSON and the actor graph for DOT.
func RenderFromLayout(l layout.Layout, d *model.Diagram, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, buildSVGOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(l, buildJSONOptions(d, opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, buildPNGOptions(opts)...)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(d, nodelink.Options{Detailed: opts.Detailed}))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption

	switch opts.Style {
	case StyleSimple:
		svgOpts = append(svgOpts, sink.WithStyle(styles.Simple{}))
	}
	if opts.Legend {
		svgOpts = append(svgOpts, sink.WithLegend())
	}
	if opts.Focus != "" {
		svgOpts = append(svgOpts, sink.WithFocus(opts.Focus))
	}
	return svgOpts
}

func buildJSONOptions(d *model.Diagram, opts Options) []sink.JSONOption {
	var jsonOpts []sink.JSONOption
	if d != nil {
		jsonOpts = append(jsonOpts, sink.WithJSONDiagram(d.ID, d.Name))
	}
	if opts.Focus != "" {
		jsonOpts = append(jsonOpts, sink.WithJSONFocus(opts.Focus))
	}
	return jsonOpts
}

func buildPNGOptions(opts Options) []sink.PNGOption {
	pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
	if opts.Legend {
		pngOpts = append(pngOpts, sink.WithPNGLegend())
	}
	if opts.Focus != "" {
		pngOpts = append(pngOpts, sink.WithPNGFocus(opts.Focus))
	}
	return pngOpts
}
