// Package pkg provides the core libraries for stateflow diagrams.
//
// # Overview
//
// A stateflow diagram describes the actors of a UI application (components,
// stores, services), the state each one owns, and the flows that move data
// between them. Stateflow projects such a diagram into a sequence-diagram
// layout: actors become columns, flow steps become rows of arrows. The pkg
// directory is organized into four areas:
//
//  1. Domain: [model], [layout], [focus], [lint]
//  2. Editing and persistence: [editor], [io], [store]
//  3. Output: [render] (styles, sink, nodelink)
//  4. Orchestration: [pipeline], [cache], [server], [config]
//
// # Architecture
//
// The typical data flow:
//
//	JSON / YAML document or store record
//	         ↓
//	    [io] / [store] (decode into a model.Diagram)
//	         ↓
//	    [layout] (columns, rows, edges, skipped steps)
//	         ↓
//	    [render] (SVG, PNG, JSON, DOT)
//
// # Quick Start
//
// Import a diagram and render it:
//
//	d, err := io.ImportFile("cart.json", time.Now())
//	if err != nil {
//	    return err
//	}
//	l := layout.Compute(d)
//	svg := sink.RenderSVG(l, sink.WithLegend())
//
// Or go through the cached pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), logger)
//	res, err := runner.Render(ctx, d, pipeline.Options{Formats: []string{"svg", "png"}})
//
// [model]: github.com/matzehuels/stateflow/pkg/model
// [layout]: github.com/matzehuels/stateflow/pkg/layout
// [focus]: github.com/matzehuels/stateflow/pkg/focus
// [lint]: github.com/matzehuels/stateflow/pkg/lint
// [editor]: github.com/matzehuels/stateflow/pkg/editor
// [io]: github.com/matzehuels/stateflow/pkg/io
// [store]: github.com/matzehuels/stateflow/pkg/store
// [render]: github.com/matzehuels/stateflow/pkg/render
// [pipeline]: github.com/matzehuels/stateflow/pkg/pipeline
// [cache]: github.com/matzehuels/stateflow/pkg/cache
// [server]: github.com/matzehuels/stateflow/pkg/server
// [config]: github.com/matzehuels/stateflow/pkg/config
package pkg
