package styles

import "github.com/matzehuels/stateflow/pkg/model"

// Palette colors. Every function in this file is pure and total: unknown
// enum values map to a documented fallback rather than an error.
const (
	ColorComponent    = "#3b82f6" // blue
	ColorService      = "#a855f7" // purple
	ColorStoreGlobal  = "#22c55e" // green
	ColorStoreSubtree = "#14b8a6" // teal
	ColorStoreLocal   = "#f97316" // orange
	ColorNeutral      = "#64748b" // slate; external actors and dispatch edges

	ColorLegendExternal = "#f97316"
	ColorLegendUnknown  = "#888888"

	TriggerFill   = "#fef3c7"
	TriggerBorder = "#d97706"
)

// Step glyphs.
const (
	GlyphDispatch    = "→"
	GlyphStateChange = "⟳"
	GlyphSubscribe   = "◎"
	GlyphEffect      = "⚡"
	GlyphRender      = "🔄"
)

// Stroke describes how an edge line is drawn.
type Stroke struct {
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"` // SVG stroke-dasharray, empty for solid
}

// ColorFor returns the color of an actor of the given kind. Scope only
// matters for stores; an unset or unknown scope is treated as local.
func ColorFor(kind model.ActorType, scope model.StateScope) string {
	switch kind {
	case model.ActorComponent:
		return ColorComponent
	case model.ActorService:
		return ColorService
	case model.ActorStore:
		return storeColor(scope)
	case model.ActorExternal:
		return ColorNeutral
	}
	return ColorNeutral
}

func storeColor(scope model.StateScope) string {
	switch scope {
	case model.ScopeGlobal:
		return ColorStoreGlobal
	case model.ScopeSubtree:
		return ColorStoreSubtree
	case model.ScopeLocal:
		return ColorStoreLocal
	}
	return ColorStoreLocal
}

// EdgeColor returns the stroke color of a step drawn toward an actor of
// the given kind and scope. Dispatch is a generic action send and is always
// neutral.
func EdgeColor(step model.StepType, kind model.ActorType, scope model.StateScope) string {
	if step == model.StepDispatch {
		return ColorNeutral
	}
	return ColorFor(kind, scope)
}

// GlyphFor returns the symbol shown in front of a step label.
func GlyphFor(step model.StepType) string {
	switch step {
	case model.StepDispatch:
		return GlyphDispatch
	case model.StepStateChange:
		return GlyphStateChange
	case model.StepSubscribe:
		return GlyphSubscribe
	case model.StepEffect:
		return GlyphEffect
	case model.StepRender:
		return GlyphRender
	}
	return GlyphDispatch
}

// IconFor returns the icon drawn in an actor header. Unknown kinds use the
// component icon.
func IconFor(kind model.ActorType) string {
	switch kind {
	case model.ActorComponent:
		return "🧩"
	case model.ActorStore:
		return "📦"
	case model.ActorService:
		return "⚙️"
	case model.ActorExternal:
		return "🌐"
	}
	return "🧩"
}

// LegendColor returns the overview legend color for an actor kind. The
// legend ignores scope. An empty kind counts as a component.
func LegendColor(kind model.ActorType) string {
	switch kind {
	case model.ActorComponent, "":
		return ColorComponent
	case model.ActorStore:
		return ColorStoreGlobal
	case model.ActorService:
		return ColorService
	case model.ActorExternal:
		return ColorLegendExternal
	}
	return ColorLegendUnknown
}

// StrokeFor returns the line style of a step. Subscriptions are drawn
// thicker and dashed.
func StrokeFor(step model.StepType) Stroke {
	switch step {
	case model.StepSubscribe:
		return Stroke{Width: 2, Dash: "4 4"}
	case model.StepDispatch, model.StepStateChange, model.StepEffect, model.StepRender:
		return Stroke{Width: 1.5}
	}
	return Stroke{Width: 1.5}
}
