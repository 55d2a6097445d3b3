// Package styles resolves the visual vocabulary of a sequence diagram and
// provides SVG drawing styles.
//
// The palette functions ([ColorFor], [EdgeColor], [GlyphFor], [IconFor],
// [LegendColor], [StrokeFor]) are pure and total over the model enums,
// falling back to a neutral value for anything unknown. The layout engine
// calls them to decorate its output; renderers never need to reinterpret
// actor kinds themselves.
//
// A [Style] draws the primitives ([Column], [Band], [Marker], [Message])
// that the SVG sink derives from a layout. [Simple] is the default.
package styles
