package layout

// Config holds the geometric constants of the engine.
type Config struct {
	ActorWidth   float64 `toml:"actor_width" json:"actor_width"`
	ActorGap     float64 `toml:"actor_gap" json:"actor_gap"`
	ActorHeight  float64 `toml:"actor_height" json:"actor_height"`
	StepHeight   float64 `toml:"step_height" json:"step_height"`
	StartY       float64 `toml:"start_y" json:"start_y"`
	MinHeight    float64 `toml:"min_height" json:"min_height"`
	HeightMargin float64 `toml:"height_margin" json:"height_margin"`
	// Rows reserved for a flow header.
	HeaderSlots float64 `toml:"header_slots" json:"header_slots"`
	// Drawn height of a flow header.
	HeaderHeight float64 `toml:"header_height" json:"header_height"`
	// Rows after a flow when the diagram has a single flow.
	FlowGap float64 `toml:"flow_gap" json:"flow_gap"`
	// Rows after each flow otherwise.
	MultiFlowGap float64 `toml:"multi_flow_gap" json:"multi_flow_gap"`
	// Trigger marker offset left of its actor column.
	TriggerOffsetX float64 `toml:"trigger_offset_x" json:"trigger_offset_x"`
	// Trigger marker offset above its row.
	TriggerOffsetY float64 `toml:"trigger_offset_y" json:"trigger_offset_y"`
	TriggerWidth   float64 `toml:"trigger_width" json:"trigger_width"`
	TriggerHeight  float64 `toml:"trigger_height" json:"trigger_height"`
	ArrowOffset    float64 `toml:"arrow_offset" json:"arrow_offset"`
	SelfLoopWidth  float64 `toml:"self_loop_width" json:"self_loop_width"`
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		ActorWidth:     150,
		ActorGap:       50,
		ActorHeight:    56,
		StepHeight:     60,
		StartY:         100,
		MinHeight:      500,
		HeightMargin:   200,
		HeaderSlots:    1,
		HeaderHeight:   32,
		FlowGap:        1,
		MultiFlowGap:   1.5,
		TriggerOffsetX: 120,
		TriggerOffsetY: 40,
		TriggerWidth:   150,
		TriggerHeight:  30,
		ArrowOffset:    8,
		SelfLoopWidth:  40,
	}
}

// normalized replaces unusable values with defaults. Sizes must be
// positive; gaps and offsets may be zero but not negative.
func (c Config) normalized() Config {
	d := DefaultConfig()
	positive := []struct{ v, def *float64 }{
		{&c.ActorWidth, &d.ActorWidth},
		{&c.ActorHeight, &d.ActorHeight},
		{&c.StepHeight, &d.StepHeight},
		{&c.HeaderHeight, &d.HeaderHeight},
		{&c.TriggerWidth, &d.TriggerWidth},
		{&c.TriggerHeight, &d.TriggerHeight},
		{&c.SelfLoopWidth, &d.SelfLoopWidth},
	}
	for _, p := range positive {
		if *p.v <= 0 {
			*p.v = *p.def
		}
	}
	for _, v := range []*float64{
		&c.ActorGap, &c.StartY, &c.MinHeight, &c.HeightMargin, &c.HeaderSlots,
		&c.FlowGap, &c.MultiFlowGap, &c.TriggerOffsetY, &c.ArrowOffset,
	} {
		*v = max(0, *v)
	}
	return c
}

// Option configures [Compute].
type Option func(*Config)

// WithConfig replaces the whole geometry.
func WithConfig(c Config) Option { return func(dst *Config) { *dst = c } }

// WithStepHeight sets the vertical distance between rows.
func WithStepHeight(h float64) Option { return func(c *Config) { c.StepHeight = h } }

// WithActorSpacing sets the column width and the gap between columns.
func WithActorSpacing(width, gap float64) Option {
	return func(c *Config) { c.ActorWidth, c.ActorGap = width, gap }
}
