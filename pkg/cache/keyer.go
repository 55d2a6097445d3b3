package cache

// Keyer builds cache keys. Implementations must return the same key for
// the same inputs across processes.
type Keyer interface {
	// LayoutKey identifies a layout by the hash of the diagram record and
	// the layout options.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact by the hash of the layout
	// and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs that change the result.
type LayoutKeyOpts struct {
	ActorWidth   float64 `json:"actor_width"`
	ActorGap     float64 `json:"actor_gap"`
	StepHeight   float64 `json:"step_height"`
	StartY       float64 `json:"start_y"`
	FlowGap      float64 `json:"flow_gap"`
	MultiFlowGap float64 `json:"multi_flow_gap"`
	// Geometry is a hash of the complete layout configuration; the named
	// fields above are the ones most often tuned.
	Geometry string `json:"geometry,omitempty"`
}

// ArtifactKeyOpts are the render inputs that change the output bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Style    string  `json:"style,omitempty"`
	Legend   bool    `json:"legend,omitempty"`
	Focus    string  `json:"focus,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes options into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
