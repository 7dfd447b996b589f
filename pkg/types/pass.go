package types

// PassTypeBeauty marks the pass whose output feeds the display manifest
const PassTypeBeauty = "BEAUTY"

// Pass is a read-only snapshot of one rendering pass's scheduling state,
// resolved once per orchestration run
type Pass struct {
	// Name is the user-facing pass name
	Name string

	// Enabled gates whether the pass participates in export at all
	Enabled bool

	// Type classifies the pass (BEAUTY, SHADOW, ...)
	Type string

	// Output is the token-bearing output path for display routing
	Output string

	// Layer is the render layer this pass draws from
	Layer string

	// Multilayer indicates a multi-layer output file
	Multilayer bool

	// Range is the frame range the pass covers
	Range FrameRange

	// SamplesX and SamplesY are pixel sample counts (0 = renderer default)
	SamplesX int
	SamplesY int

	// ShadingRate is the pass shading rate (0 = renderer default)
	ShadingRate float64
}

// IsBeauty reports whether this pass contributes to display output
func (p *Pass) IsBeauty() bool {
	return p.Type == PassTypeBeauty
}
