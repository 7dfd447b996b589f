package types

// DisplayPass records where one beauty pass routes its rendered output
type DisplayPass struct {
	File       string `yaml:"file"`
	Layer      string `yaml:"layer"`
	Multilayer bool   `yaml:"multilayer"`
}

// DisplayOutput aggregates display metadata for one exported frame:
// the render resolution plus one entry per beauty pass
type DisplayOutput struct {
	X      int           `yaml:"x"`
	Y      int           `yaml:"y"`
	Passes []DisplayPass `yaml:"passes"`
}

// Reset clears collected passes and records a new resolution
func (d *DisplayOutput) Reset(x, y int) {
	d.X = x
	d.Y = y
	d.Passes = nil
}
