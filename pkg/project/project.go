// Package project loads and saves ribforge project files. A project
// is the scene the exporter reads: frame range, render passes, inline
// shader and texture sources, and the option flags that gate each
// export phase. Projects are TOML documents; the in-memory copy
// tracks whether it has unsaved changes.
package project

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// Options are the per-project export gates
type Options struct {
	ExportRIB        bool `toml:"export_rib"`
	OnlyActive       bool `toml:"only_active"`
	CompileShaders   bool `toml:"compile_shaders"`
	OptimizeTextures bool `toml:"optimize_textures"`
	Render           bool `toml:"render"`
	PurgeRIB         bool `toml:"purge_rib"`
	PurgeShaders     bool `toml:"purge_shaders"`
	PurgeTextures    bool `toml:"purge_textures"`
	Interactive      bool `toml:"interactive"`
	Compress         bool `toml:"compress"`
}

// Pass is one render pass as stored in the project file. Zero-valued
// frame fields inherit the scene range.
type Pass struct {
	Name        string  `toml:"name"`
	Enabled     bool    `toml:"enabled"`
	Type        string  `toml:"type"`
	Output      string  `toml:"output"`
	Layer       string  `toml:"layer"`
	Multilayer  bool    `toml:"multilayer"`
	FrameStart  int     `toml:"frame_start"`
	FrameEnd    int     `toml:"frame_end"`
	FrameStep   int     `toml:"frame_step"`
	SamplesX    int     `toml:"samples_x"`
	SamplesY    int     `toml:"samples_y"`
	ShadingRate float64 `toml:"shading_rate"`
}

// Shader is an inline shader source carried by the project
type Shader struct {
	Name string `toml:"name"`
	Code string `toml:"code"`
}

// Texture names a texture source file for the optimize phase
type Texture struct {
	Name string `toml:"name"`
}

// Project is a loaded project file
type Project struct {
	Name       string `toml:"name"`
	ExportPath string `toml:"export_path"`

	FrameStart int `toml:"frame_start"`
	FrameEnd   int `toml:"frame_end"`
	FrameStep  int `toml:"frame_step"`

	// Active is the 1-based index of the active pass
	Active int `toml:"active_pass"`

	ResolutionX       int `toml:"resolution_x"`
	ResolutionY       int `toml:"resolution_y"`
	ResolutionPercent int `toml:"resolution_percent"`

	Options  Options   `toml:"options"`
	Passes   []Pass    `toml:"passes"`
	Shaders  []Shader  `toml:"shaders"`
	Textures []Texture `toml:"textures"`

	path  string
	dirty bool
}

// New returns an unsaved project with workable defaults
func New(name string) *Project {
	return &Project{
		Name:              name,
		ExportPath:        "exports",
		FrameStart:        1,
		FrameEnd:          1,
		FrameStep:         1,
		Active:            1,
		ResolutionX:       640,
		ResolutionY:       480,
		ResolutionPercent: 100,
		Options: Options{
			ExportRIB:      true,
			CompileShaders: true,
			Render:         true,
		},
		dirty: true,
	}
}

// Load reads a project file. A freshly loaded project is clean.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProjectLoad, "failed to read project file").
			WithDetail("path", path)
	}
	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, errors.ErrProjectLoad, "failed to parse project file").
			WithDetail("path", path)
	}
	p.path = path
	return &p, nil
}

// Save writes the project to path and marks it clean
func (p *Project) Save(path string) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrProjectSave, "failed to serialize project").
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrProjectSave, "failed to write project file").
			WithDetail("path", path)
	}
	p.path = path
	p.dirty = false
	return nil
}

// Path returns the file the project was loaded from or saved to,
// empty for an unsaved project
func (p *Project) Path() string {
	return p.path
}

// Dir returns the directory containing the project file. Relative
// export paths resolve against it.
func (p *Project) Dir() string {
	if p.path == "" {
		return "."
	}
	return filepath.Dir(p.path)
}

// Dirty reports whether in-memory state differs from disk
func (p *Project) Dirty() bool {
	return p.dirty
}

// SetActivePass changes the 1-based active pass index
func (p *Project) SetActivePass(index int) {
	p.Active = index
	p.dirty = true
}

// SceneRange returns the scene-level frame range with zero values
// normalized
func (p *Project) SceneRange() types.FrameRange {
	r := types.FrameRange{Start: p.FrameStart, End: p.FrameEnd, Step: p.FrameStep}
	if r.Start == 0 {
		r.Start = 1
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	if r.Step < 1 {
		r.Step = 1
	}
	return r
}

// ResolvedPasses returns the render passes with scene inheritance
// applied. An empty pass list yields a single enabled beauty pass
// covering the scene range. A pass without a type is a beauty pass.
func (p *Project) ResolvedPasses() []types.Pass {
	scene := p.SceneRange()
	if len(p.Passes) == 0 {
		return []types.Pass{{
			Name:    "Beauty Pass",
			Enabled: true,
			Type:    types.PassTypeBeauty,
			Range:   scene,
		}}
	}
	out := make([]types.Pass, len(p.Passes))
	for i, pass := range p.Passes {
		r := types.FrameRange{Start: pass.FrameStart, End: pass.FrameEnd, Step: pass.FrameStep}
		if r.Start == 0 {
			r.Start = scene.Start
		}
		if r.End == 0 {
			r.End = scene.End
		}
		if r.Step == 0 {
			r.Step = scene.Step
		}
		passType := pass.Type
		if passType == "" {
			passType = types.PassTypeBeauty
		}
		out[i] = types.Pass{
			Name:        pass.Name,
			Enabled:     pass.Enabled,
			Type:        passType,
			Output:      pass.Output,
			Layer:       pass.Layer,
			Multilayer:  pass.Multilayer,
			Range:       r,
			SamplesX:    pass.SamplesX,
			SamplesY:    pass.SamplesY,
			ShadingRate: pass.ShadingRate,
		}
	}
	return out
}

// ActivePass returns the 1-based active pass index clamped into the
// resolved pass list
func (p *Project) ActivePass() int {
	n := len(p.ResolvedPasses())
	if p.Active < 1 {
		return 1
	}
	if p.Active > n {
		return n
	}
	return p.Active
}

// Resolution returns the effective render resolution with
// resolution_percent applied. A missing percent means full size.
func (p *Project) Resolution() (int, int) {
	pct := p.ResolutionPercent
	if pct <= 0 {
		pct = 100
	}
	return p.ResolutionX * pct / 100, p.ResolutionY * pct / 100
}

// ExportAttr implements types.Attributed, exposing project fields to
// link tokens under the datablock namespace. Booleans render as
// True/False to match truthiness testing.
func (p *Project) ExportAttr(name string) (string, bool) {
	switch name {
	case "name":
		return p.Name, true
	case "export_path":
		return p.ExportPath, true
	case "frame_start":
		return strconv.Itoa(p.SceneRange().Start), true
	case "frame_end":
		return strconv.Itoa(p.SceneRange().End), true
	case "frame_step":
		return strconv.Itoa(p.SceneRange().Step), true
	case "active_pass":
		return strconv.Itoa(p.ActivePass()), true
	case "resolution_x":
		x, _ := p.Resolution()
		return strconv.Itoa(x), true
	case "resolution_y":
		_, y := p.Resolution()
		return strconv.Itoa(y), true
	case "export_rib":
		return formatBool(p.Options.ExportRIB), true
	case "only_active":
		return formatBool(p.Options.OnlyActive), true
	case "compile_shaders":
		return formatBool(p.Options.CompileShaders), true
	case "optimize_textures":
		return formatBool(p.Options.OptimizeTextures), true
	case "render":
		return formatBool(p.Options.Render), true
	case "interactive":
		return formatBool(p.Options.Interactive), true
	case "compress":
		return formatBool(p.Options.Compress), true
	}
	return "", false
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
