package types

import (
	"strconv"
	"strings"
)

// Attributed is the opaque datablock contract. Collaborators expose
// their scene state as named string attributes; the context forwards
// unresolved lookups here.
type Attributed interface {
	// ExportAttr returns the attribute's string value, or false when
	// the attribute does not exist
	ExportAttr(name string) (string, bool)
}

// ExportContext is the scope link tokens evaluate against. One context
// is created per export unit (per shader library, per pass, per command);
// nested operations receive a Derive()d copy rather than mutating and
// restoring shared state.
type ExportContext struct {
	// ContextPipeline, ContextCategory and ContextPanel identify the
	// pipeline panel currently in scope
	ContextPipeline string
	ContextCategory string
	ContextPanel    string

	// ContextWindow is the panel window in scope (SCENE, RENDER, WORLD)
	ContextWindow string

	// CurrentFrame is the frame being exported
	CurrentFrame int

	// CurrentPass is the 1-based index of the pass being exported
	CurrentPass int

	// CurrentCommand is the running command counter within this context
	CurrentCommand int

	// CurrentLibrary is the running shader-library counter
	CurrentLibrary int

	// RootPath is the resolved export directory
	RootPath string

	// TargetPath and TargetName are the current write target binding
	TargetPath string
	TargetName string

	// DimsResX and DimsResY are the display resolution dimensions
	DimsResX int
	DimsResY int

	// Pass is the pass in scope, nil outside pass iteration
	Pass *Pass

	// Datablock is the opaque scene handle supplied by collaborators
	Datablock Attributed
}

// NewContext returns an empty context
func NewContext() *ExportContext {
	return &ExportContext{}
}

// Derive returns an independent copy of the context. Scalar fields are
// copied by value; Pass and Datablock are read-only references and stay
// shared. Mutating the copy never affects the parent.
func (c *ExportContext) Derive() *ExportContext {
	derived := *c
	return &derived
}

// Attr resolves a dotted attribute path against the context. Paths are
// the snake-cased names templates embed in tokens ("current_frame",
// "pass.samples_x", "datablock.angle"). A leading dot is accepted.
// Unknown names fall through to the Datablock; false means the path
// does not resolve.
func (c *ExportContext) Attr(path string) (string, bool) {
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "", false
	}

	head, rest, nested := strings.Cut(path, ".")

	switch head {
	case "pass":
		if !nested || c.Pass == nil {
			return "", false
		}
		return c.passAttr(rest)
	case "datablock":
		if !nested || c.Datablock == nil {
			return "", false
		}
		return c.Datablock.ExportAttr(rest)
	}

	if nested {
		return "", false
	}

	switch head {
	case "context_pipeline":
		return c.ContextPipeline, true
	case "context_category":
		return c.ContextCategory, true
	case "context_panel":
		return c.ContextPanel, true
	case "context_window":
		return c.ContextWindow, true
	case "current_frame":
		return strconv.Itoa(c.CurrentFrame), true
	case "current_pass":
		return strconv.Itoa(c.CurrentPass), true
	case "current_command":
		return strconv.Itoa(c.CurrentCommand), true
	case "current_library":
		return strconv.Itoa(c.CurrentLibrary), true
	case "root_path":
		return c.RootPath, true
	case "target_path":
		return c.TargetPath, true
	case "target_name":
		return c.TargetName, true
	case "dims_resx":
		return strconv.Itoa(c.DimsResX), true
	case "dims_resy":
		return strconv.Itoa(c.DimsResY), true
	}

	if c.Datablock != nil {
		return c.Datablock.ExportAttr(head)
	}
	return "", false
}

func (c *ExportContext) passAttr(name string) (string, bool) {
	p := c.Pass
	switch name {
	case "name":
		return p.Name, true
	case "type":
		return p.Type, true
	case "output":
		return p.Output, true
	case "layer":
		return p.Layer, true
	case "enabled":
		return strconv.FormatBool(p.Enabled), true
	case "multilayer":
		return strconv.FormatBool(p.Multilayer), true
	case "samples_x":
		return strconv.Itoa(p.SamplesX), true
	case "samples_y":
		return strconv.Itoa(p.SamplesY), true
	case "shading_rate":
		return strconv.FormatFloat(p.ShadingRate, 'g', -1, 64), true
	case "frame_start":
		return strconv.Itoa(p.Range.Start), true
	case "frame_end":
		return strconv.Itoa(p.Range.End), true
	case "frame_step":
		return strconv.Itoa(p.Range.Step), true
	}
	return "", false
}
