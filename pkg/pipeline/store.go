// Package pipeline defines the pipeline-definition provider boundary.
// Pipelines are externally authored documents supplying the template
// text, attributes, and regex rules the export engine consumes. The
// engine only ever reads: it never mutates a pipeline definition.
//
// Elements are addressed by slash-joined paths rooted at the pipeline
// name ("aqsis/command_panels/render/begin"). A path segment matches a
// child by its "name" attribute first, then by its tag, so panel groups
// ("command_panels") and text blocks ("begin") address by tag while
// panels and regex rules address by name.
package pipeline

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// Panel group kinds.
const (
	KindCommandPanels = "command_panels"
	KindUtilityPanels = "utility_panels"
	KindShaderPanels  = "shader_panels"
)

// ShaderSources is the element grouping a pipeline's shader source files.
const ShaderSources = "shader_sources"

// Filter narrows ListPanels results. Zero-valued fields match anything.
type Filter struct {
	// Type matches the panel's "type" attribute (a command category
	// for command panels)
	Type string

	// Window matches one entry of the panel's space-separated "window"
	// attribute (SCENE, RENDER, WORLD)
	Window string
}

// Store is the read-only pipeline-definition provider.
type Store interface {
	// GetAttribute returns the named attribute of the element at path.
	// A missing element or attribute yields def. With resolve set the
	// value is run through link resolution with the element path as
	// origin; resolution failures are returned as errors.
	GetAttribute(ectx *types.ExportContext, path, name string, resolve bool, def string) (string, error)

	// GetText returns the element's text content resolved through
	// links. An unknown path is an error: templates that are written
	// must exist.
	GetText(ectx *types.ExportContext, path string) (string, error)

	// ListElements returns the addressable names of path's child
	// elements in document order. Unknown paths yield nil.
	ListElements(path string) []string

	// ListPanels returns "pipeline/kind/panel" paths for every panel
	// of the given group kind across all pipelines, in pipeline load
	// order, narrowed by the filters (all must match).
	ListPanels(kind string, filters ...Filter) []string

	// ListPipelines returns pipeline names in load order.
	ListPipelines() []string

	// PanelEnabled reports whether the panel at path is enabled: its
	// "enabled" attribute is link-resolved and truthiness-tested,
	// defaulting to enabled. A panel whose attribute fails to resolve
	// is treated as disabled.
	PanelEnabled(ectx *types.ExportContext, path string) bool
}

// enabledAttr is the shared panel-enabled policy: the enabled attribute
// is link-resolved and truthiness-tested, defaulting to enabled.
func enabledAttr(s Store, ectx *types.ExportContext, path string, log zerolog.Logger) bool {
	value, err := s.GetAttribute(ectx, path, "enabled", true, "True")
	if err != nil {
		log.Warn().Err(err).Str("panel", path).Msg("Panel enabled attribute failed to resolve, treating as disabled")
		return false
	}
	return links.Truthy(value)
}

// matches reports whether a panel's type and window attributes satisfy
// every filter. The window attribute may hold several space-separated
// window names.
func matches(panelType, panelWindow string, filters []Filter) bool {
	for _, f := range filters {
		if f.Type != "" && f.Type != panelType {
			return false
		}
		if f.Window != "" && !containsWord(panelWindow, f.Window) {
			return false
		}
	}
	return true
}

func containsWord(list, word string) bool {
	for _, w := range splitWords(list) {
		if w == word {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}
