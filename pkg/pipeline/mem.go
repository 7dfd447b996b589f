package pipeline

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/logging"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// MemElement is one node of an in-memory pipeline definition. Name is
// the addressable path segment: a panel's name, or the tag for groups
// and text blocks.
type MemElement struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*MemElement
}

// Elem builds an element with children
func Elem(name string, attrs map[string]string, children ...*MemElement) *MemElement {
	return &MemElement{Name: name, Attrs: attrs, Children: children}
}

// TextElem builds a leaf text block
func TextElem(name, text string) *MemElement {
	return &MemElement{Name: name, Text: text}
}

// MemStore is an in-memory Store. It backs tests and programmatically
// assembled pipelines; the served structure mirrors XMLStore exactly.
type MemStore struct {
	pipelines []*MemElement
	log       zerolog.Logger
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{log: logging.GetLogger("pipeline")}
}

// Add registers a pipeline root element. Re-adding a name replaces the
// earlier definition and keeps its listing position.
func (s *MemStore) Add(root *MemElement) {
	for i, existing := range s.pipelines {
		if existing.Name == root.Name {
			s.pipelines[i] = root
			return
		}
	}
	s.pipelines = append(s.pipelines, root)
}

// GetAttribute implements Store
func (s *MemStore) GetAttribute(ectx *types.ExportContext, path, name string, resolve bool, def string) (string, error) {
	el := s.find(path)
	if el == nil {
		return def, nil
	}
	value, ok := el.Attrs[name]
	if !ok {
		return def, nil
	}
	if !resolve {
		return value, nil
	}
	return links.ResolveFrom(ectx, path+"#"+name, value)
}

// GetText implements Store
func (s *MemStore) GetText(ectx *types.ExportContext, path string) (string, error) {
	el := s.find(path)
	if el == nil {
		return "", errors.New(errors.ErrPipelineNotFound, "pipeline element not found").
			WithDetail("path", path)
	}
	return links.ResolveFrom(ectx, path, el.Text)
}

// ListElements implements Store
func (s *MemStore) ListElements(path string) []string {
	el := s.find(path)
	if el == nil {
		return nil
	}
	var names []string
	for _, child := range el.Children {
		names = append(names, child.Name)
	}
	return names
}

// ListPanels implements Store
func (s *MemStore) ListPanels(kind string, filters ...Filter) []string {
	var paths []string
	for _, pipeline := range s.pipelines {
		group := pipeline.child(kind)
		if group == nil {
			continue
		}
		for _, panel := range group.Children {
			if !matches(panel.Attrs["type"], panel.Attrs["window"], filters) {
				continue
			}
			paths = append(paths, pipeline.Name+"/"+kind+"/"+panel.Name)
		}
	}
	return paths
}

// ListPipelines implements Store
func (s *MemStore) ListPipelines() []string {
	names := make([]string, len(s.pipelines))
	for i, p := range s.pipelines {
		names[i] = p.Name
	}
	return names
}

// PanelEnabled implements Store
func (s *MemStore) PanelEnabled(ectx *types.ExportContext, path string) bool {
	return enabledAttr(s, ectx, path, s.log)
}

func (s *MemStore) find(path string) *MemElement {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	var el *MemElement
	for _, p := range s.pipelines {
		if p.Name == segs[0] {
			el = p
			break
		}
	}
	for _, seg := range segs[1:] {
		if el == nil {
			return nil
		}
		el = el.child(seg)
	}
	return el
}

func (e *MemElement) child(name string) *MemElement {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
