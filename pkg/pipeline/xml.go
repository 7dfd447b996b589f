package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/logging"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// XMLStore serves pipeline definitions parsed from XML documents. One
// document per pipeline: root element <pipeline name=...> with child
// groups shader_sources, command_panels, utility_panels, shader_panels.
// Loading a pipeline with an already-known name replaces the earlier
// document and keeps its listing position.
type XMLStore struct {
	docs  map[string]*etree.Document
	order []string
	log   zerolog.Logger
}

// NewXMLStore returns an empty store
func NewXMLStore() *XMLStore {
	return &XMLStore{
		docs: make(map[string]*etree.Document),
		log:  logging.GetLogger("pipeline"),
	}
}

// LoadDirs parses every *.xml file under the given directories, in
// directory order then filename order. Directories that do not exist
// are skipped: search paths are candidates, not requirements.
func (s *XMLStore) LoadDirs(dirs ...string) error {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				s.log.Debug().Str("dir", dir).Msg("Pipeline search path does not exist, skipping")
				continue
			}
			return errors.Wrap(err, errors.ErrPipelineParse, "failed to scan pipeline directory").
				WithDetail("dir", dir)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
				continue
			}
			if err := s.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadFile parses one pipeline document. The pipeline is named by the
// root element's name attribute, falling back to the filename stem.
func (s *XMLStore) LoadFile(path string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return errors.Wrap(err, errors.ErrPipelineParse, "failed to parse pipeline file").
			WithDetail("file", path)
	}
	root := doc.Root()
	if root == nil {
		return errors.New(errors.ErrPipelineParse, "pipeline file has no root element").
			WithDetail("file", path)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := root.SelectAttrValue("name", stem)
	s.add(name, doc)
	s.log.Debug().Str("pipeline", name).Str("file", path).Msg("Loaded pipeline")
	return nil
}

// LoadString parses a pipeline document from source text. The root
// element must carry a name attribute.
func (s *XMLStore) LoadString(src string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		return errors.Wrap(err, errors.ErrPipelineParse, "failed to parse pipeline document")
	}
	root := doc.Root()
	if root == nil {
		return errors.New(errors.ErrPipelineParse, "pipeline document has no root element")
	}
	name := root.SelectAttrValue("name", "")
	if name == "" {
		return errors.New(errors.ErrPipelineParse, "pipeline root element has no name attribute")
	}
	s.add(name, doc)
	return nil
}

func (s *XMLStore) add(name string, doc *etree.Document) {
	if _, known := s.docs[name]; !known {
		s.order = append(s.order, name)
	}
	s.docs[name] = doc
}

// GetAttribute implements Store
func (s *XMLStore) GetAttribute(ectx *types.ExportContext, path, name string, resolve bool, def string) (string, error) {
	el := s.find(path)
	if el == nil {
		return def, nil
	}
	attr := el.SelectAttr(name)
	if attr == nil {
		return def, nil
	}
	if !resolve {
		return attr.Value, nil
	}
	return links.ResolveFrom(ectx, path+"#"+name, attr.Value)
}

// GetText implements Store
func (s *XMLStore) GetText(ectx *types.ExportContext, path string) (string, error) {
	el := s.find(path)
	if el == nil {
		return "", errors.New(errors.ErrPipelineNotFound, "pipeline element not found").
			WithDetail("path", path)
	}
	return links.ResolveFrom(ectx, path, el.Text())
}

// ListElements implements Store
func (s *XMLStore) ListElements(path string) []string {
	el := s.find(path)
	if el == nil {
		return nil
	}
	var names []string
	for _, child := range el.ChildElements() {
		names = append(names, elementName(child))
	}
	return names
}

// ListPanels implements Store
func (s *XMLStore) ListPanels(kind string, filters ...Filter) []string {
	var paths []string
	for _, pipeline := range s.order {
		group := childElement(s.docs[pipeline].Root(), kind)
		if group == nil {
			continue
		}
		for _, panel := range group.ChildElements() {
			name := panel.SelectAttrValue("name", "")
			if name == "" {
				continue
			}
			if !matches(panel.SelectAttrValue("type", ""), panel.SelectAttrValue("window", ""), filters) {
				continue
			}
			paths = append(paths, pipeline+"/"+kind+"/"+name)
		}
	}
	return paths
}

// ListPipelines implements Store
func (s *XMLStore) ListPipelines() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// PanelEnabled implements Store
func (s *XMLStore) PanelEnabled(ectx *types.ExportContext, path string) bool {
	return enabledAttr(s, ectx, path, s.log)
}

// find walks a slash path to its element, nil when any segment misses
func (s *XMLStore) find(path string) *etree.Element {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	doc, ok := s.docs[segs[0]]
	if !ok {
		return nil
	}
	el := doc.Root()
	for _, seg := range segs[1:] {
		el = childElement(el, seg)
		if el == nil {
			return nil
		}
	}
	return el
}

// childElement matches by name attribute first, then by tag
func childElement(parent *etree.Element, seg string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.SelectAttrValue("name", "") == seg {
			return child
		}
	}
	for _, child := range parent.ChildElements() {
		if child.Tag == seg {
			return child
		}
	}
	return nil
}

func elementName(el *etree.Element) string {
	if name := el.SelectAttrValue("name", ""); name != "" {
		return name
	}
	return el.Tag
}
