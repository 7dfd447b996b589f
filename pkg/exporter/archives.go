package exporter

import (
	"github.com/arthur-debert/ribforge/pkg/archive"
	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/paths"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// SceneWriter supplies the world geometry section of a pass archive.
// It is the boundary to whatever holds the actual scene: callers
// embedding ribforge implement it against their own scene graph.
type SceneWriter interface {
	WriteWorld(a *archive.Archive, ectx *types.ExportContext) error
}

// PlaceholderScene writes a stand-in primitive where geometry will go.
type PlaceholderScene struct{}

// WriteWorld implements SceneWriter.
func (PlaceholderScene) WriteWorld(a *archive.Archive, ectx *types.ExportContext) error {
	return a.WriteText("Disk 0 1 360\n", false)
}

// frameHeader is the fixed scene prologue of every pass archive. The
// PixelSamples and ShadingRate lines drop out when the pass leaves
// them at zero, keeping their blank lines.
const frameHeader = `Format @[EVAL:.dims_resx:]@ @[EVAL:.dims_resy:]@ 1
@[EVAL:"PixelSamples @[EVAL:.pass.samples_x:]@ @[EVAL:.pass.samples_y:]@" if @[EVAL:.pass.samples_x:]@ else "" :]@
@[EVAL:"ShadingRate @[EVAL:.pass.shading_rate:]@" if @[EVAL:.pass.shading_rate:]@ else "":]@
Translate 0 0 1
Sides 2
Rotate @[EVAL:.current_frame:]@ 1 0 0
WorldBegin
Attribute "displacementbound" "float sphere" [ 0.05 ] "string coordinatesystem" [ "shader" ]
LightSource "pointlight" 0 "uniform point from" [ 0 0 -1 ]
`

// ExportArchives generates frame's pass archives and queues their
// RENDER and POSTRENDER commands. Each eligible pass gets a fresh
// context; its command counter runs through the RENDER panels and
// continues into the POSTRENDER panels, which share the RENDER name
// prefix. Interactive sessions force export of the active pass alone.
func (m *Manager) ExportArchives(frame int) error {
	if err := m.requirePrepared("export archives"); err != nil {
		return err
	}

	renderPanels := m.store.ListPanels(pipeline.KindCommandPanels,
		pipeline.Filter{Type: string(types.CategoryRender)})
	postPanels := m.store.ListPanels(pipeline.KindCommandPanels,
		pipeline.Filter{Type: string(types.CategoryPostRender)})

	x, y := m.project.Resolution()
	m.frame = frame
	m.display.Reset(x, y)

	o := m.project.Options
	exportRIB := o.ExportRIB
	onlyActive := o.OnlyActive
	if o.Interactive {
		exportRIB = true
		onlyActive = true
	}

	passes := m.project.ResolvedPasses()
	active := m.project.ActivePass()

	for i := range passes {
		pass := &passes[i]
		if !pass.Enabled || !pass.Range.Contains(frame) {
			continue
		}

		ectx := types.NewContext()
		ectx.Datablock = m.project
		ectx.RootPath = m.tree.Root()
		ectx.Pass = pass
		ectx.CurrentPass = i + 1
		ectx.CurrentFrame = frame
		ectx.DimsResX = x
		ectx.DimsResY = y

		name, err := links.ResolveFrom(ectx, "archive name", passArchivePattern)
		if err != nil {
			return err
		}

		if pass.IsBeauty() {
			output, err := links.ResolveFrom(ectx, "display output", pass.Output)
			if err != nil {
				return err
			}
			m.display.Passes = append(m.display.Passes, types.DisplayPass{
				File:       output,
				Layer:      pass.Layer,
				Multilayer: pass.Multilayer,
			})
		}

		if exportRIB && (!onlyActive || i+1 == active) {
			if err := m.exportPassArchive(ectx, name); err != nil {
				return errors.Wrap(err, errors.ErrExport, "failed to build archive").
					WithDetail("archive", name).
					WithDetail("pass", pass.Name)
			}
			m.log.Info().Str("archive", name).Str("pass", pass.Name).
				Int("frame", frame).Msg("Pass archive written")
		}

		ectx.TargetPath = relDir("Archives")
		ectx.TargetName = name
		if err := m.queueCommands(ectx, renderPanels, types.CategoryRender, renderNamePattern, false); err != nil {
			return err
		}
		ectx.TargetPath = ""
		ectx.TargetName = ""
		if err := m.queueCommands(ectx, postPanels, types.CategoryPostRender, renderNamePattern, false); err != nil {
			return err
		}
	}
	return nil
}

// exportPassArchive writes one pass's scene description into the
// Archives bucket, gzip-compressed when the project asks for it.
func (m *Manager) exportPassArchive(ectx *types.ExportContext, name string) (err error) {
	dir, _ := m.tree.Bucket(paths.KeyFrames)
	a := archive.New(nil, ectx, m.store, dir, name)
	if err := a.Open(archive.OpenOptions{Mode: "w", Gzip: m.project.Options.Compress}); err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	sceneUtils, err := m.collectPanels(a, pipeline.KindUtilityPanels, "SCENE")
	if err != nil {
		return err
	}
	renderUtils, err := m.collectPanels(a, pipeline.KindUtilityPanels, "RENDER")
	if err != nil {
		return err
	}
	worldUtils, err := m.collectPanels(a, pipeline.KindUtilityPanels, "WORLD")
	if err != nil {
		return err
	}
	worldShaders, err := m.collectPanels(a, pipeline.KindShaderPanels, "WORLD")
	if err != nil {
		return err
	}

	if err := writeSections(sceneUtils, "begin"); err != nil {
		return err
	}
	if err := a.WriteText("FrameBegin 1\n", false); err != nil {
		return err
	}
	if err := writeSections(renderUtils, "begin"); err != nil {
		return err
	}
	header, err := links.ResolveFrom(ectx, "frame header", frameHeader)
	if err != nil {
		return err
	}
	if err := a.WriteText(header, false); err != nil {
		return err
	}
	if err := writeSections(worldUtils, "begin"); err != nil {
		return err
	}
	if err := writeSections(worldShaders, "rib"); err != nil {
		return err
	}
	if err := m.scene.WriteWorld(a, ectx); err != nil {
		return err
	}
	if err := writeSections(worldUtils, "end"); err != nil {
		return err
	}
	if err := a.WriteText("WorldEnd\n", false); err != nil {
		return err
	}
	if err := writeSections(renderUtils, "end"); err != nil {
		return err
	}
	if err := a.WriteText("FrameEnd\n", false); err != nil {
		return err
	}
	return writeSections(sceneUtils, "end")
}

// panelWriter writes one enabled panel's template sections through a
// composed archive sharing the pass archive's handle.
type panelWriter struct {
	a    *archive.Archive
	path string
}

// section writes the named template block. Panels without the block
// are skipped by the archive layer.
func (p panelWriter) section(name string) error {
	return p.a.WriteTemplate(p.path+"/"+name, false)
}

// collectPanels opens a composed writer for every enabled panel of
// kind serving window, each under a context bound to its own panel
// coordinates. Panel regexes register against the shared root.
func (m *Manager) collectPanels(root *archive.Archive, kind, window string) ([]panelWriter, error) {
	var writers []panelWriter
	for _, panelPath := range m.store.ListPanels(kind, pipeline.Filter{Window: window}) {
		pctx := bindPanel(root.Context(), panelPath)
		pctx.ContextWindow = window
		if !m.store.PanelEnabled(pctx, panelPath) {
			continue
		}
		sub := archive.New(root, pctx, m.store, "", "")
		if err := sub.AddRegexes(panelPath + "/regexes"); err != nil {
			return nil, err
		}
		writers = append(writers, panelWriter{a: sub, path: panelPath})
	}
	return writers, nil
}

func writeSections(writers []panelWriter, section string) error {
	for _, w := range writers {
		if err := w.section(section); err != nil {
			return err
		}
	}
	return nil
}
