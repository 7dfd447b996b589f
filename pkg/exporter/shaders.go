package exporter

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// ExportShaders writes shader sources for every eligible pipeline and
// queues their COMPILE and INFO commands. A non-empty lib restricts
// the run to that one pipeline and treats its "library" attribute as
// an external source directory instead of exporting sources.
// Interactive sessions skip shader processing entirely.
//
// One shared context spans the whole run: the library counter climbs
// across pipelines while the command counter restarts per library and
// again between the COMPILE and INFO panel loops.
func (m *Manager) ExportShaders(lib string) error {
	if err := m.requirePrepared("export shaders"); err != nil {
		return err
	}
	if m.project.Options.Interactive {
		m.log.Debug().Msg("Interactive session, skipping shader export")
		return nil
	}

	compilePanels := m.store.ListPanels(pipeline.KindCommandPanels,
		pipeline.Filter{Type: string(types.CategoryCompile)})
	infoPanels := m.store.ListPanels(pipeline.KindCommandPanels,
		pipeline.Filter{Type: string(types.CategoryInfo)})

	ectx := m.baseContext()
	ectx.ContextWindow = "SCENE"

	var pipelines []string
	if lib != "" {
		pipelines = []string{lib}
	} else {
		pipelines = append(m.store.ListPipelines(), TextEditorPipeline)
	}

	for _, p := range pipelines {
		// library holds the external source directory; empty means
		// the pipeline's sources are exported under the tree instead.
		library := ""
		switch {
		case p == TextEditorPipeline:
		case p == lib:
			attr, err := m.store.GetAttribute(ectx, p, "library", false, "")
			if err != nil {
				return err
			}
			if attr == "" {
				m.log.Warn().Str("pipeline", p).
					Msg("Shader library pipeline has no library attribute, skipping")
				continue
			}
			library = attr
		default:
			enabled, err := m.store.GetAttribute(ectx, p, "enabled", false, "True")
			if err != nil {
				return err
			}
			if !links.Truthy(enabled) {
				m.log.Debug().Str("pipeline", p).Msg("Pipeline disabled, skipping shaders")
				continue
			}
		}

		var compile, info, hasSources bool
		if library == "" {
			compile = true
			info = m.project.Options.CompileShaders
			n, err := m.writeShaderSources(ectx, p)
			if err != nil {
				return err
			}
			hasSources = n > 0
			ectx.TargetPath = relDir("Shaders", p)
			ectx.TargetName = ""
		} else {
			abs, err := filepath.Abs(library)
			if err != nil {
				return errors.Wrap(err, errors.ErrDirectory, "bad shader library path").
					WithDetail("pipeline", p).WithDetail("library", library)
			}
			compileAttr, err := m.store.GetAttribute(ectx, p, "compile", false, "False")
			if err != nil {
				return err
			}
			compile = links.Truthy(compileAttr)
			if m.project.Options.CompileShaders {
				buildAttr, err := m.store.GetAttribute(ectx, p, "build", false, "False")
				if err != nil {
					return err
				}
				info = links.Truthy(buildAttr)
			}
			hasSources = true
			ectx.TargetPath = abs + string(os.PathSeparator)
			ectx.TargetName = ""
		}

		if !hasSources {
			continue
		}

		ectx.CurrentLibrary++
		ectx.CurrentCommand = 0
		if compile {
			if err := m.queueCommands(ectx, compilePanels, types.CategoryCompile, compileNamePattern, false); err != nil {
				return err
			}
		}
		ectx.CurrentCommand = 0
		if info {
			if err := m.queueCommands(ectx, infoPanels, types.CategoryInfo, infoNamePattern, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeShaderSources writes pipeline p's shader sources under
// Shaders/<p>/ and reports how many there were. The virtual pipeline
// draws from the project's inline shaders, keeping only .sl and .h
// names; XML pipelines list <shader_sources> children whose filepath
// attribute names the file and whose text is the source, resolved
// through links. A directory left empty is removed again.
func (m *Manager) writeShaderSources(ectx *types.ExportContext, p string) (int, error) {
	dir := m.tree.ShaderDir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(err, errors.ErrDirectory, "could not create shader directory").
			WithDetail("dir", dir)
	}

	count := 0
	if p == TextEditorPipeline {
		for _, shader := range m.project.Shaders {
			name := filepath.Base(shader.Name)
			switch filepath.Ext(name) {
			case ".sl", ".h":
			default:
				m.log.Debug().Str("shader", shader.Name).Msg("Skipping non-source text block")
				continue
			}
			if err := os.WriteFile(filepath.Join(dir, name), []byte(shader.Code), 0o644); err != nil {
				return 0, errors.Wrap(err, errors.ErrExport, "could not write shader source").
					WithDetail("shader", name)
			}
			count++
		}
	} else {
		base := p + "/" + pipeline.ShaderSources
		for _, element := range m.store.ListElements(base) {
			srcPath := base + "/" + element
			raw, err := m.store.GetAttribute(ectx, srcPath, "filepath", false, "")
			if err != nil {
				return 0, err
			}
			if raw == "" {
				return 0, errors.New(errors.ErrAttribute, "shader source must specify a filepath").
					WithDetail("element", srcPath)
			}
			name := filepath.Base(raw)
			source, err := m.store.GetText(ectx, srcPath)
			if err != nil {
				return 0, err
			}
			if err := os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644); err != nil {
				return 0, errors.Wrap(err, errors.ErrExport, "could not write shader source").
					WithDetail("shader", name)
			}
			count++
		}
	}

	if count == 0 {
		if err := os.Remove(dir); err != nil {
			m.log.Debug().Err(err).Str("dir", dir).Msg("Could not remove empty shader directory")
		}
		return 0, nil
	}
	m.log.Info().Str("pipeline", p).Int("sources", count).Msg("Shader sources written")
	return count, nil
}

// ExportTextures queues one OPTIMIZE command set per project texture
// source. Texture paths resolve against the project file's directory;
// the commands see them through the target binding. Gated on the
// optimize_textures option, skipped in interactive sessions.
func (m *Manager) ExportTextures() error {
	if err := m.requirePrepared("export textures"); err != nil {
		return err
	}
	o := m.project.Options
	if !o.OptimizeTextures || o.Interactive {
		return nil
	}

	panels := m.store.ListPanels(pipeline.KindCommandPanels,
		pipeline.Filter{Type: string(types.CategoryOptimize)})

	ectx := m.baseContext()
	ectx.ContextWindow = "SCENE"

	for _, tex := range m.project.Textures {
		if tex.Name == "" {
			continue
		}
		src := tex.Name
		if !filepath.IsAbs(src) {
			src = filepath.Join(m.project.Dir(), src)
		}
		ectx.TargetPath, ectx.TargetName = filepath.Split(src)
		ectx.CurrentLibrary++
		ectx.CurrentCommand = 0
		if err := m.queueCommands(ectx, panels, types.CategoryOptimize, optimizeNamePattern, false); err != nil {
			return err
		}
	}
	return nil
}
