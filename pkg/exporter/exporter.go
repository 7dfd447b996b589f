// Package exporter drives a full export cycle: provisioning the
// export tree, writing shader sources and pass archives, queueing the
// command scripts the pipelines define, and finally executing them in
// category order.
//
// A Manager is built once per project session and reused across
// frames. Prepare establishes the export tree and must succeed before
// any other operation; ExportShaders and ExportTextures run once per
// session, ExportArchives and ExecuteCommands once per frame.
package exporter

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/ribforge/pkg/command"
	"github.com/arthur-debert/ribforge/pkg/config"
	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/logging"
	"github.com/arthur-debert/ribforge/pkg/paths"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/project"
	"github.com/arthur-debert/ribforge/pkg/provision"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// TextEditorPipeline is the virtual pipeline serving the project's
// inline shader sources. It has no XML definition; ExportShaders
// special-cases it.
const TextEditorPipeline = "Text_Editor"

// Command and archive names carry their coordinates, zero-padded so
// directory listings sort in creation order.
const (
	compileNamePattern  = "COMPILE_S@[EVAL:.current_library:#####]@_C@[EVAL:.current_command:#####]@"
	infoNamePattern     = "INFO_S@[EVAL:.current_library:#####]@_C@[EVAL:.current_command:#####]@"
	optimizeNamePattern = "OPTIMIZE_T@[EVAL:.current_library:#####]@_C@[EVAL:.current_command:#####]@"
	renderNamePattern   = "RENDER_P@[EVAL:.current_pass:#####]@_F@[EVAL:.current_frame:#####]@_C@[EVAL:.current_command:#####]@"
	passArchivePattern  = "P@[EVAL:.current_pass:#####]@_F@[EVAL:.current_frame:#####]@.rib"
)

// Manager orchestrates the export cycle for one project against one
// set of loaded pipelines. It is not safe for concurrent use.
type Manager struct {
	store   pipeline.Store
	project *project.Project
	cfg     *config.Config
	log     zerolog.Logger

	scene SceneWriter

	tree     paths.Tree
	prepared bool
	frame    int
	display  types.DisplayOutput
	buckets  map[types.Category][]*command.Command
}

// New returns a Manager for the given project and pipeline store.
// The default SceneWriter emits placeholder geometry.
func New(store pipeline.Store, proj *project.Project, cfg *config.Config) *Manager {
	return &Manager{
		store:   store,
		project: proj,
		cfg:     cfg,
		log:     logging.GetLogger("exporter"),
		scene:   PlaceholderScene{},
		buckets: make(map[types.Category][]*command.Command),
	}
}

// SetSceneWriter replaces the geometry collaborator. A nil writer is
// ignored.
func (m *Manager) SetSceneWriter(w SceneWriter) {
	if w != nil {
		m.scene = w
	}
}

// Tree returns the provisioned export tree. Only meaningful after
// Prepare.
func (m *Manager) Tree() paths.Tree {
	return m.tree
}

// Frame returns the frame of the most recent ExportArchives call.
func (m *Manager) Frame() int {
	return m.frame
}

// Display returns the display metadata collected by the most recent
// ExportArchives call.
func (m *Manager) Display() types.DisplayOutput {
	return m.display
}

// Queued returns the names of the commands waiting in a category
// bucket, in creation order.
func (m *Manager) Queued(category types.Category) []string {
	cmds := m.buckets[category]
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name())
	}
	return names
}

// PrepareOptions selects which export-tree buckets Prepare cleans
// (direct files removed) and purges (recursively emptied). Nil slices
// fall back to the configured defaults; empty non-nil slices disable
// the step.
type PrepareOptions struct {
	Clean []string
	Purge []string
}

// Prepare resolves the project's export directory, provisions the
// bucket tree and resets per-session state. It must succeed before any
// other Manager operation. A project with unsaved changes is refused:
// generated output must be reproducible from the file on disk.
func (m *Manager) Prepare(ctx context.Context, opts PrepareOptions) error {
	if m.project.Dirty() {
		return errors.New(errors.ErrDirtyState, "project has unsaved changes, save before exporting")
	}

	ectx := types.NewContext()
	ectx.Datablock = m.project
	root, err := links.ResolveFrom(ectx, "export directory", m.project.ExportPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrDirectory, "could not resolve export directory")
	}
	if root == "" {
		return errors.New(errors.ErrDirectory, "project export_path is empty")
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(m.project.Dir(), root)
	}
	m.tree = paths.NewTree(root)

	clean := opts.Clean
	if clean == nil {
		clean = m.cfg.Export.Clean
	}
	purge := opts.Purge
	if purge == nil {
		purge = m.cfg.Export.Purge
	}

	o := m.project.Options
	if o.Interactive {
		clean, purge = nil, nil
	} else {
		if o.PurgeRIB && !o.OnlyActive {
			clean = appendMissing(clean, paths.KeyFrames, paths.KeyWorlds, paths.KeyLights,
				paths.KeyObjects, paths.KeyGeometry, paths.KeyMaterials)
		}
		if o.PurgeShaders {
			purge = appendMissing(purge, paths.KeyShaders)
		}
		if o.PurgeTextures {
			purge = appendMissing(purge, paths.KeyTextures)
		}
	}

	ops, err := provision.Plan(m.tree, clean, purge)
	if err != nil {
		return errors.Wrap(err, errors.ErrDirectory, "could not prepare export directory").
			WithDetail("root", root)
	}
	if err := provision.Apply(ctx, ops); err != nil {
		return errors.Wrap(err, errors.ErrDirectory, "could not prepare export directory").
			WithDetail("root", root)
	}

	m.frame = 0
	m.display.Reset(0, 0)
	m.closeCommands()

	m.prepared = true
	m.log.Info().Str("root", root).Strs("clean", clean).Strs("purge", purge).
		Msg("Export directory prepared")
	return nil
}

// CloseCommands force-closes every queued command, terminating any
// whose process still runs. Interactive sessions call this when done
// polling; Prepare calls it to clear leftovers from a previous run.
func (m *Manager) CloseCommands() {
	m.closeCommands()
}

func (m *Manager) closeCommands() {
	for category, cmds := range m.buckets {
		for _, c := range cmds {
			_ = c.Close()
		}
		m.buckets[category] = nil
	}
}

func (m *Manager) requirePrepared(operation string) error {
	if !m.prepared {
		return errors.New(errors.ErrInvalidInput, "export directory is not prepared").
			WithDetail("operation", operation)
	}
	return nil
}

// baseContext returns a scene-level context: project bound as the
// datablock, export root recorded, active pass in scope.
func (m *Manager) baseContext() *types.ExportContext {
	ectx := types.NewContext()
	ectx.Datablock = m.project
	ectx.RootPath = m.tree.Root()
	passes := m.project.ResolvedPasses()
	ectx.Pass = &passes[m.project.ActivePass()-1]
	return ectx
}

func (m *Manager) commandOptions(delay bool) command.Options {
	return command.Options{
		DelayBuild:   delay,
		Shell:        m.cfg.Export.Shell,
		PollInterval: m.cfg.Export.PollInterval(),
		TargetGzip:   m.cfg.Export.TargetGzip,
	}
}

// queueCommands creates one command per enabled panel and appends it
// to the category bucket. Each command snapshots a derived context
// bound to its panel coordinates; the counter on the shared context
// advances only for panels that are actually enabled, so numbering
// stays dense. Delayed commands are built later, when they first
// start.
func (m *Manager) queueCommands(ectx *types.ExportContext, panels []string, category types.Category, namePattern string, delay bool) error {
	for _, panelPath := range panels {
		pctx := bindPanel(ectx, panelPath)
		if !m.store.PanelEnabled(pctx, panelPath) {
			continue
		}
		ectx.CurrentCommand++
		pctx.CurrentCommand = ectx.CurrentCommand

		name, err := links.ResolveFrom(pctx, "command name", namePattern)
		if err != nil {
			return err
		}
		cmd, err := command.New(pctx, m.store, panelPath, m.tree.Root(), name, m.commandOptions(delay))
		if err != nil {
			return errors.Wrap(err, errors.ErrExport, "failed to create command").
				WithDetail("command", name).
				WithDetail("panel", panelPath)
		}
		if !delay {
			if err := cmd.Build(); err != nil {
				_ = cmd.Close()
				return errors.Wrap(err, errors.ErrExport, "failed to build command").
					WithDetail("command", name)
			}
		}
		m.buckets[category] = append(m.buckets[category], cmd)
		m.log.Debug().Str("command", cmd.Name()).Str("panel", panelPath).
			Str("category", string(category)).Msg("Command queued")
	}
	return nil
}

// bindPanel derives a context carrying the panel's pipeline
// coordinates, so panel templates can refer to their own location.
func bindPanel(ectx *types.ExportContext, panelPath string) *types.ExportContext {
	pctx := ectx.Derive()
	if segs := strings.SplitN(panelPath, "/", 3); len(segs) == 3 {
		pctx.ContextPipeline = segs[0]
		pctx.ContextCategory = segs[1]
		pctx.ContextPanel = segs[2]
	}
	return pctx
}

// relDir builds the slash-form relative directory commands and
// archives embed in generated scripts. Script-facing paths stay
// relative to the export root so the output tree can be relocated.
func relDir(parts ...string) string {
	return "./" + path.Join(parts...) + "/"
}

func appendMissing(keys []string, add ...string) []string {
	out := append([]string(nil), keys...)
	for _, key := range add {
		found := false
		for _, k := range out {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			out = append(out, key)
		}
	}
	return out
}
