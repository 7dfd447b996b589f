package exporter

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/ribforge/pkg/archive"
	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/paths"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// ExecuteCommands drains the command buckets in category order,
// running each gated category sequentially, and appends every command
// except INFO to the launcher script at the export root. Skipped
// commands still reach the launcher so the whole batch can be replayed
// later from a console; a fresh Prepare truncates it again through the
// DIR clean policy.
//
// Interactive sessions start render processes without waiting and keep
// the buckets, leaving the caller to poll and CloseCommands when done.
// Execution failures surface, but the launcher is closed regardless.
func (m *Manager) ExecuteCommands(ctx context.Context) error {
	if err := m.requirePrepared("execute commands"); err != nil {
		return err
	}

	o := m.project.Options
	render := o.Render || o.Interactive

	ectx := m.baseContext()
	launcher := archive.New(nil, ectx, m.store, m.tree.Root(), m.cfg.Export.Launcher)
	if err := launcher.Open(archive.OpenOptions{Mode: "a", Exec: true}); err != nil {
		return err
	}

	err := m.drainBuckets(ctx, launcher, render)
	if cerr := launcher.Close(); err == nil {
		err = cerr
	}
	return err
}

func (m *Manager) drainBuckets(ctx context.Context, launcher *archive.Archive, render bool) error {
	o := m.project.Options
	for _, category := range types.Categories() {
		gate := false
		switch category {
		case types.CategoryRender, types.CategoryPostRender:
			gate = render
		case types.CategoryCompile, types.CategoryInfo:
			gate = o.CompileShaders
		case types.CategoryOptimize:
			gate = o.OptimizeTextures
		}

		for _, cmd := range m.buckets[category] {
			if gate {
				if o.Interactive {
					if err := cmd.Start(); err != nil {
						return err
					}
				} else if err := cmd.Execute(ctx); err != nil {
					return err
				}
			}
			if category != types.CategoryInfo {
				if err := launcher.WriteText("./"+cmd.Name()+"\n", false); err != nil {
					return err
				}
			}
		}

		if !o.Interactive {
			for _, cmd := range m.buckets[category] {
				_ = cmd.Close()
			}
			m.buckets[category] = nil
		}
	}
	return nil
}

// WriteDisplayManifest serializes the display metadata collected by
// the last ExportArchives call to Renders/display.yaml, where
// compositing tools pick up the frame's beauty outputs.
func (m *Manager) WriteDisplayManifest() error {
	if err := m.requirePrepared("write display manifest"); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.display)
	if err != nil {
		return errors.Wrap(err, errors.ErrExport, "could not serialize display manifest")
	}
	dir, _ := m.tree.Bucket(paths.KeyRenders)
	manifest := filepath.Join(dir, "display.yaml")
	if err := os.WriteFile(manifest, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrExport, "could not write display manifest").
			WithDetail("path", manifest)
	}
	m.log.Debug().Str("path", manifest).Int("passes", len(m.display.Passes)).
		Msg("Display manifest written")
	return nil
}
