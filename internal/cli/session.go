package cli

import (
	"path/filepath"

	"github.com/arthur-debert/ribforge/pkg/config"
	"github.com/arthur-debert/ribforge/pkg/exporter"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/project"
)

// session bundles everything a command needs once configuration, pipelines
// and the project file are loaded.
type session struct {
	cfg   *config.Config
	store *pipeline.XMLStore
	proj  *project.Project
	mgr   *exporter.Manager
}

// openSession loads configuration, the project file and the pipelines on
// the search paths. Relative search paths resolve against the project's
// directory so a project can carry its own pipelines next to the .toml.
func openSession(configPath, projectPath string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	proj, err := project.Load(projectPath)
	if err != nil {
		return nil, err
	}

	store := pipeline.NewXMLStore()
	if err := store.LoadDirs(resolveSearchPaths(cfg, proj.Dir())...); err != nil {
		return nil, err
	}

	return &session{
		cfg:   cfg,
		store: store,
		proj:  proj,
		mgr:   exporter.New(store, proj, cfg),
	}, nil
}

func resolveSearchPaths(cfg *config.Config, base string) []string {
	dirs := make([]string, 0, len(cfg.Pipeline.SearchPaths))
	for _, dir := range cfg.Pipeline.SearchPaths {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
