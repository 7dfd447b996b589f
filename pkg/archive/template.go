package archive

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/ribforge/pkg/errors"
)

// Target is one (directory, file) binding a template writes under
type Target struct {
	Dir  string
	File string
}

// Targets expands a resolved target attribute into concrete bindings.
// An empty target keeps the archive's current binding. A plain
// "dir/file" is one explicit binding; a bare file name takes its
// directory from the context's TargetPath. Relative directories
// resolve against the archive's own directory, so generated scripts
// can carry relocatable paths. A trailing wildcard ("dir/*.ext")
// binds every matching file in dir, in name order; matching nothing is
// a valid empty expansion, but an unreadable directory is an error.
func (a *Archive) Targets(target string) ([]Target, error) {
	if target == "" {
		return []Target{{}}, nil
	}

	dir, file := filepath.Split(target)
	if dir == "" {
		dir = a.ectx.TargetPath
	}
	if dir != "" {
		dir = filepath.Clean(dir)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(a.dir, dir)
		}
	}

	if !strings.Contains(file, "*") {
		return []Target{{Dir: dir, File: file}}, nil
	}

	if dir == "" {
		return []Target{{}}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTargetScan, "failed to scan target directory").
			WithDetail("dir", dir).
			WithDetail("pattern", file)
	}

	var targets []Target
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(file, entry.Name())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTargetScan, "bad target pattern").
				WithDetail("pattern", file)
		}
		if ok {
			targets = append(targets, Target{Dir: dir, File: entry.Name()})
		}
	}
	return targets, nil
}

// WriteTemplate writes the template element's resolved text once per
// expanded target binding. Each non-empty binding resolves the text
// under a derived context with TargetPath/TargetName bound to it. A
// template path with no element behind it writes nothing; a wildcard
// target matching no files writes nothing.
func (a *Archive) WriteTemplate(templatePath string, closeAfter bool) error {
	err := a.writeTemplate(templatePath)
	if closeAfter {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (a *Archive) writeTemplate(templatePath string) error {
	target, err := a.store.GetAttribute(a.ectx, templatePath, "target", true, "")
	if err != nil {
		return err
	}
	targets, err := a.Targets(target)
	if err != nil {
		return err
	}

	for _, t := range targets {
		ectx := a.ectx
		if t.Dir != "" || t.File != "" {
			ectx = a.ectx.Derive()
			if t.Dir != "" {
				ectx.TargetPath = t.Dir
			}
			if t.File != "" {
				ectx.TargetName = t.File
			}
		}
		text, err := a.store.GetText(ectx, templatePath)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrPipelineNotFound) {
				continue
			}
			return err
		}
		if err := a.WriteText(text, false); err != nil {
			return err
		}
	}
	return nil
}
