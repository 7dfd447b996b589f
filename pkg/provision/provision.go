// Package provision prepares the export tree on disk. Planning scans
// the tree read-only and emits an ordered operation list; applying
// runs the list through a synthfs pipeline, with directory subtrees
// removed directly since synthfs deletes single entries.
package provision

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/logging"
	"github.com/arthur-debert/ribforge/pkg/paths"
)

// OpKind names a provisioning operation
type OpKind string

const (
	// OpCreateDir creates one directory (parents planned separately)
	OpCreateDir OpKind = "create-dir"

	// OpDeleteFile removes one file
	OpDeleteFile OpKind = "delete-file"

	// OpDeleteTree removes a directory and everything under it
	OpDeleteTree OpKind = "delete-tree"
)

// Op is one step of a provisioning plan
type Op struct {
	Kind OpKind
	Path string
}

// Plan computes the operations that bring tree to a ready state.
// Missing bucket directories (and missing ancestors of the root) are
// created. Existing buckets named by clean lose their direct files;
// buckets named by purge additionally lose their subdirectories.
// Buckets nested inside a purged bucket are recreated afterwards.
// clean and purge hold bucket keys; an unknown key is an error.
func Plan(tree paths.Tree, clean, purge []string) ([]Op, error) {
	cleanSet, err := keySet(clean)
	if err != nil {
		return nil, err
	}
	purgeSet, err := keySet(purge)
	if err != nil {
		return nil, err
	}

	ops := ancestorOps(tree.Root())

	// Directories whose subtrees the plan removes; buckets under one
	// of these no longer exist by the time their turn comes.
	var wiped []string

	for _, key := range paths.Keys() {
		dir, _ := tree.Bucket(key)
		if !dirExists(dir) || underAny(dir, wiped) {
			ops = append(ops, Op{Kind: OpCreateDir, Path: dir})
			continue
		}

		doClean := cleanSet[key]
		doPurge := purgeSet[key]
		if !doClean && !doPurge {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrProvision, "failed to scan bucket directory").
				WithDetail("dir", dir)
		}
		for _, entry := range entries {
			p := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if doPurge {
					ops = append(ops, Op{Kind: OpDeleteTree, Path: p})
				}
			} else {
				ops = append(ops, Op{Kind: OpDeleteFile, Path: p})
			}
		}
		if doPurge {
			wiped = append(wiped, dir)
		}
	}
	return ops, nil
}

// Apply executes a plan in order. Creates and file deletes are
// batched into synthfs pipelines; a tree delete flushes the batch
// first so everything before it has hit the disk.
func Apply(ctx context.Context, ops []Op) error {
	log := logging.GetLogger("provision")
	if len(ops) == 0 {
		log.Debug().Msg("Export tree already provisioned")
		return nil
	}

	osFS := filesystem.NewOSFileSystem("/")
	var batch []synthfs.Operation

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		pipeline := synthfs.NewMemPipeline()
		for _, op := range batch {
			if err := pipeline.Add(op); err != nil {
				return errors.Wrap(err, errors.ErrProvision, "failed to assemble provisioning pipeline")
			}
		}
		log.Debug().Int("operations", len(batch)).Msg("Running provisioning pipeline")
		result := synthfs.NewExecutor().Run(ctx, pipeline, osFS)
		if result.GetError() != nil {
			return errors.Wrap(result.GetError(), errors.ErrProvision, "provisioning pipeline failed")
		}
		batch = batch[:0]
		return nil
	}

	for _, op := range ops {
		switch op.Kind {
		case OpCreateDir:
			sop, err := createDirOp(op.Path)
			if err != nil {
				return err
			}
			batch = append(batch, sop)
		case OpDeleteFile:
			sop, err := deleteFileOp(op.Path)
			if err != nil {
				return err
			}
			batch = append(batch, sop)
		case OpDeleteTree:
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, errors.ErrProvision, "provisioning canceled")
			}
			log.Debug().Str("dir", op.Path).Msg("Removing directory tree")
			if err := os.RemoveAll(op.Path); err != nil {
				return errors.Wrap(err, errors.ErrProvision, "failed to remove directory tree").
					WithDetail("dir", op.Path)
			}
		default:
			return errors.Newf(errors.ErrProvision, "unknown provisioning operation: %s", op.Kind)
		}
	}
	return flush()
}

func createDirOp(path string) (synthfs.Operation, error) {
	rel, err := filepath.Rel("/", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProvision, "failed to convert path").
			WithDetail("path", path)
	}
	op := operations.NewCreateDirectoryOperation(core.OperationID("create-dir-"+path), rel)
	op.SetItem(&directoryItem{path: rel, mode: 0o755})
	return synthfs.NewOperationsPackageAdapter(op), nil
}

func deleteFileOp(path string) (synthfs.Operation, error) {
	rel, err := filepath.Rel("/", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProvision, "failed to convert path").
			WithDetail("path", path)
	}
	op := operations.NewDeleteOperation(core.OperationID("delete-"+path), rel)
	return synthfs.NewOperationsPackageAdapter(op), nil
}

func keySet(keys []string) (map[string]bool, error) {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !paths.ValidKey(key) {
			return nil, errors.Newf(errors.ErrProvision, "unknown bucket key: %s", key)
		}
		set[key] = true
	}
	return set, nil
}

// ancestorOps creates the missing directories above the export root,
// outermost first.
func ancestorOps(root string) []Op {
	var missing []string
	for dir := filepath.Dir(root); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if dirExists(dir) {
			break
		}
		missing = append(missing, dir)
	}
	ops := make([]Op, 0, len(missing))
	for i := len(missing) - 1; i >= 0; i-- {
		ops = append(ops, Op{Kind: OpCreateDir, Path: missing[i]})
	}
	return ops
}

func dirExists(dir string) bool {
	_, err := os.Stat(dir)
	return err == nil
}

func underAny(dir string, roots []string) bool {
	for _, root := range roots {
		if strings.HasPrefix(dir, root+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// directoryItem carries the metadata synthfs needs for a create
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
