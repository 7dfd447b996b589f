// Package archive implements the file-writing abstraction behind every
// generated export artifact. An Archive owns zero or one physical file
// handle; archives compose, so many logical writers can share one
// physical file with only the root allowed to close it. Regex rewrite
// rules registered against an archive run once, when the root closes.
package archive

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/logging"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// execMode is applied to executable archives: owner rwx, group and
// other rx.
const execMode = os.FileMode(0o755)

// Archive is one logical writer over a physical output file. A root
// archive owns the handle; a composed archive writes through its
// parent's handle and never closes it.
type Archive struct {
	ectx  *types.ExportContext
	store pipeline.Store
	log   zerolog.Logger

	dir  string
	name string

	parent *Archive
	file   *os.File
	zw     *gzip.Writer
	cache  io.Closer

	gzip       bool
	exec       bool
	targetGzip bool
	closed     bool

	// close-time rule element paths, in registration order
	regexPaths []string

	// rules deferred to ApplyTargetRegexes
	deferred []deferredRule
}

type deferredRule struct {
	rulePath string
	target   string
}

// New constructs an archive identified by (dir, name). A parent with an
// open handle makes this a composed archive: it inherits the parent's
// handle, flags, and identity defaults, and registers its regex rules
// on the parent's root. A nil or unopened parent makes a root archive.
func New(parent *Archive, ectx *types.ExportContext, store pipeline.Store, dir, name string) *Archive {
	a := &Archive{
		ectx:  ectx,
		store: store,
		log:   logging.GetLogger("archive"),
		dir:   dir,
		name:  name,
	}
	if parent != nil && parent.IsOpen() {
		a.parent = parent
		if a.dir == "" {
			a.dir = parent.dir
		}
		if a.name == "" {
			a.name = parent.name
		}
	}
	return a
}

// OpenOptions controls Open. Zero Mode means "w".
type OpenOptions struct {
	// Mode is "w" (truncate), "a" (append) or "r" (read)
	Mode string

	// Gzip compresses written text and decompresses reads
	Gzip bool

	// Exec marks the file executable (0755), best-effort
	Exec bool
}

// Open opens the physical handle at dir/name. Opening always makes the
// archive a root: any parent link is dropped.
func (a *Archive) Open(opts OpenOptions) error {
	if a.dir == "" && a.name == "" {
		return errors.New(errors.ErrArchiveOpen, "archive has no path or name to open")
	}
	if opts.Mode == "" {
		opts.Mode = "w"
	}

	var flag int
	switch opts.Mode {
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case "r":
		flag = os.O_RDONLY
	default:
		return errors.New(errors.ErrArchiveOpen, "unknown archive open mode").
			WithDetail("mode", opts.Mode)
	}

	full := a.FullPath()
	file, err := os.OpenFile(full, flag, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.ErrArchiveOpen, "failed to open archive").
			WithDetail("path", full)
	}

	a.parent = nil
	a.file = file
	a.gzip = opts.Gzip
	a.exec = opts.Exec
	a.closed = false
	if opts.Gzip && opts.Mode != "r" {
		a.zw = gzip.NewWriter(file)
	}

	if opts.Exec && opts.Mode != "r" {
		// Best-effort: a filesystem without permission bits still gets
		// a usable script.
		if err := os.Chmod(full, execMode); err != nil {
			a.log.Warn().Err(err).Str("path", full).Msg("Could not mark archive executable")
		}
	}
	return nil
}

// WriteText appends text through the archive's handle, compressing when
// the root is gzip. With closeAfter the archive is closed after the
// write (a no-op for composed archives).
func (a *Archive) WriteText(text string, closeAfter bool) error {
	w, err := a.writer()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return errors.Wrap(err, errors.ErrArchiveWrite, "failed to write archive text").
			WithDetail("path", a.FullPath())
	}
	if closeAfter {
		return a.Close()
	}
	return nil
}

// Close releases the physical handle. Composed archives are a no-op:
// only the root may close the file. After the handle closes, registered
// close-time regex rules rewrite the file once; rewrite failures are
// logged and do not fail the close. Close is idempotent.
func (a *Archive) Close() error {
	if a.parent != nil {
		return nil
	}
	if a.closed {
		return nil
	}
	a.closed = true

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn().Err(err).Str("archive", a.FullPath()).Msg("Cache handle close failed")
		}
		a.cache = nil
	}

	if a.file != nil {
		if a.zw != nil {
			if err := a.zw.Close(); err != nil {
				a.zw = nil
				_ = a.file.Close()
				a.file = nil
				return errors.Wrap(err, errors.ErrArchiveWrite, "failed to flush compressed archive").
					WithDetail("path", a.FullPath())
			}
			a.zw = nil
		}
		if err := a.file.Close(); err != nil {
			a.file = nil
			return errors.Wrap(err, errors.ErrArchiveWrite, "failed to close archive").
				WithDetail("path", a.FullPath())
		}
		a.file = nil
	}

	a.applyCloseRegexes()
	return nil
}

// AttachCache hands the archive an auxiliary handle closed together
// with the archive (geometry caching collaborators use this).
func (a *Archive) AttachCache(c io.Closer) {
	a.rootArchive().cache = c
}

// SetTargetGzip marks files matched by deferred target rules as
// gzip-compressed. This is explicit configuration: it is never inferred
// from the parent archive or probed from matched files.
func (a *Archive) SetTargetGzip(on bool) {
	a.targetGzip = on
}

// Name returns the archive's file name
func (a *Archive) Name() string {
	return a.name
}

// Dir returns the archive's directory
func (a *Archive) Dir() string {
	return a.dir
}

// FullPath returns the archive's physical path
func (a *Archive) FullPath() string {
	return filepath.Join(a.dir, a.name)
}

// IsRoot reports whether this archive owns the physical handle
func (a *Archive) IsRoot() bool {
	return a.parent == nil
}

// IsOpen reports whether the archive (through its root) has an open
// handle
func (a *Archive) IsOpen() bool {
	r := a.rootArchive()
	return r.file != nil && !r.closed
}

// Context returns the export context the archive resolves against
func (a *Archive) Context() *types.ExportContext {
	return a.ectx
}

func (a *Archive) rootArchive() *Archive {
	r := a
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (a *Archive) writer() (io.Writer, error) {
	r := a.rootArchive()
	if r.closed || r.file == nil {
		return nil, errors.New(errors.ErrArchiveClosed, "archive is not open for writing").
			WithDetail("path", a.FullPath())
	}
	if r.zw != nil {
		return r.zw, nil
	}
	return r.file, nil
}
