// Package command implements the executable-script archive. A Command
// is an Archive whose content is a generated shell script: it adds a
// build lifecycle, an execute predicate, and a subprocess handle with
// group-wide termination.
package command

import (
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/ribforge/pkg/archive"
	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/logging"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/types"
)

// State is a command's lifecycle state
type State string

const (
	// StateBuilding: script text generation in progress (or deferred)
	StateBuilding State = "building"

	// StateReady: script fully written, file handle closed
	StateReady State = "ready"

	// StateExecuting: subprocess running
	StateExecuting State = "executing"

	// StateCompleted: subprocess exited (or execute predicate skipped it)
	StateCompleted State = "completed"

	// StateTerminated: subprocess killed on request
	StateTerminated State = "terminated"

	// StateClosed: terminal; resources released
	StateClosed State = "closed"
)

// buildSections are generated in this order by Build
var buildSections = []string{"begin", "middle", "end"}

// Command is a generated, executable script built from one command
// panel template.
type Command struct {
	*archive.Archive

	ectx  *types.ExportContext
	store pipeline.Store
	log   zerolog.Logger

	templatePath string
	delayBuild   bool
	shell        string
	pollInterval time.Duration

	state State
	cmd   *exec.Cmd
}

// Options tunes command construction
type Options struct {
	// DelayBuild defers section generation to Execute time
	DelayBuild bool

	// Shell runs the generated script, "/bin/sh" when empty
	Shell string

	// PollInterval spaces the heartbeat while the process runs
	PollInterval time.Duration

	// TargetGzip marks deferred-rule target files as gzip-compressed
	TargetGzip bool
}

// New creates a command from the panel template at templatePath. The
// template's extension attribute is appended to name, the script file
// is opened executable, and the template's regex rules are registered.
// The command starts in Building; non-delayed callers Build it at once.
func New(ectx *types.ExportContext, store pipeline.Store, templatePath, dir, name string, opts Options) (*Command, error) {
	ext, err := store.GetAttribute(ectx, templatePath, "extension", true, "")
	if err != nil {
		return nil, err
	}

	c := &Command{
		Archive:      archive.New(nil, ectx, store, dir, name+ext),
		ectx:         ectx,
		store:        store,
		log:          logging.GetLogger("command"),
		templatePath: templatePath,
		delayBuild:   opts.DelayBuild,
		shell:        opts.Shell,
		pollInterval: opts.PollInterval,
		state:        StateBuilding,
	}
	if c.shell == "" {
		c.shell = "/bin/sh"
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 100 * time.Millisecond
	}
	c.SetTargetGzip(opts.TargetGzip)

	if err := c.Open(archive.OpenOptions{Mode: "w", Exec: true}); err != nil {
		return nil, err
	}
	if err := c.AddRegexes(templatePath + "/regexes"); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// State returns the command's lifecycle state
func (c *Command) State() State {
	return c.state
}

// TemplatePath returns the panel template the command was built from
func (c *Command) TemplatePath() string {
	return c.templatePath
}

// DelayBuild reports whether section generation waits for Execute
func (c *Command) DelayBuild() bool {
	return c.delayBuild
}

// BuildSection writes one of the template's sections (begin, middle,
// end) into the script. Only valid while Building.
func (c *Command) BuildSection(section string) error {
	if c.state != StateBuilding {
		return c.stateError("build section", StateBuilding)
	}
	return c.WriteTemplate(c.templatePath+"/"+section, false)
}

// FinishBuild closes the script file, transitioning Building to Ready
func (c *Command) FinishBuild() error {
	if c.state != StateBuilding {
		return c.stateError("finish build", StateBuilding)
	}
	if err := c.Archive.Close(); err != nil {
		return err
	}
	c.state = StateReady
	return nil
}

// Build generates the begin, middle and end sections and closes the
// script, leaving the command Ready
func (c *Command) Build() error {
	for _, section := range buildSections {
		if err := c.BuildSection(section); err != nil {
			return err
		}
	}
	return c.FinishBuild()
}

// Terminate kills the command's process group, best-effort, and marks
// the command Terminated. Safe to call when nothing is running.
func (c *Command) Terminate() error {
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	c.log.Info().Str("command", c.Name()).Int("pid", c.cmd.Process.Pid).Msg("Terminating command")
	err := terminateProcess(c.cmd.Process)
	c.state = StateTerminated
	if err != nil {
		return errors.Wrap(err, errors.ErrProcessExec, "failed to terminate command process").
			WithDetail("command", c.Name())
	}
	return nil
}

// Close force-releases the command's resources: a running process is
// terminated, the script file is closed. Terminal and idempotent, so
// error unwinding may call it repeatedly.
func (c *Command) Close() error {
	if c.state == StateClosed {
		return nil
	}
	if c.state == StateExecuting {
		if err := c.Terminate(); err != nil {
			c.log.Warn().Err(err).Str("command", c.Name()).Msg("Terminate during close failed")
		}
	}
	if err := c.Archive.Close(); err != nil {
		c.log.Warn().Err(err).Str("command", c.Name()).Msg("Archive close during command close failed")
	}
	c.state = StateClosed
	return nil
}

func (c *Command) stateError(op string, want State) error {
	return errors.New(errors.ErrCommandState, "command is not in the required state").
		WithDetail("command", c.Name()).
		WithDetail("operation", op).
		WithDetail("state", string(c.state)).
		WithDetail("required", string(want))
}
