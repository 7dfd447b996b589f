package command

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/logging"
)

// Start spawns the command's script as a subprocess. A Building
// command is built first. When the template's execute attribute
// resolves falsy the command completes immediately without spawning.
func (c *Command) Start() error {
	if c.state == StateBuilding {
		if err := c.Build(); err != nil {
			return err
		}
	}
	if c.state != StateReady {
		return c.stateError("start", StateReady)
	}

	execute, err := c.store.GetAttribute(c.ectx, c.templatePath, "execute", true, "True")
	if err != nil {
		return errors.Wrap(err, errors.ErrProcessExec, "failed to resolve execute attribute").
			WithDetail("command", c.Name())
	}
	if !links.Truthy(execute) {
		c.log.Debug().Str("command", c.Name()).Msg("Execute attribute is false, skipping")
		c.state = StateCompleted
		return nil
	}

	cmd := exec.Command(c.shell, c.FullPath())
	cmd.Dir = c.Dir()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = sysProcAttr()

	logging.LogCommand(c.shell, []string{c.FullPath()})
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, errors.ErrProcessSpawn, "failed to start command process").
			WithDetail("command", c.Name()).
			WithDetail("shell", c.shell)
	}
	c.cmd = cmd
	c.state = StateExecuting
	c.log.Info().Str("command", c.Name()).Int("pid", cmd.Process.Pid).Msg("Command started")
	return nil
}

// Wait blocks until the running process exits or ctx is canceled.
// Cancellation terminates the process group and skips the deferred
// target regexes; those only run after a natural exit. The process's
// exit status is logged, not enforced.
func (c *Command) Wait(ctx context.Context) error {
	if c.state == StateCompleted {
		return nil
	}
	if c.state != StateExecuting {
		return c.stateError("wait", StateExecuting)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.cmd.Wait()
	}()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					c.log.Warn().Str("command", c.Name()).Int("exit_code", exitErr.ExitCode()).Msg("Command exited with non-zero status")
				} else {
					c.log.Warn().Err(err).Str("command", c.Name()).Msg("Command wait failed")
				}
			} else {
				c.log.Info().Str("command", c.Name()).Msg("Command completed")
			}
			c.state = StateCompleted
			return c.ApplyTargetRegexes(ctx)

		case <-ctx.Done():
			if err := c.Terminate(); err != nil {
				c.log.Warn().Err(err).Str("command", c.Name()).Msg("Terminate after cancellation failed")
			}
			<-done
			return errors.Wrap(ctx.Err(), errors.ErrProcessExec, "command execution canceled").
				WithDetail("command", c.Name())

		case <-ticker.C:
			c.log.Trace().Str("command", c.Name()).Msg("Command still running")
		}
	}
}

// Execute runs the command to completion: Start, then Wait when a
// process was actually spawned.
func (c *Command) Execute(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}
	if c.state != StateExecuting {
		return nil
	}
	return c.Wait(ctx)
}
