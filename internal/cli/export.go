package cli

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/exporter"
	"github.com/arthur-debert/ribforge/pkg/paths"
	"github.com/arthur-debert/ribforge/pkg/project"
	"github.com/arthur-debert/ribforge/pkg/style"
	"github.com/arthur-debert/ribforge/pkg/types"
	"github.com/arthur-debert/ribforge/pkg/ui"
)

func newExportCmd() *cobra.Command {
	var (
		frame       int
		start       int
		end         int
		noExec      bool
		interactive bool
		clean       []string
		purge       []string
	)

	cmd := &cobra.Command{
		Use:     "export <project.toml>",
		Short:   MsgExportShort,
		Long:    MsgExportLong,
		Example: MsgExportExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")

			sess, err := openSession(configPath, args[0])
			if err != nil {
				return err
			}
			defer sess.mgr.CloseCommands()

			if interactive {
				sess.proj.Options.Interactive = true
			}

			sel := frameSelection{
				frame:    frame,
				start:    start,
				end:      end,
				frameSet: cmd.Flags().Changed("frame"),
				startSet: cmd.Flags().Changed("start"),
				endSet:   cmd.Flags().Changed("end"),
			}
			frames, err := sel.resolve(sess.proj)
			if err != nil {
				return err
			}

			// Ctrl-C between commands aborts the run instead of the shell
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			started := time.Now()

			if err := sess.mgr.Prepare(ctx, exporter.PrepareOptions{Clean: clean, Purge: purge}); err != nil {
				return err
			}
			if err := sess.mgr.ExportShaders(""); err != nil {
				return err
			}
			if err := sess.mgr.ExportTextures(); err != nil {
				return err
			}

			counts := map[types.Category]int{
				types.CategoryOptimize: len(sess.mgr.Queued(types.CategoryOptimize)),
				types.CategoryCompile:  len(sess.mgr.Queued(types.CategoryCompile)),
				types.CategoryInfo:     len(sess.mgr.Queued(types.CategoryInfo)),
			}

			for _, f := range frames {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := sess.mgr.ExportArchives(f); err != nil {
					return err
				}
				if noExec {
					continue
				}
				counts[types.CategoryRender] += len(sess.mgr.Queued(types.CategoryRender))
				counts[types.CategoryPostRender] += len(sess.mgr.Queued(types.CategoryPostRender))
				if err := sess.mgr.ExecuteCommands(ctx); err != nil {
					return err
				}
			}
			if noExec {
				for _, cat := range types.Categories() {
					counts[cat] = len(sess.mgr.Queued(cat))
				}
			}

			if err := sess.mgr.WriteDisplayManifest(); err != nil {
				return err
			}

			summary := style.ExportSummary{
				Project:  sess.proj.Name,
				Root:     sess.mgr.Tree().Root(),
				Frames:   frames,
				Commands: counts,
				Executed: !noExec,
				Duration: time.Since(started),
			}
			if dir, ok := sess.mgr.Tree().Bucket(paths.KeyFrames); ok {
				summary.Archives = countFiles(dir)
			}
			if dir, ok := sess.mgr.Tree().Bucket(paths.KeyShaders); ok {
				summary.Sources = countFiles(dir)
			}
			if !noExec {
				summary.Launcher = filepath.Join(sess.mgr.Tree().Root(), sess.cfg.Export.Launcher)
			}
			if dir, ok := sess.mgr.Tree().Bucket(paths.KeyRenders); ok {
				summary.Manifest = filepath.Join(dir, "display.yaml")
			}

			log.Info().
				Str("project", sess.proj.Name).
				Int("frames", len(frames)).
				Bool("executed", !noExec).
				Msg("Export finished")

			plain := ui.DetectFormat(os.Stdout) != ui.FormatTerminal
			fmt.Fprint(cmd.OutOrStdout(), style.RenderExportSummary(summary, plain))
			return nil
		},
	}

	cmd.Flags().IntVar(&frame, "frame", 0, "Export a single frame")
	cmd.Flags().IntVar(&start, "start", 0, "First frame to export (defaults to the project range)")
	cmd.Flags().IntVar(&end, "end", 0, "Last frame to export (defaults to the project range)")
	cmd.Flags().BoolVar(&noExec, "no-exec", false, "Generate archives and scripts without executing commands")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Interactive mode: active pass only, commands started without waiting")
	cmd.Flags().StringSliceVar(&clean, "clean", nil, "Directory keys to wipe before exporting (overrides config)")
	cmd.Flags().StringSliceVar(&purge, "purge", nil, "Directory keys to recreate empty (overrides config)")
	cmd.MarkFlagsMutuallyExclusive("frame", "start")
	cmd.MarkFlagsMutuallyExclusive("frame", "end")

	return cmd
}

// frameSelection captures the frame flags. An explicit --frame wins, then
// --start/--end override the project's scene range.
type frameSelection struct {
	frame, start, end          int
	frameSet, startSet, endSet bool
}

func (s frameSelection) resolve(proj *project.Project) ([]int, error) {
	if s.frameSet {
		return []int{s.frame}, nil
	}
	r := proj.SceneRange()
	if s.startSet {
		r.Start = s.start
	}
	if s.endSet {
		r.End = s.end
	}
	if r.End < r.Start {
		return nil, errors.New(errors.ErrInvalidInput, "frame range is empty").
			WithDetail("start", r.Start).
			WithDetail("end", r.End)
	}
	return r.Frames(), nil
}

func countFiles(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}
