package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/ribforge/pkg/exporter"
	"github.com/arthur-debert/ribforge/pkg/paths"
	"github.com/arthur-debert/ribforge/pkg/style"
	"github.com/arthur-debert/ribforge/pkg/types"
)

func newShadersCmd() *cobra.Command {
	var library string

	cmd := &cobra.Command{
		Use:     "shaders <project.toml>",
		Short:   MsgShadersShort,
		Long:    MsgShadersLong,
		Example: MsgShadersExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")

			sess, err := openSession(configPath, args[0])
			if err != nil {
				return err
			}
			defer sess.mgr.CloseCommands()

			// Empty lists keep Prepare from wiping archives of earlier runs,
			// the project's purge options still apply on top.
			opts := exporter.PrepareOptions{Clean: []string{}, Purge: []string{}}
			if err := sess.mgr.Prepare(cmd.Context(), opts); err != nil {
				return err
			}
			if err := sess.mgr.ExportShaders(library); err != nil {
				return err
			}

			sources := 0
			shaderDir := ""
			if dir, ok := sess.mgr.Tree().Bucket(paths.KeyShaders); ok {
				shaderDir = dir
				sources = countFiles(dir)
			}
			compile := len(sess.mgr.Queued(types.CategoryCompile))
			info := len(sess.mgr.Queued(types.CategoryInfo))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d shader sources under %s\n", style.SuccessIndicator, sources, shaderDir)
			if library != "" {
				fmt.Fprintf(out, "%s %d compile and %d info commands queued for library %q\n",
					style.InfoIndicator, compile, info, library)
			} else {
				fmt.Fprintf(out, "%s %d compile and %d info commands queued\n",
					style.InfoIndicator, compile, info)
			}
			fmt.Fprintf(out, "%s run 'ribforge export' to execute them\n", style.PendingIndicator)
			return nil
		},
	}

	cmd.Flags().StringVar(&library, "library", "", "Compile a single pipeline's external shader library")
	return cmd
}
