// Package cli assembles the ribforge command tree. It is shared by the main
// binary and the completion generator so both see identical commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/ribforge/internal/version"
	"github.com/arthur-debert/ribforge/pkg/cobrax/topics"
	"github.com/arthur-debert/ribforge/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:     "ribforge",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults to the user config, then built-ins)")

	initTemplateFormatting()
	rootCmd.SetUsageTemplate(usageTemplate)

	// Disable the automatic help command, topics installs its own
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newShadersCmd())
	rootCmd.AddCommand(newPipelinesCmd())
	rootCmd.AddCommand(newPassesCmd())

	initHelpTopics(rootCmd)

	return rootCmd
}

// initHelpTopics wires the topic help system against the first existing
// topics directory, looking near the executable first and then in the
// working directory.
func initHelpTopics(rootCmd *cobra.Command) {
	candidates := []string{"docs/topics"}
	if exe, err := os.Executable(); err == nil {
		candidates = append([]string{
			filepath.Join(filepath.Dir(exe), "..", "..", "docs", "topics"), // Development
			filepath.Join(filepath.Dir(exe), "docs", "topics"),             // Installed
		}, candidates...)
	}

	opts := topics.Options{Renderer: topics.NewGlamourRenderer()}
	for _, dir := range candidates {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := topics.InitializeWithOptions(rootCmd, dir, opts); err == nil {
			return
		}
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ribforge version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}
