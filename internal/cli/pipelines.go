package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/ribforge/pkg/config"
	"github.com/arthur-debert/ribforge/pkg/links"
	"github.com/arthur-debert/ribforge/pkg/pipeline"
	"github.com/arthur-debert/ribforge/pkg/style"
	"github.com/arthur-debert/ribforge/pkg/types"
	"github.com/arthur-debert/ribforge/pkg/ui"
)

type pipelineInfo struct {
	Name          string `json:"name"`
	Enabled       bool   `json:"enabled"`
	CommandPanels int    `json:"command_panels"`
	UtilityPanels int    `json:"utility_panels"`
	ShaderPanels  int    `json:"shader_panels"`
	Sources       int    `json:"shader_sources"`
}

func newPipelinesCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:     "pipelines [dir...]",
		Short:   MsgPipelinesShort,
		Long:    MsgPipelinesLong,
		Example: MsgPipelinesExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ui.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			dirs := args
			if len(dirs) == 0 {
				configPath, _ := cmd.Root().PersistentFlags().GetString("config")
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				dirs = resolveSearchPaths(cfg, ".")
			}

			store := pipeline.NewXMLStore()
			if err := store.LoadDirs(dirs...); err != nil {
				return err
			}

			infos := collectPipelineInfo(store)
			out := cmd.OutOrStdout()

			if outFormat.Resolve(os.Stdout) == ui.FormatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			if len(infos) == 0 {
				fmt.Fprintln(out, "No pipelines found.")
				return nil
			}

			rows := make([][]string, 0, len(infos))
			for _, pi := range infos {
				state := "enabled"
				if !pi.Enabled {
					state = "disabled"
				}
				rows = append(rows, []string{
					pi.Name,
					fmt.Sprintf("%d", pi.CommandPanels),
					fmt.Sprintf("%d", pi.UtilityPanels),
					fmt.Sprintf("%d", pi.ShaderPanels),
					fmt.Sprintf("%d", pi.Sources),
					state,
				})
			}

			plain := outFormat.Resolve(os.Stdout) == ui.FormatText
			table, err := style.Table(
				[]string{"PIPELINE", "COMMAND", "UTILITY", "SHADER", "SOURCES", "STATE"},
				rows, plain)
			if err != nil {
				return err
			}
			fmt.Fprint(out, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "auto", "Output format: auto, term, text or json")
	return cmd
}

func collectPipelineInfo(store pipeline.Store) []pipelineInfo {
	ectx := types.NewContext()
	infos := make([]pipelineInfo, 0)
	for _, p := range store.ListPipelines() {
		enabled, err := store.GetAttribute(ectx, p, "enabled", false, "True")
		if err != nil {
			enabled = "False"
		}
		infos = append(infos, pipelineInfo{
			Name:          p,
			Enabled:       links.Truthy(enabled),
			CommandPanels: countPrefixed(store.ListPanels(pipeline.KindCommandPanels), p),
			UtilityPanels: countPrefixed(store.ListPanels(pipeline.KindUtilityPanels), p),
			ShaderPanels:  countPrefixed(store.ListPanels(pipeline.KindShaderPanels), p),
			Sources:       len(store.ListElements(p + "/" + pipeline.ShaderSources)),
		})
	}
	return infos
}

func countPrefixed(panelPaths []string, pipelineName string) int {
	n := 0
	for _, p := range panelPaths {
		if strings.HasPrefix(p, pipelineName+"/") {
			n++
		}
	}
	return n
}
