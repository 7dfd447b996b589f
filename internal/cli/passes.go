package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/ribforge/pkg/project"
	"github.com/arthur-debert/ribforge/pkg/style"
	"github.com/arthur-debert/ribforge/pkg/ui"
)

type passInfo struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	FrameStart  int     `json:"frame_start"`
	FrameEnd    int     `json:"frame_end"`
	FrameStep   int     `json:"frame_step"`
	SamplesX    int     `json:"samples_x,omitempty"`
	SamplesY    int     `json:"samples_y,omitempty"`
	ShadingRate float64 `json:"shading_rate,omitempty"`
	Enabled     bool    `json:"enabled"`
	Active      bool    `json:"active"`
}

func newPassesCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:     "passes <project.toml>",
		Short:   MsgPassesShort,
		Long:    MsgPassesLong,
		Example: MsgPassesExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ui.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			proj, err := project.Load(args[0])
			if err != nil {
				return err
			}

			passes := proj.ResolvedPasses()
			active := proj.ActivePass()

			infos := make([]passInfo, 0, len(passes))
			for i, p := range passes {
				infos = append(infos, passInfo{
					Index:       i + 1,
					Name:        p.Name,
					Type:        p.Type,
					FrameStart:  p.Range.Start,
					FrameEnd:    p.Range.End,
					FrameStep:   p.Range.Step,
					SamplesX:    p.SamplesX,
					SamplesY:    p.SamplesY,
					ShadingRate: p.ShadingRate,
					Enabled:     p.Enabled,
					Active:      i+1 == active,
				})
			}

			out := cmd.OutOrStdout()

			if outFormat.Resolve(os.Stdout) == ui.FormatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			rows := make([][]string, 0, len(infos))
			for _, pi := range infos {
				marker := " "
				if pi.Active {
					marker = "*"
				}
				state := "enabled"
				if !pi.Enabled {
					state = "disabled"
				}
				samples := ""
				if pi.SamplesX > 0 {
					samples = fmt.Sprintf("%dx%d", pi.SamplesX, pi.SamplesY)
				}
				shading := ""
				if pi.ShadingRate > 0 {
					shading = strconv.FormatFloat(pi.ShadingRate, 'g', -1, 64)
				}
				rows = append(rows, []string{
					fmt.Sprintf("%s%d", marker, pi.Index),
					pi.Name,
					pi.Type,
					rangeLabel(pi.FrameStart, pi.FrameEnd, pi.FrameStep),
					samples,
					shading,
					state,
				})
			}

			plain := outFormat.Resolve(os.Stdout) == ui.FormatText
			table, err := style.Table(
				[]string{"#", "PASS", "TYPE", "FRAMES", "SAMPLES", "SHADING", "STATE"},
				rows, plain)
			if err != nil {
				return err
			}
			fmt.Fprint(out, table)
			fmt.Fprintln(out, "\n* active pass")
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "auto", "Output format: auto, term, text or json")
	return cmd
}

func rangeLabel(start, end, step int) string {
	label := fmt.Sprintf("%d..%d", start, end)
	if step > 1 {
		label += fmt.Sprintf("/%d", step)
	}
	return label
}
