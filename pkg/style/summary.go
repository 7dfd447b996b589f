package style

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/ribforge/pkg/types"
)

// ExportSummary collects the figures an export run reports when it finishes.
type ExportSummary struct {
	Project  string
	Root     string
	Frames   []int
	Archives int
	Sources  int
	Commands map[types.Category]int
	Executed bool
	Launcher string
	Manifest string
	Duration time.Duration
}

// RenderExportSummary formats the end-of-run report. With plain set, all
// styling is skipped so the output is safe for pipes and logs.
func RenderExportSummary(s ExportSummary, plain bool) string {
	var b strings.Builder

	title := "Export complete"
	if !s.Executed {
		title = "Export prepared, commands not executed"
	}
	b.WriteString(apply(SubtitleStyle, title, plain))
	b.WriteString("\n")

	row(&b, "Project", s.Project, plain)
	row(&b, "Root", s.Root, plain)
	row(&b, "Frames", frameSpan(s.Frames), plain)
	row(&b, "Archives", fmt.Sprintf("%d", s.Archives), plain)
	if s.Sources > 0 {
		row(&b, "Shaders", fmt.Sprintf("%d source files", s.Sources), plain)
	}
	if s.Duration > 0 {
		row(&b, "Duration", s.Duration.Round(time.Millisecond).String(), plain)
	}

	total := 0
	for _, n := range s.Commands {
		total += n
	}
	if total > 0 {
		b.WriteString("\n")
		b.WriteString(apply(SubtitleStyle, "Commands", plain))
		b.WriteString("\n")
		for _, cat := range types.Categories() {
			n := s.Commands[cat]
			if n == 0 {
				continue
			}
			label := fmt.Sprintf("%-12s", string(cat))
			fmt.Fprintf(&b, "  %s %3d\n", apply(CategoryStyle(cat), label, plain), n)
		}
	}

	if s.Launcher != "" || s.Manifest != "" {
		b.WriteString("\n")
		row(&b, "Launcher", s.Launcher, plain)
		row(&b, "Manifest", s.Manifest, plain)
	}

	return b.String()
}

// Table renders a header plus rows either as a pterm table or, with plain
// set, as tab-aligned text.
func Table(header []string, rows [][]string, plain bool) (string, error) {
	if plain {
		var b strings.Builder
		w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(header, "\t"))
		for _, r := range rows {
			fmt.Fprintln(w, strings.Join(r, "\t"))
		}
		if err := w.Flush(); err != nil {
			return "", err
		}
		return b.String(), nil
	}

	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func apply(st lipgloss.Style, s string, plain bool) string {
	if plain {
		return s
	}
	return st.Render(s)
}

func row(b *strings.Builder, label, value string, plain bool) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s %s\n", apply(MutedStyle, fmt.Sprintf("%-10s", label), plain), value)
}

func frameSpan(frames []int) string {
	switch len(frames) {
	case 0:
		return "none"
	case 1:
		return fmt.Sprintf("%d", frames[0])
	default:
		return fmt.Sprintf("%d..%d (%d frames)", frames[0], frames[len(frames)-1], len(frames))
	}
}
