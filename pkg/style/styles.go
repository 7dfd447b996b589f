// Package style holds the lipgloss styles and rendering helpers shared by
// ribforge's terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/ribforge/pkg/types"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	ListItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Background(SurfaceColor).
			Padding(0, 1)

	PathStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)

// Command category styles
var (
	optimizeStyle = lipgloss.NewStyle().Foreground(OptimizeColor).Bold(true)
	compileStyle  = lipgloss.NewStyle().Foreground(CompileColor).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(InfoColor).Bold(true)
	renderStyle   = lipgloss.NewStyle().Foreground(RenderColor).Bold(true)
	archiveStyle  = lipgloss.NewStyle().Foreground(ArchiveColor).Bold(true)
)

// CategoryStyle returns the accent style for a command category.
func CategoryStyle(cat types.Category) lipgloss.Style {
	switch cat {
	case types.CategoryOptimize:
		return optimizeStyle
	case types.CategoryCompile:
		return compileStyle
	case types.CategoryInfo:
		return infoStyle
	case types.CategoryRender:
		return renderStyle
	case types.CategoryPostRender:
		return archiveStyle
	default:
		return NormalStyle
	}
}

// Indicators
var (
	SuccessIndicator  = SuccessStyle.Render("✓")
	ErrorIndicator    = ErrorStyle.Render("✗")
	WarningIndicator  = WarningStyle.Render("!")
	InfoIndicator     = InfoStyle.Render("•")
	PendingIndicator  = MutedStyle.Render("○")
	ProgressIndicator = InfoStyle.Render("⟳")
)

// Helper functions
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}

func Italic(s string) string {
	return lipgloss.NewStyle().Italic(true).Render(s)
}

func Underline(s string) string {
	return lipgloss.NewStyle().Underline(true).Render(s)
}
