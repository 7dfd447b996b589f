package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette colors. AdaptiveColor switches between light and dark terminal
// backgrounds automatically.
var (
	PrimaryColor = lipgloss.AdaptiveColor{
		Light: "#0B7285", // Teal
		Dark:  "#3BC9DB",
	}

	SuccessColor = lipgloss.AdaptiveColor{
		Light: "#2B8A3E", // Green
		Dark:  "#69DB7C",
	}

	ErrorColor = lipgloss.AdaptiveColor{
		Light: "#C92A2A", // Red
		Dark:  "#FF8787",
	}

	WarningColor = lipgloss.AdaptiveColor{
		Light: "#E67700", // Orange
		Dark:  "#FFC078",
	}

	InfoColor = lipgloss.AdaptiveColor{
		Light: "#1971C2", // Blue
		Dark:  "#74C0FC",
	}

	HeadingColor = lipgloss.AdaptiveColor{
		Light: "#212529", // Near black
		Dark:  "#F1F3F5", // Near white
	}

	TextColor = lipgloss.AdaptiveColor{
		Light: "#495057",
		Dark:  "#DEE2E6",
	}

	MutedColor = lipgloss.AdaptiveColor{
		Light: "#868E96",
		Dark:  "#ADB5BD",
	}

	SurfaceColor = lipgloss.AdaptiveColor{
		Light: "#F1F3F5",
		Dark:  "#2B2D42",
	}

	BorderColor = lipgloss.AdaptiveColor{
		Light: "#DEE2E6",
		Dark:  "#3F4259",
	}
)

// Accent colors for the command categories an export cycle moves through.
var (
	OptimizeColor = lipgloss.AdaptiveColor{
		Light: "#0C8599", // Cyan
		Dark:  "#66D9E8",
	}

	CompileColor = lipgloss.AdaptiveColor{
		Light: "#6741D9", // Violet
		Dark:  "#B197FC",
	}

	RenderColor = lipgloss.AdaptiveColor{
		Light: "#D9480F", // Vermilion
		Dark:  "#FFA94D",
	}

	ArchiveColor = lipgloss.AdaptiveColor{
		Light: "#087F5B", // Emerald
		Dark:  "#63E6BE",
	}
)
