// Package ui decides how ribforge renders command output. Commands accept a
// --format flag; FormatAuto resolves to terminal or plain text depending on
// the output device so piped output stays free of escape sequences.
package ui

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/ribforge/pkg/errors"
)

// Format selects an output rendering mode.
type Format int

const (
	// FormatAuto picks FormatTerminal or FormatText based on the device.
	FormatAuto Format = iota
	// FormatTerminal renders styled output for interactive terminals.
	FormatTerminal
	// FormatText renders plain text for pipes, files and dumb terminals.
	FormatText
	// FormatJSON renders machine readable output.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTerminal:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseFormat converts a --format flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, errors.New(errors.ErrInvalidInput, "unknown output format").
			WithDetail("format", s)
	}
}

// Resolve maps FormatAuto to a concrete format for the given output file.
// Explicit formats pass through unchanged.
func (f Format) Resolve(out *os.File) Format {
	if f != FormatAuto {
		return f
	}
	return DetectFormat(out)
}

// DetectFormat inspects the output device and environment. NO_COLOR and
// non-terminal outputs force plain text, as do terminals without color
// support.
func DetectFormat(out *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if out == nil {
		return FormatText
	}
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(out).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
