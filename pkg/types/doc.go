// Package types defines the core types shared across the ribforge export
// engine. This includes the ExportContext that link tokens resolve against,
// pass and frame-range snapshots, command categories, and the display
// output metadata collected during archive export.
package types
