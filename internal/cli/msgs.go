package cli

// Short messages (one-liners)
const (
	MsgRootShort      = "Pipeline driven scene exporter for RenderMan style renderers"
	MsgVersionShort   = "Print version information"
	MsgExportShort    = "Export archives and run the render pipeline"
	MsgShadersShort   = "Export shader sources and queue compile commands"
	MsgPipelinesShort = "List the pipelines a project can see"
	MsgPassesShort    = "List a project's render passes"
)

// Long messages
const (
	MsgRootLong = `ribforge reads XML pipeline definitions and a project file, generates
per-frame scene archives and utility scripts from them, and runs the
resulting commands through your shell.

Pipelines describe how a renderer is driven. Projects describe what to
render. ribforge connects the two and leaves a self-contained, relocatable
export tree behind.`

	MsgVersionLong = `Print detailed version information including commit hash and build date`

	MsgExportLong = `Export runs a full cycle for the given project: the export tree is
prepared, shader sources and textures are handled, one scene archive is
written per enabled pass and frame, and the queued commands are executed
in category order (optimize, compile, info, render, post-render).

Every generated script also lands in the launcher at the export root, so a
finished export can be replayed later without ribforge.`

	MsgShadersLong = `Shaders prepares the export tree and exports shader sources only. Inline
project shaders and pipeline shader sources are written under Shaders/,
and compile commands are generated next to them. Use --library to compile
a single pipeline's external shader library instead.`

	MsgPipelinesLong = `Pipelines lists every pipeline found on the search paths together with
its panel counts. Directories given as arguments override the configured
search paths.`

	MsgPassesLong = `Passes shows the project's resolved render passes: frame ranges, quality
settings and which pass is active. A project without explicit passes gets
a single enabled beauty pass covering the scene range.`
)

// Examples
const (
	MsgExportExample = `  # Export and render the whole scene range
  ribforge export teapot.toml

  # A single frame, without executing the generated commands
  ribforge export teapot.toml --frame 12 --no-exec

  # Frames 1 to 50, wiping Shaders/ first
  ribforge export teapot.toml --start 1 --end 50 --purge SHD`

	MsgShadersExample = `  # Export and queue compiles for every visible pipeline
  ribforge shaders teapot.toml

  # Compile one pipeline's external shader library
  ribforge shaders teapot.toml --library aqsis`

	MsgPipelinesExample = `  # List pipelines from the configured search paths
  ribforge pipelines

  # List pipelines from explicit directories
  ribforge pipelines ./pipelines /usr/share/ribforge/pipelines`

	MsgPassesExample = `  # Show the pass table
  ribforge passes teapot.toml

  # Machine readable output
  ribforge passes teapot.toml --format json`
)
