package topics_test

// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Verify topic scanning, lookup and the Cobra help integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ribforge/pkg/cobrax/topics"
)

func writeTopic(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func topicsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTopic(t, dir, "tokens.md", "# Link tokens\n\nTokens drive attribute substitution.\n")
	writeTopic(t, dir, "launcher.txt", "The launcher script replays an export.\n")
	writeTopic(t, dir, "option-frame.md", "# --frame\n\nExport a single frame.\n")
	writeTopic(t, dir, "ignored.json", "{}")
	return dir
}

func TestScanFindsSupportedExtensions(t *testing.T) {
	m := topics.New(topicsDir(t))
	require.NoError(t, m.Scan())

	assert.Equal(t, []string{"launcher", "option-frame", "tokens"}, m.List())
}

func TestScanCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeTopic(t, dir, "pipelines.rst", "Pipelines\n=========\n")
	writeTopic(t, dir, "tokens.md", "# Tokens\n")

	m := topics.NewWithOptions(dir, topics.Options{Extensions: []string{".rst"}})
	require.NoError(t, m.Scan())

	assert.Equal(t, []string{"pipelines"}, m.List())
}

func TestScanMissingDirYieldsNoTopics(t *testing.T) {
	m := topics.New(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, m.Scan())
	assert.Empty(t, m.List())
}

func TestGetStripsFlagDashes(t *testing.T) {
	m := topics.New(topicsDir(t))
	require.NoError(t, m.Scan())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"exact_name", "tokens", "tokens"},
		{"double_dash", "--frame", "option-frame"},
		{"single_dash", "-frame", "option-frame"},
		{"option_prefix_direct", "option-frame", "option-frame"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, ok := m.Get(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, topic.Name)
		})
	}

	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func newTestRoot(t *testing.T, dir string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	root := &cobra.Command{Use: "forge", Run: func(cmd *cobra.Command, args []string) {}}
	root.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Export archives for a project",
		Run:   func(cmd *cobra.Command, args []string) {},
	})

	require.NoError(t, topics.Initialize(root, dir))

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	return root, out
}

func TestHelpShowsTopicContent(t *testing.T) {
	root, out := newTestRoot(t, topicsDir(t))

	root.SetArgs([]string{"help", "launcher"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "replays an export")
}

func TestHelpPrefersCommandsOverTopics(t *testing.T) {
	dir := topicsDir(t)
	writeTopic(t, dir, "export.md", "# Not this one\n")

	root, out := newTestRoot(t, dir)
	root.SetArgs([]string{"help", "export"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "Export archives for a project")
	assert.NotContains(t, out.String(), "Not this one")
}

func TestHelpFlagPrefersCommandsOverTopics(t *testing.T) {
	dir := topicsDir(t)
	writeTopic(t, dir, "export.md", "# Not this one\n")

	root, out := newTestRoot(t, dir)
	root.SetArgs([]string{"export", "--help"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "Export archives for a project")
	assert.NotContains(t, out.String(), "Not this one")
}

func TestHelpTopicsListsGeneralAndOptionTopics(t *testing.T) {
	root, out := newTestRoot(t, topicsDir(t))

	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	got := out.String()
	assert.Contains(t, got, "General topics:")
	assert.Contains(t, got, "tokens")
	assert.Contains(t, got, "launcher")
	assert.Contains(t, got, "Option topics:")
	assert.Contains(t, got, "--frame")
	assert.Contains(t, got, "'forge help <topic>'")
}

func TestHelpTopicsEmptyDir(t *testing.T) {
	root, out := newTestRoot(t, t.TempDir())

	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "No help topics available.")
}

func TestPlainRendererPassesThrough(t *testing.T) {
	r := &topics.PlainRenderer{}
	assert.Equal(t, "body", r.Render("body", ".md"))
}

func TestGlamourRendererSkipsNonMarkdown(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
}

func TestGlamourRendererRendersMarkdown(t *testing.T) {
	r := topics.NewGlamourRenderer()
	out := r.Render("# Heading\n\nbody text\n", ".md")

	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "body text")
}
