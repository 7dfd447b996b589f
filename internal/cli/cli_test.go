package cli_test

// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), /bin/sh for execution tests
// PURPOSE: Verify command wiring, flag handling and end-to-end export runs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ribforge/internal/cli"
	"github.com/arthur-debert/ribforge/pkg/project"
	"github.com/arthur-debert/ribforge/pkg/testutil"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeProject(t *testing.T, mutate func(p *project.Project)) string {
	t.Helper()
	dir := t.TempDir()
	p := project.New("teapot")
	if mutate != nil {
		mutate(p)
	}
	path := filepath.Join(dir, "teapot.toml")
	require.NoError(t, p.Save(path))
	return path
}

const demoPipeline = `<pipeline name="demo" enabled="True">
  <command_panels>
    <panel name="render" type="RENDER" enabled="True" extension=".sh.bat">
      <begin>#!/bin/sh
</begin>
      <middle>echo frame @[EVAL:.current_frame:]@
</middle>
    </panel>
  </command_panels>
  <utility_panels>
    <panel name="scene_ctl" type="SCENE" enabled="True">
      <begin>version 3.03
</begin>
      <end># end of scene
</end>
    </panel>
  </utility_panels>
</pipeline>
`

func writePipelineDir(t *testing.T, projPath string) string {
	t.Helper()
	dir := filepath.Join(filepath.Dir(projPath), "pipelines")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.xml"), []byte(demoPipeline), 0o644))
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ribforge version")
}

func TestExportSingleFrameNoExec(t *testing.T) {
	projPath := writeProject(t, nil)
	writePipelineDir(t, projPath)

	out, err := runCommand(t, "export", projPath, "--frame", "1", "--no-exec")
	require.NoError(t, err)

	exportDir := filepath.Join(filepath.Dir(projPath), "exports")
	archivePath := filepath.Join(exportDir, "Archives", "P00001_F00001.rib")
	require.True(t, testutil.FileExists(t, archivePath))

	content := testutil.ReadFile(t, archivePath)
	assert.Contains(t, content, "version 3.03")
	assert.Contains(t, content, "WorldBegin")
	assert.Contains(t, content, "# end of scene")

	require.True(t, testutil.FileExists(t,
		filepath.Join(exportDir, "RENDER_P00001_F00001_C00001.sh.bat")))
	require.True(t, testutil.FileExists(t,
		filepath.Join(exportDir, "Renders", "display.yaml")))

	assert.Contains(t, out, "Export prepared")
	assert.Contains(t, out, "RENDER")
}

func TestExportRangeOverridesScene(t *testing.T) {
	projPath := writeProject(t, func(p *project.Project) {
		p.FrameEnd = 5
	})
	writePipelineDir(t, projPath)

	_, err := runCommand(t, "export", projPath, "--start", "2", "--end", "3", "--no-exec")
	require.NoError(t, err)

	archives := filepath.Join(filepath.Dir(projPath), "exports", "Archives")
	assert.False(t, testutil.FileExists(t, filepath.Join(archives, "P00001_F00001.rib")))
	assert.True(t, testutil.FileExists(t, filepath.Join(archives, "P00001_F00002.rib")))
	assert.True(t, testutil.FileExists(t, filepath.Join(archives, "P00001_F00003.rib")))
	assert.False(t, testutil.FileExists(t, filepath.Join(archives, "P00001_F00004.rib")))
}

func TestExportEmptyRangeFails(t *testing.T) {
	projPath := writeProject(t, nil)
	writePipelineDir(t, projPath)

	_, err := runCommand(t, "export", projPath, "--start", "5", "--end", "2", "--no-exec")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame range is empty")
}

func TestExportFrameAndRangeFlagsConflict(t *testing.T) {
	projPath := writeProject(t, nil)
	writePipelineDir(t, projPath)

	_, err := runCommand(t, "export", projPath, "--frame", "1", "--start", "2")
	require.Error(t, err)
}

func TestExportMissingProjectFails(t *testing.T) {
	_, err := runCommand(t, "export", filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestExportExecutesCommands(t *testing.T) {
	testutil.SkipOnWindows(t)

	projPath := writeProject(t, nil)
	writePipelineDir(t, projPath)

	out, err := runCommand(t, "export", projPath, "--frame", "1")
	require.NoError(t, err)

	exportDir := filepath.Join(filepath.Dir(projPath), "exports")
	launcher := testutil.ReadFile(t, filepath.Join(exportDir, "START.sh.bat"))
	assert.Contains(t, launcher, "./RENDER_P00001_F00001_C00001.sh.bat\n")
	assert.Contains(t, out, "Export complete")
}

func TestShadersWritesInlineSources(t *testing.T) {
	projPath := writeProject(t, func(p *project.Project) {
		p.Shaders = []project.Shader{{Name: "matte.sl", Code: "surface matte() {}\n"}}
	})
	writePipelineDir(t, projPath)

	out, err := runCommand(t, "shaders", projPath)
	require.NoError(t, err)

	source := filepath.Join(filepath.Dir(projPath), "exports", "Shaders", "Text_Editor", "matte.sl")
	require.True(t, testutil.FileExists(t, source))
	assert.Contains(t, out, "1 shader sources")
}

func TestPipelinesTable(t *testing.T) {
	projPath := writeProject(t, nil)
	dir := writePipelineDir(t, projPath)

	out, err := runCommand(t, "pipelines", dir, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "PIPELINE")
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "enabled")
}

func TestPipelinesJSON(t *testing.T) {
	projPath := writeProject(t, nil)
	dir := writePipelineDir(t, projPath)

	out, err := runCommand(t, "pipelines", dir, "--format", "json")
	require.NoError(t, err)

	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "demo", infos[0]["name"])
	assert.Equal(t, float64(1), infos[0]["command_panels"])
	assert.Equal(t, float64(1), infos[0]["utility_panels"])
}

func TestPipelinesEmpty(t *testing.T) {
	out, err := runCommand(t, "pipelines", t.TempDir(), "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No pipelines found.")
}

func TestPassesTable(t *testing.T) {
	projPath := writeProject(t, func(p *project.Project) {
		p.FrameEnd = 10
		p.Passes = []project.Pass{
			{Name: "Beauty", Enabled: true, Type: "BEAUTY"},
			{Name: "Shadow", Enabled: false, Type: "SHADOW", FrameStart: 1, FrameEnd: 10, FrameStep: 2},
		}
		p.Active = 1
	})

	out, err := runCommand(t, "passes", projPath, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Beauty")
	assert.Contains(t, out, "SHADOW")
	assert.Contains(t, out, "1..10/2")
	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, "*1")
	assert.Contains(t, out, "* active pass")
}

func TestPassesJSON(t *testing.T) {
	projPath := writeProject(t, nil)

	out, err := runCommand(t, "passes", projPath, "--format", "json")
	require.NoError(t, err)

	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Beauty Pass", infos[0]["name"])
	assert.Equal(t, true, infos[0]["active"])
	assert.Equal(t, true, infos[0]["enabled"])
}

func TestPassesRejectsUnknownFormat(t *testing.T) {
	projPath := writeProject(t, nil)

	_, err := runCommand(t, "passes", projPath, "--format", "xml")
	require.Error(t, err)
}
