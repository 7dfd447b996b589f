package paths

// TEST TYPE: Unit Test
// DEPENDENCIES: None (pure logic)
// PURPOSE: Verify bucket key to directory mapping and tree layout

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTreeBucket(t *testing.T) {
	tree := NewTree("/tmp/export")

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"dir_is_root", KeyDir, "/tmp/export"},
		{"frames", KeyFrames, "/tmp/export/Archives"},
		{"worlds", KeyWorlds, "/tmp/export/Archives/Worlds"},
		{"lights", KeyLights, "/tmp/export/Archives/Lights"},
		{"objects", KeyObjects, "/tmp/export/Archives/Objects"},
		{"geometry", KeyGeometry, "/tmp/export/Archives/Objects/Geometry"},
		{"materials", KeyMaterials, "/tmp/export/Archives/Objects/Materials"},
		{"maps", KeyMaps, "/tmp/export/Maps"},
		{"shaders", KeyShaders, "/tmp/export/Shaders"},
		{"textures", KeyTextures, "/tmp/export/Textures"},
		{"renders", KeyRenders, "/tmp/export/Renders"},
		{"cache", KeyCache, "/tmp/export/Cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tree.Bucket(tt.key)
			assert.True(t, ok)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}

	_, ok := tree.Bucket("NOPE")
	assert.False(t, ok)
}

func TestKeysParentFirst(t *testing.T) {
	tree := NewTree("/tmp/export")
	seen := make(map[string]bool)
	for _, dir := range tree.All() {
		parent := filepath.Dir(dir)
		if parent != dir && strings.HasPrefix(parent, tree.Root()) {
			assert.True(t, seen[parent], "parent %s must be listed before %s", parent, dir)
		}
		seen[dir] = true
	}
	assert.Len(t, tree.All(), len(Keys()))
}

func TestValidKey(t *testing.T) {
	for _, key := range Keys() {
		assert.True(t, ValidKey(key))
	}
	assert.False(t, ValidKey("XYZ"))
	assert.False(t, ValidKey(""))
}

func TestShaderDirAndLauncher(t *testing.T) {
	tree := NewTree("/tmp/export")
	assert.Equal(t, filepath.FromSlash("/tmp/export/Shaders/aqsis"), tree.ShaderDir("aqsis"))
	assert.Equal(t, filepath.FromSlash("/tmp/export/START.sh.bat"), tree.Launcher("START.sh.bat"))
}
