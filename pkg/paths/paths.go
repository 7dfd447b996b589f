// Package paths holds the output-tree path math. The export tree has a
// fixed shape below a resolved root directory; each subdirectory is
// addressed by a short bucket key so that clean/purge policies and
// archive targets can name directories without carrying paths around.
// No I/O happens here.
package paths

import "path/filepath"

// Bucket keys addressing the fixed export subdirectories.
const (
	KeyDir       = "DIR" // the export root itself
	KeyFrames    = "FRA" // Archives
	KeyWorlds    = "WLD" // Archives/Worlds
	KeyLights    = "LAM" // Archives/Lights
	KeyObjects   = "OBJ" // Archives/Objects
	KeyGeometry  = "GEO" // Archives/Objects/Geometry
	KeyMaterials = "MAT" // Archives/Objects/Materials
	KeyMaps      = "MAP" // Maps
	KeyShaders   = "SHD" // Shaders
	KeyTextures  = "TEX" // Textures
	KeyRenders   = "RND" // Renders
	KeyCache     = "TMP" // Cache
)

// keyOrder is parent-first so directory creation can walk it directly.
var keyOrder = []string{
	KeyDir,
	KeyFrames,
	KeyWorlds,
	KeyLights,
	KeyObjects,
	KeyGeometry,
	KeyMaterials,
	KeyMaps,
	KeyShaders,
	KeyTextures,
	KeyRenders,
	KeyCache,
}

var subpaths = map[string]string{
	KeyDir:       "",
	KeyFrames:    "Archives",
	KeyWorlds:    filepath.Join("Archives", "Worlds"),
	KeyLights:    filepath.Join("Archives", "Lights"),
	KeyObjects:   filepath.Join("Archives", "Objects"),
	KeyGeometry:  filepath.Join("Archives", "Objects", "Geometry"),
	KeyMaterials: filepath.Join("Archives", "Objects", "Materials"),
	KeyMaps:      "Maps",
	KeyShaders:   "Shaders",
	KeyTextures:  "Textures",
	KeyRenders:   "Renders",
	KeyCache:     "Cache",
}

// Keys returns every bucket key, parent-first
func Keys() []string {
	keys := make([]string, len(keyOrder))
	copy(keys, keyOrder)
	return keys
}

// ValidKey reports whether key names a bucket
func ValidKey(key string) bool {
	_, ok := subpaths[key]
	return ok
}

// Tree is the export tree rooted at a resolved absolute directory
type Tree struct {
	root string
}

// NewTree returns a tree rooted at root
func NewTree(root string) Tree {
	return Tree{root: root}
}

// Root returns the export root directory
func (t Tree) Root() string {
	return t.root
}

// Bucket returns the absolute directory for a bucket key, false when
// the key is unknown
func (t Tree) Bucket(key string) (string, bool) {
	sub, ok := subpaths[key]
	if !ok {
		return "", false
	}
	if sub == "" {
		return t.root, true
	}
	return filepath.Join(t.root, sub), true
}

// ShaderDir returns the per-pipeline shader output directory
func (t Tree) ShaderDir(pipeline string) string {
	return filepath.Join(t.root, subpaths[KeyShaders], pipeline)
}

// Launcher returns the aggregate launcher script path at the tree root
func (t Tree) Launcher(name string) string {
	return filepath.Join(t.root, name)
}

// All returns every bucket directory, parent-first
func (t Tree) All() []string {
	dirs := make([]string, 0, len(keyOrder))
	for _, key := range keyOrder {
		dir, _ := t.Bucket(key)
		dirs = append(dirs, dir)
	}
	return dirs
}
