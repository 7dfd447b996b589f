package provision_test

// TEST TYPE: Integration Test
// DEPENDENCIES: Filesystem (temp dirs)
// PURPOSE: Verify export-tree planning and application: creation,
// clean, purge, and purged-bucket recreation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/paths"
	"github.com/arthur-debert/ribforge/pkg/provision"
	"github.com/arthur-debert/ribforge/pkg/testutil"
)

func provisioned(t *testing.T, root string) paths.Tree {
	t.Helper()
	tree := paths.NewTree(root)
	ops, err := provision.Plan(tree, nil, nil)
	require.NoError(t, err)
	require.NoError(t, provision.Apply(context.Background(), ops))
	return tree
}

func kinds(ops []provision.Op) []provision.OpKind {
	out := make([]provision.OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func TestPlanCreatesMissingTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "renders", "exports")
	tree := paths.NewTree(root)

	ops, err := provision.Plan(tree, nil, nil)
	require.NoError(t, err)

	// One create for the missing ancestor plus one per bucket.
	require.Len(t, ops, len(paths.Keys())+1)
	for _, op := range ops {
		assert.Equal(t, provision.OpCreateDir, op.Kind)
	}
	assert.Equal(t, filepath.Dir(root), ops[0].Path)
	assert.Equal(t, root, ops[1].Path)

	require.NoError(t, provision.Apply(context.Background(), ops))
	for _, dir := range tree.All() {
		assert.True(t, testutil.DirExists(t, dir))
	}
}

func TestPlanIsReadOnly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	tree := provisioned(t, root)
	cache, _ := tree.Bucket(paths.KeyCache)
	stale := testutil.CreateFile(t, cache, "stale.rib", "x")

	ops, err := provision.Plan(tree, nil, []string{paths.KeyCache})
	require.NoError(t, err)
	require.NotEmpty(t, ops)

	testutil.AssertFileContent(t, stale, "x")
}

func TestPlanOnProvisionedTreeIsEmpty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	tree := provisioned(t, root)

	ops, err := provision.Plan(tree, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestCleanDeletesDirectFilesOnly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	tree := provisioned(t, root)
	testutil.CreateFile(t, root, "START.sh.bat", "old launcher")
	junk := testutil.CreateDir(t, root, "junk")
	kept := testutil.CreateFile(t, junk, "keep.txt", "kept")

	ops, err := provision.Plan(tree, []string{paths.KeyDir}, nil)
	require.NoError(t, err)
	assert.NotContains(t, kinds(ops), provision.OpDeleteTree)

	require.NoError(t, provision.Apply(context.Background(), ops))
	testutil.AssertNoFile(t, filepath.Join(root, "START.sh.bat"))
	testutil.AssertFileContent(t, kept, "kept")

	// Bucket directories inside the root survive a clean.
	archives, _ := tree.Bucket(paths.KeyFrames)
	assert.True(t, testutil.DirExists(t, archives))
}

func TestPurgeRemovesSubtrees(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	tree := provisioned(t, root)
	cache, _ := tree.Bucket(paths.KeyCache)
	testutil.CreateFile(t, cache, "geometry.rib", "x")
	nested := testutil.CreateDir(t, cache, "session-1")
	testutil.CreateFile(t, nested, "a.rib", "x")

	ops, err := provision.Plan(tree, nil, []string{paths.KeyCache})
	require.NoError(t, err)
	require.NoError(t, provision.Apply(context.Background(), ops))

	assert.True(t, testutil.DirExists(t, cache))
	assert.Empty(t, testutil.ListNames(t, cache))
}

func TestPurgedRootBucketsAreRecreated(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	tree := provisioned(t, root)
	archives, _ := tree.Bucket(paths.KeyFrames)
	testutil.CreateFile(t, archives, "P00001_F00001.rib", "x")

	ops, err := provision.Plan(tree, nil, []string{paths.KeyDir})
	require.NoError(t, err)

	// The purge removes every subtree of the root; the nested buckets
	// come back as creates later in the plan.
	assert.Contains(t, kinds(ops), provision.OpDeleteTree)
	assert.Contains(t, kinds(ops), provision.OpCreateDir)

	require.NoError(t, provision.Apply(context.Background(), ops))
	for _, dir := range tree.All() {
		assert.True(t, testutil.DirExists(t, dir))
	}
	testutil.AssertNoFile(t, filepath.Join(archives, "P00001_F00001.rib"))
}

func TestPlanRejectsUnknownKey(t *testing.T) {
	tree := paths.NewTree(t.TempDir())

	_, err := provision.Plan(tree, []string{"WAT"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProvision))
}

func TestApplyHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	doomed := testutil.CreateDir(t, dir, "doomed")
	testutil.CreateFile(t, doomed, "a.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := provision.Apply(ctx, []provision.Op{{Kind: provision.OpDeleteTree, Path: doomed}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProvision))
	assert.True(t, testutil.DirExists(t, doomed))
}
