package branch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/ignore"
	"github.com/complexairport/dit/internal/index"
	"github.com/complexairport/dit/internal/objects"
	"github.com/complexairport/dit/internal/repo"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo    *repo.Repository
	blobs   *objects.BlobStore
	trees   *objects.TreeStore
	commits *objects.CommitStore
	ignore  *ignore.Filter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	ign, err := ignore.Load(r)
	require.NoError(t, err)
	return fixture{
		repo:    r,
		blobs:   objects.NewBlobStore(r),
		trees:   objects.NewTreeStore(r),
		commits: objects.NewCommitStore(r),
		ignore:  ign,
	}
}

func (fx fixture) loadBranch(t *testing.T) *Manager {
	t.Helper()
	m, err := Load(fx.repo, fx.blobs, fx.trees, fx.commits, fx.ignore)
	require.NoError(t, err)
	return m
}

func (fx fixture) loadIndex(t *testing.T) *index.Manager {
	t.Helper()
	m, err := index.Load(fx.repo, fx.blobs, fx.ignore)
	require.NoError(t, err)
	return m
}

func TestEnsureDefaultBranchCreatesMain(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)

	require.NoError(t, m.EnsureDefaultBranch())
	require.Equal(t, "main", m.CurrentBranch())

	branches, err := m.ListBranches()
	require.NoError(t, err)
	require.Contains(t, branches, "main")
}

func TestCreateBranchRejectsInvalidNameAndDuplicate(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())

	require.ErrorIs(t, m.CreateBranch("bad name"), diterr.ErrInvalidBranchName)

	require.NoError(t, m.CreateBranch("feature"))
	require.ErrorIs(t, m.CreateBranch("feature"), diterr.ErrBranchAlreadyExists)
}

func TestRemoveBranchForbidsCurrent(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())
	require.NoError(t, m.CreateBranch("feature"))

	require.ErrorIs(t, m.RemoveBranch("main"), diterr.ErrCannotRemoveCurrent)
	require.NoError(t, m.RemoveBranch("feature"))

	require.ErrorIs(t, m.RemoveBranch("feature"), diterr.ErrBranchDoesNotExist)
}

func TestHeadEncodingRoundTrip(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())

	commit, err := fx.commits.CreateCommit("Alice", "init", "treehash", "")
	require.NoError(t, err)
	require.NoError(t, m.SetHeadCommit(commit.Hash))

	data, err := os.ReadFile(fx.repo.HeadPath())
	require.NoError(t, err)
	require.Equal(t, "main", string(data))

	reloaded := fx.loadBranch(t)
	require.Equal(t, "main", reloaded.CurrentBranch())
	require.Equal(t, commit.Hash, reloaded.CurrentCommit())
}

func TestSwitchBranchFailsWithDirtyIndex(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())
	require.NoError(t, m.CreateBranch("feature"))

	idx := fx.loadIndex(t)
	require.NoError(t, os.WriteFile(filepath.Join(fx.repo.Root, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, idx.AddFiles([]string{"a.txt"}))

	require.ErrorIs(t, m.SwitchBranch("feature", false, idx), diterr.ErrCannotSwitchBranches)
	// HEAD must not have moved.
	require.Equal(t, "main", m.CurrentBranch())
}

func TestSwitchBranchMaterializesThenUpdatesHead(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())

	// A branch created with no commits yet (before HEAD has one) starts
	// empty, independent of whatever main later acquires.
	require.NoError(t, m.CreateBranch("empty"))

	idx := fx.loadIndex(t)
	mainFile := filepath.Join(fx.repo.Root, "main-only.txt")
	require.NoError(t, os.WriteFile(mainFile, []byte("main content\n"), 0o644))
	require.NoError(t, idx.AddFiles([]string{"main-only.txt"}))
	treeHash, err := fx.trees.CreateTree(idx.Files())
	require.NoError(t, err)
	commit, err := fx.commits.CreateCommit("Alice", "main commit", treeHash, "")
	require.NoError(t, err)
	require.NoError(t, m.SetHeadCommit(commit.Hash))

	// A branch created after the commit inherits HEAD's commit, so its
	// working tree is not empty (spec.md §4.6: new branches start at the
	// current commit).
	require.NoError(t, m.CreateBranch("feature"))
	require.NoError(t, m.SwitchBranch("feature", false, idx))
	_, err = os.Stat(mainFile)
	require.NoError(t, err, "feature was branched from main's commit, so main-only.txt must still materialize")
	require.Equal(t, "feature", m.CurrentBranch())
	require.Equal(t, commit.Hash, m.CurrentCommit())

	// Switching to the branch created before any commit existed must
	// clear the working tree, and only update HEAD after that succeeds.
	require.NoError(t, m.SwitchBranch("empty", false, idx))
	_, err = os.Stat(mainFile)
	require.True(t, os.IsNotExist(err))
	require.Equal(t, "empty", m.CurrentBranch())
	require.Equal(t, "", m.CurrentCommit())
}

func TestMergeToFastForwardOnly(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())

	root, err := fx.commits.CreateCommit("Alice", "root", "t1", "")
	require.NoError(t, err)
	require.NoError(t, m.SetHeadCommit(root.Hash))
	require.NoError(t, m.CreateBranch("feature"))

	ahead, err := fx.commits.CreateCommit("Alice", "ahead", "t2", root.Hash)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fx.repo.BranchPath("feature"), []byte(ahead.Hash), 0o644))

	reloaded := fx.loadBranch(t)
	require.NoError(t, reloaded.MergeTo("feature"))
	require.Equal(t, ahead.Hash, reloaded.CurrentCommit())
}

func TestMergeToRejectsDivergentHistory(t *testing.T) {
	fx := newFixture(t)
	m := fx.loadBranch(t)
	require.NoError(t, m.EnsureDefaultBranch())

	// feature is checked out below, so its commit needs a readable tree.
	emptyTree, err := fx.trees.CreateTree(map[string]objects.Entry{})
	require.NoError(t, err)
	root, err := fx.commits.CreateCommit("Alice", "root", emptyTree, "")
	require.NoError(t, err)
	require.NoError(t, m.SetHeadCommit(root.Hash))
	require.NoError(t, m.CreateBranch("feature"))

	mainSide, err := fx.commits.CreateCommit("Alice", "main-side", "t2", root.Hash)
	require.NoError(t, err)
	require.NoError(t, m.SetHeadCommit(mainSide.Hash))

	featureBranch := fx.loadBranch(t)
	require.NoError(t, featureBranch.SwitchBranch("feature", true, fx.loadIndex(t)))
	featureSide, err := fx.commits.CreateCommit("Alice", "feature-side", "t3", root.Hash)
	require.NoError(t, err)
	require.NoError(t, featureBranch.SetHeadCommit(featureSide.Hash))

	require.ErrorIs(t, featureBranch.MergeTo("main"), diterr.ErrMergeNotSupported)
}
