// Package dit is the facade: it holds a repository handle, lazily
// constructs each manager, and exposes the high-level operations the CLI
// calls (spec.md §4.8).
package dit

import (
	"github.com/complexairport/dit/internal/branch"
	"github.com/complexairport/dit/internal/config"
	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/ignore"
	"github.com/complexairport/dit/internal/index"
	"github.com/complexairport/dit/internal/objects"
	"github.com/complexairport/dit/internal/repo"
	"github.com/complexairport/dit/internal/status"
)

// Dit coordinates manager lifetimes and is the single re-entrant entry
// point for CLI use (spec.md §4.8, §9 "Shared mutable managers": managers
// are passed explicitly between methods rather than wired with interior
// mutability).
type Dit struct {
	Repo    *repo.Repository
	Blobs   *objects.BlobStore
	Trees   *objects.TreeStore
	Commits *objects.CommitStore

	ignoreMgr *ignore.Filter
	indexMgr  *index.Manager
	branchMgr *branch.Manager
	cfg       *config.Config
}

// Open loads an existing repository and its object stores eagerly; the
// ignore/config/index/branch managers are constructed lazily on first
// access since their construction touches disk (spec.md §9, "Lazy manager
// construction... retained ... for the ignore/config/index managers").
func Open() (*Dit, error) {
	r, err := repo.Open()
	if err != nil {
		return nil, err
	}
	return &Dit{
		Repo:    r,
		Blobs:   objects.NewBlobStore(r),
		Trees:   objects.NewTreeStore(r),
		Commits: objects.NewCommitStore(r),
	}, nil
}

// Init creates a new repository rooted at path ("" for the working
// directory) and returns its facade.
func Init(path string) (*Dit, error) {
	r, err := repo.Init(path)
	if err != nil {
		return nil, err
	}
	d := &Dit{
		Repo:    r,
		Blobs:   objects.NewBlobStore(r),
		Trees:   objects.NewTreeStore(r),
		Commits: objects.NewCommitStore(r),
	}
	branchMgr, err := d.Branch()
	if err != nil {
		return nil, err
	}
	if err := branchMgr.EnsureDefaultBranch(); err != nil {
		return nil, err
	}
	return d, nil
}

// Ignore lazily loads the ignore filter.
func (d *Dit) Ignore() (*ignore.Filter, error) {
	if d.ignoreMgr == nil {
		f, err := ignore.Load(d.Repo)
		if err != nil {
			return nil, err
		}
		d.ignoreMgr = f
	}
	return d.ignoreMgr, nil
}

// Config lazily loads the config.
func (d *Dit) Config() (*config.Config, error) {
	if d.cfg == nil {
		c, err := config.Load(d.Repo)
		if err != nil {
			return nil, err
		}
		d.cfg = c
	}
	return d.cfg, nil
}

// Index lazily loads the staging index.
func (d *Dit) Index() (*index.Manager, error) {
	if d.indexMgr == nil {
		ign, err := d.Ignore()
		if err != nil {
			return nil, err
		}
		m, err := index.Load(d.Repo, d.Blobs, ign)
		if err != nil {
			return nil, err
		}
		d.indexMgr = m
	}
	return d.indexMgr, nil
}

// Branch lazily loads the branch/HEAD manager.
func (d *Dit) Branch() (*branch.Manager, error) {
	if d.branchMgr == nil {
		ign, err := d.Ignore()
		if err != nil {
			return nil, err
		}
		m, err := branch.Load(d.Repo, d.Blobs, d.Trees, d.Commits, ign)
		if err != nil {
			return nil, err
		}
		d.branchMgr = m
	}
	return d.branchMgr, nil
}

// HeadFiles returns the file map of the commit at HEAD.
func (d *Dit) HeadFiles() (map[string]objects.Entry, error) {
	b, err := d.Branch()
	if err != nil {
		return nil, err
	}
	return b.HeadFiles()
}

// AddFiles delegates to the index manager (spec.md §4.8).
func (d *Dit) AddFiles(paths []string) error {
	idx, err := d.Index()
	if err != nil {
		return err
	}
	return idx.AddFiles(paths)
}

// UnstageFiles delegates to the index manager.
func (d *Dit) UnstageFiles(paths []string) error {
	idx, err := d.Index()
	if err != nil {
		return err
	}
	head, err := d.HeadFiles()
	if err != nil {
		return err
	}
	return idx.UnstageFiles(paths, head)
}

// ClearStage empties the index.
func (d *Dit) ClearStage() error {
	idx, err := d.Index()
	if err != nil {
		return err
	}
	return idx.Clear()
}

// Status runs the full three-way diff.
func (d *Dit) Status() (*status.Report, error) {
	idx, err := d.Index()
	if err != nil {
		return nil, err
	}
	ign, err := d.Ignore()
	if err != nil {
		return nil, err
	}
	head, err := d.HeadFiles()
	if err != nil {
		return nil, err
	}
	eng := status.NewEngine(d.Repo, ign)
	return eng.FullStatus(head, idx.Files())
}

// Commit creates a tree from the index, creates a commit, and advances
// the current branch (or detached HEAD), per spec.md §4.8.
func (d *Dit) Commit(message, author string) (*objects.Commit, error) {
	if author == "" {
		cfg, err := d.Config()
		if err != nil {
			return nil, err
		}
		name, _ := cfg.Get("user.name")
		if name == "" {
			return nil, diterr.Wrap(diterr.KindConfig, "user.name", diterr.ErrConfigNotFound)
		}
		author = name
	}

	idx, err := d.Index()
	if err != nil {
		return nil, err
	}
	b, err := d.Branch()
	if err != nil {
		return nil, err
	}

	treeHash, err := d.Trees.CreateTree(idx.Files())
	if err != nil {
		return nil, err
	}

	commit, err := d.Commits.CreateCommit(author, message, treeHash, b.CurrentCommit())
	if err != nil {
		return nil, err
	}

	if err := b.SetHeadCommit(commit.Hash); err != nil {
		return nil, err
	}
	return commit, nil
}

// resetFiles resolves commit to its file map, returning the object store's
// error unchanged if the commit or its tree can't be read.
func (d *Dit) resetFiles(commitHash string) (map[string]objects.Entry, error) {
	commit, err := d.Commits.GetCommit(commitHash)
	if err != nil {
		return nil, err
	}
	tree, err := d.Trees.GetTree(commit.Tree)
	if err != nil {
		return nil, err
	}
	return tree.Index.Files, nil
}

// checkReachable enforces spec.md §7's unreachable-commit error for
// non-hard resets: the target must share ancestry with the current HEAD
// (either direction), so a soft/mixed reset can't silently jump to an
// unrelated line of history that a hard reset's full working-tree rewrite
// would make obvious.
func (d *Dit) checkReachable(commitHash string) error {
	b, err := d.Branch()
	if err != nil {
		return err
	}
	current := b.CurrentCommit()
	if current == "" || current == commitHash {
		return nil
	}
	if ok, err := d.Commits.IsAncestor(commitHash, current); err != nil {
		return err
	} else if ok {
		return nil
	}
	if ok, err := d.Commits.IsAncestor(current, commitHash); err != nil {
		return err
	} else if ok {
		return nil
	}
	return diterr.ErrCommitNotReachable
}

// SoftReset moves HEAD only (spec.md §9's explicit bugfix over the
// divergent source revisions: soft reset never touches the working tree
// or the index).
func (d *Dit) SoftReset(commitHash string) error {
	if err := d.checkReachable(commitHash); err != nil {
		return err
	}
	b, err := d.Branch()
	if err != nil {
		return err
	}
	return b.SetHeadCommit(commitHash)
}

// MixedReset moves HEAD and overlays the target tree onto the working
// tree, leaving unrelated files untouched (spec.md §4.8).
func (d *Dit) MixedReset(commitHash string) error {
	if err := d.checkReachable(commitHash); err != nil {
		return err
	}
	files, err := d.resetFiles(commitHash)
	if err != nil {
		return err
	}
	b, err := d.Branch()
	if err != nil {
		return err
	}
	if err := b.Overlay(files); err != nil {
		return err
	}
	if err := d.resyncIndex(files); err != nil {
		return err
	}
	return b.SetHeadCommit(commitHash)
}

// HardReset moves HEAD, clears the working tree (respecting ignore), and
// materializes the target tree (spec.md §4.8).
func (d *Dit) HardReset(commitHash string) error {
	files, err := d.resetFiles(commitHash)
	if err != nil {
		return err
	}
	b, err := d.Branch()
	if err != nil {
		return err
	}
	if err := b.Materialize(files); err != nil {
		return err
	}
	if err := d.resyncIndex(files); err != nil {
		return err
	}
	return b.SetHeadCommit(commitHash)
}

// resyncIndex rewrites the staging index to exactly match files, used
// after mixed/hard reset so the index and the new HEAD agree (a reset
// target's tree becomes the new staged state, matching git's own reset
// semantics and spec.md §8's "Tree reconstruction" property: hard_reset(C)
// followed by status returns an empty change set against C).
func (d *Dit) resyncIndex(files map[string]objects.Entry) error {
	idx, err := d.Index()
	if err != nil {
		return err
	}
	return idx.ReplaceAll(files)
}

// GetHistory follows the first-parent chain from HEAD, up to n commits
// (n < 0 means all), per spec.md §4.8.
func (d *Dit) GetHistory(n int) ([]*objects.Commit, error) {
	b, err := d.Branch()
	if err != nil {
		return nil, err
	}

	var out []*objects.Commit
	hash := b.CurrentCommit()
	for hash != "" && (n < 0 || len(out) < n) {
		commit, err := d.Commits.GetCommit(hash)
		if err != nil {
			return nil, err
		}
		out = append(out, commit)
		hash = commit.Parent()
	}
	return out, nil
}
