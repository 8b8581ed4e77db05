// Package branch implements named refs to commits, the current-branch/HEAD
// pointer, and the operations that move the working tree to match a target
// commit (spec.md §4.6).
package branch

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dlog"
	"github.com/complexairport/dit/internal/index"
	"github.com/complexairport/dit/internal/objects"
	"github.com/complexairport/dit/internal/repo"
	"github.com/complexairport/dit/internal/status"
	"github.com/oklog/ulid/v2"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IgnoreMatcher mirrors status.IgnoreMatcher.
type IgnoreMatcher = status.IgnoreMatcher

// Manager owns .dit/head and .dit/branches/*, and is the only component
// that rewrites the working tree (spec.md §2, "Branch mutation is the
// only operation that rewrites the working tree").
type Manager struct {
	repo   *repo.Repository
	blobs  *objects.BlobStore
	trees  *objects.TreeStore
	commits *objects.CommitStore
	ignore IgnoreMatcher

	// currentBranch is "" when detached or unset; currentCommit is ""
	// when no commit exists yet. Mirrors spec.md §4.6's in-memory state.
	currentBranch string
	currentCommit string
}

// Load reads .dit/head into the in-memory (current_branch, current_commit)
// pair (spec.md §4.6's HEAD encoding).
func Load(r *repo.Repository, blobs *objects.BlobStore, trees *objects.TreeStore, commits *objects.CommitStore, ignore IgnoreMatcher) (*Manager, error) {
	m := &Manager{repo: r, blobs: blobs, trees: trees, commits: commits, ignore: ignore}

	data, err := os.ReadFile(r.HeadPath())
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, diterr.Wrap(diterr.KindFilesystem, "failed to read HEAD", err)
	}

	head := strings.TrimSpace(string(data))
	switch {
	case head == "":
		// no branch, no commit
	case strings.HasPrefix(head, ":"):
		m.currentCommit = head[1:]
	default:
		m.currentBranch = head
		commit, err := m.readBranchFile(head)
		if err != nil {
			return nil, err
		}
		m.currentCommit = commit
	}
	return m, nil
}

func (m *Manager) readBranchFile(name string) (string, error) {
	data, err := os.ReadFile(m.repo.BranchPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", diterr.ErrBranchDoesNotExist
		}
		return "", diterr.Wrap(diterr.KindFilesystem, "failed to read branch "+name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp-" + ulid.Make().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to write "+path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return diterr.Wrap(diterr.KindFilesystem, "failed to rename into "+path, err)
	}
	return nil
}

func (m *Manager) writeHead() error {
	var content string
	switch {
	case m.currentBranch != "":
		content = m.currentBranch
	case m.currentCommit != "":
		content = ":" + m.currentCommit
	default:
		content = ""
	}
	return atomicWrite(m.repo.HeadPath(), []byte(content))
}

func (m *Manager) writeBranch(name, commit string) error {
	return atomicWrite(m.repo.BranchPath(name), []byte(commit))
}

// CurrentBranch returns the attached branch name, or "" if detached/unset.
func (m *Manager) CurrentBranch() string { return m.currentBranch }

// CurrentCommit returns the current HEAD commit hash, or "" if none.
func (m *Manager) CurrentCommit() string { return m.currentCommit }

// SetHeadCommit moves HEAD to commit without touching the working tree,
// advancing the attached branch's ref file if one is attached (used by
// Commit and SoftReset/MixedReset/HardReset in the facade).
func (m *Manager) SetHeadCommit(commit string) error {
	m.currentCommit = commit
	if m.currentBranch != "" {
		if err := m.writeBranch(m.currentBranch, commit); err != nil {
			return err
		}
	}
	return m.writeHead()
}

// EnsureDefaultBranch creates and attaches to "main" if HEAD is entirely
// unset (spec.md §4.6, "Initial branch policy").
func (m *Manager) EnsureDefaultBranch() error {
	if m.currentBranch != "" || m.currentCommit != "" {
		return nil
	}
	if _, err := os.Stat(m.repo.BranchPath("main")); err == nil {
		m.currentBranch = "main"
		return m.writeHead()
	}
	if err := m.CreateBranch("main"); err != nil {
		return err
	}
	m.currentBranch = "main"
	return m.writeHead()
}

// CreateBranch validates name and creates branches/<name>, initialized to
// the current commit hash (or empty), per spec.md §4.6.
func (m *Manager) CreateBranch(name string) error {
	if !nameRe.MatchString(name) {
		return diterr.ErrInvalidBranchName
	}
	if _, err := os.Stat(m.repo.BranchPath(name)); err == nil {
		return diterr.ErrBranchAlreadyExists
	}
	dlog.Logger.Debug().Str("branch", name).Msg("branch created")
	return m.writeBranch(name, m.currentCommit)
}

// RemoveBranch deletes branches/<name>; forbidden for the checked-out
// branch (spec.md §4.6).
func (m *Manager) RemoveBranch(name string) error {
	if name == m.currentBranch {
		return diterr.ErrCannotRemoveCurrent
	}
	path := m.repo.BranchPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return diterr.ErrBranchDoesNotExist
	}
	if err := os.Remove(path); err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to remove branch "+name, err)
	}
	return nil
}

// ListBranches returns every branch name in the order os.ReadDir lists
// the branch files, which is sorted by file name.
func (m *Manager) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(m.repo.Branches())
	if err != nil {
		return nil, diterr.Wrap(diterr.KindFilesystem, "failed to list branches", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// HeadFiles returns the file map of the commit currently at HEAD, or an
// empty map if HEAD names no commit.
func (m *Manager) HeadFiles() (map[string]objects.Entry, error) {
	if m.currentCommit == "" {
		return map[string]objects.Entry{}, nil
	}
	commit, err := m.commits.GetCommit(m.currentCommit)
	if err != nil {
		return nil, err
	}
	tree, err := m.trees.GetTree(commit.Tree)
	if err != nil {
		return nil, err
	}
	return tree.Index.Files, nil
}

// SwitchBranch implements spec.md §4.6's switch_branch operation.
func (m *Manager) SwitchBranch(name string, hard bool, idx *index.Manager) error {
	targetCommit, err := m.readBranchFile(name)
	if err != nil {
		return err
	}

	if !hard {
		headFiles, err := m.HeadFiles()
		if err != nil {
			return err
		}
		tracked := idx.GetAllTrackedChanges(headFiles)
		if len(tracked) > 0 {
			return diterr.ErrCannotSwitchBranches
		}
	} else {
		if err := idx.Clear(); err != nil {
			return err
		}
	}

	targetFiles := map[string]objects.Entry{}
	if targetCommit != "" {
		commit, err := m.commits.GetCommit(targetCommit)
		if err != nil {
			return err
		}
		tree, err := m.trees.GetTree(commit.Tree)
		if err != nil {
			return err
		}
		targetFiles = tree.Index.Files
	}

	if err := m.materialize(targetFiles); err != nil {
		return err
	}

	m.currentBranch = name
	m.currentCommit = targetCommit
	return m.writeHead()
}

// materialize clears every non-ignored working-tree file, then recovers
// every blob in files to its path, in parallel (spec.md §4.6 steps 3-4).
func (m *Manager) materialize(files map[string]objects.Entry) error {
	if err := m.clearWorkingTree(); err != nil {
		return err
	}

	tasks := make([]objects.RecoverTask, 0, len(files))
	for relPath, entry := range files {
		tasks = append(tasks, objects.RecoverTask{
			Hash: entry.Hash,
			Dest: m.repo.AbsPath(relPath),
		})
	}
	if err := m.blobs.RecoverBlobs(tasks); err != nil {
		return err
	}

	for relPath, entry := range files {
		abs := m.repo.AbsPath(relPath)
		if err := os.Chtimes(abs, entry.Fingerprint.ModifiedAt, entry.Fingerprint.ModifiedAt); err != nil {
			dlog.Logger.Warn().Err(err).Str("path", relPath).Msg("failed to restore fingerprint mtime")
		}
	}
	return nil
}

// clearWorkingTree removes every file not matched by the ignore filter,
// then removes directories left empty, bottom-up (spec.md §4.6 step 3).
func (m *Manager) clearWorkingTree() error {
	var files []string
	err := m.ignore.WalkFiles(m.repo.Root, func(relPath string) error {
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return err
	}

	for _, relPath := range files {
		if err := os.Remove(m.repo.AbsPath(relPath)); err != nil && !os.IsNotExist(err) {
			return diterr.Wrap(diterr.KindFilesystem, "failed to remove "+relPath, err)
		}
	}

	return m.pruneEmptyDirs(m.repo.Root)
}

// pruneEmptyDirs removes directories left empty after file removal,
// bottom-up, skipping .dit and anything the ignore filter protects.
func (m *Manager) pruneEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to list "+root, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		abs := filepath.Join(root, e.Name())
		rel, relErr := m.repo.RelPath(abs)
		if relErr != nil {
			continue
		}
		if !repo.IsInsideRepo(rel) {
			continue
		}
		if m.ignore.IsIgnored(rel, true) {
			continue
		}
		if err := m.pruneEmptyDirs(abs); err != nil {
			return err
		}
		remaining, err := os.ReadDir(abs)
		if err != nil {
			return diterr.Wrap(diterr.KindFilesystem, "failed to list "+abs, err)
		}
		if len(remaining) == 0 {
			if err := os.Remove(abs); err != nil {
				return diterr.Wrap(diterr.KindFilesystem, "failed to remove empty directory "+abs, err)
			}
		}
	}
	return nil
}

// Materialize is the exported entry point the facade uses for hard reset,
// which moves the working tree without switching branches.
func (m *Manager) Materialize(files map[string]objects.Entry) error {
	return m.materialize(files)
}

// Overlay writes every file in files onto the working tree without first
// clearing it (spec.md §4.8, "Mixed: ... overlay the target tree's files
// onto the working tree").
func (m *Manager) Overlay(files map[string]objects.Entry) error {
	tasks := make([]objects.RecoverTask, 0, len(files))
	for relPath, entry := range files {
		tasks = append(tasks, objects.RecoverTask{
			Hash: entry.Hash,
			Dest: m.repo.AbsPath(relPath),
		})
	}
	return m.blobs.RecoverBlobs(tasks)
}

// MergeTo fast-forwards the current branch to branch's head if reachable
// (spec.md §4.6's merge_to).
func (m *Manager) MergeTo(branchName string) error {
	if m.currentBranch == "" {
		return diterr.ErrMergeNotSupported
	}
	targetCommit, err := m.readBranchFile(branchName)
	if err != nil {
		return err
	}
	if targetCommit == "" || targetCommit == m.currentCommit {
		return nil
	}
	if m.currentCommit == "" {
		return m.SetHeadCommit(targetCommit)
	}

	isAncestor, err := m.commits.IsAncestor(m.currentCommit, targetCommit)
	if err != nil {
		return err
	}
	if !isAncestor {
		return diterr.ErrMergeNotSupported
	}
	return m.SetHeadCommit(targetCommit)
}
