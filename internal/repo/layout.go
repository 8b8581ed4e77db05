// Package repo owns the on-disk layout of a dit repository: the absolute
// paths of every .dit subdirectory, idempotent initialization, and
// project-relative <-> absolute path resolution. It is shared read-only by
// every manager (spec.md §3, "Ownership").
package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/complexairport/dit/internal/diterr"
)

const (
	DitDir        = ".dit"
	BlobsDir      = "blobs"
	TreesDir      = "trees"
	CommitsDir    = "commits"
	BranchesDir   = "branches"
	IndexFile     = "index"
	HeadFile      = "head"
	ConfigFile    = "config"
	IgnoreFile    = ".ditignore"
)

// Repository resolves every path a manager needs and ensures the fixed
// layout from spec.md §4.1 exists.
type Repository struct {
	// Root is the project directory containing .dit.
	Root string
}

// FindRoot walks up from the current working directory looking for .dit.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", diterr.Wrap(diterr.KindFilesystem, "could not determine working directory", err)
	}
	return FindRootFrom(dir)
}

// FindRootFrom walks up from start looking for .dit.
func FindRootFrom(start string) (string, error) {
	dir := start
	for {
		info, err := os.Stat(filepath.Join(dir, DitDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", diterr.ErrNotInsideProject
		}
		dir = parent
	}
}

// Open resolves the Repository rooted at the ancestor of the working
// directory containing .dit.
func Open() (*Repository, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return &Repository{Root: root}, nil
}

// Init creates a repository rooted at path (current directory if empty).
// Idempotent per spec.md §4.1: each subdirectory/file is created only if
// missing, so re-running Init never destroys existing objects. Leftover
// ".tmp-*" files in blobs/ are removed.
func Init(path string) (*Repository, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, diterr.Wrap(diterr.KindFilesystem, "could not determine working directory", err)
		}
		path = wd
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, diterr.Wrap(diterr.KindFilesystem, "could not resolve absolute path", err)
		}
		path = abs
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return nil, diterr.ErrProjectPathNotADir
	}

	r := &Repository{Root: path}
	for _, dir := range []string{r.ditPath(), r.Blobs(), r.Trees(), r.Commits(), r.Branches()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, diterr.Wrap(diterr.KindProject, "failed to create repository subdirectory "+dir, err)
		}
	}

	for _, f := range []string{r.IndexPath(), r.HeadPath(), r.ConfigPath()} {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			if err := os.WriteFile(f, nil, 0o644); err != nil {
				return nil, diterr.Wrap(diterr.KindProject, "failed to create repository file "+f, err)
			}
		}
	}

	// Remove temp files an interrupted blob write left in blobs/.
	entries, err := os.ReadDir(r.Blobs())
	if err != nil {
		return nil, diterr.Wrap(diterr.KindProject, "failed to list "+r.Blobs(), err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), ".tmp-") {
			os.Remove(filepath.Join(r.Blobs(), e.Name()))
		}
	}

	return r, nil
}

func (r *Repository) ditPath() string { return filepath.Join(r.Root, DitDir) }

// Blobs returns the content-addressed blob store directory.
func (r *Repository) Blobs() string { return filepath.Join(r.ditPath(), BlobsDir) }

// Trees returns the tree object directory.
func (r *Repository) Trees() string { return filepath.Join(r.ditPath(), TreesDir) }

// Commits returns the commit object directory.
func (r *Repository) Commits() string { return filepath.Join(r.ditPath(), CommitsDir) }

// Branches returns the per-branch ref directory.
func (r *Repository) Branches() string { return filepath.Join(r.ditPath(), BranchesDir) }

// IndexPath returns the path of the serialized staging index.
func (r *Repository) IndexPath() string { return filepath.Join(r.ditPath(), IndexFile) }

// HeadPath returns the path of the HEAD reference file.
func (r *Repository) HeadPath() string { return filepath.Join(r.ditPath(), HeadFile) }

// ConfigPath returns the path of the config file.
func (r *Repository) ConfigPath() string { return filepath.Join(r.ditPath(), ConfigFile) }

// IgnorePath returns the path of the .ditignore file (outside .dit).
func (r *Repository) IgnorePath() string { return filepath.Join(r.Root, IgnoreFile) }

// BranchPath returns the ref file for a named branch.
func (r *Repository) BranchPath(name string) string { return filepath.Join(r.Branches(), name) }

// RelPath converts an absolute path to a slash-separated repo-relative path.
func (r *Repository) RelPath(abs string) (string, error) {
	rel, err := filepath.Rel(r.Root, abs)
	if err != nil {
		return "", diterr.Wrap(diterr.KindFilesystem, "could not compute relative path", err)
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "..") {
		return "", diterr.New(diterr.KindProject, "path "+abs+" is outside the repository")
	}
	return rel, nil
}

// AbsPath converts a slash-separated repo-relative path to an absolute path.
func (r *Repository) AbsPath(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// IsInsideRepo reports whether path (relative, slash-separated) lies inside
// the working tree and outside of .dit.
func IsInsideRepo(rel string) bool {
	if rel == DitDir || strings.HasPrefix(rel, DitDir+"/") {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}
