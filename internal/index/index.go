// Package index implements the mutable staging area: add/unstage/clear,
// and the change-set queries the status engine's tables are built from
// (spec.md §4.5).
package index

import (
	"os"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/objects"
	"github.com/complexairport/dit/internal/repo"
	"github.com/complexairport/dit/internal/status"
	"github.com/oklog/ulid/v2"
)

// IgnoreMatcher is an alias of status.IgnoreMatcher, so callers of this
// package can name the type without importing status themselves.
type IgnoreMatcher = status.IgnoreMatcher

// Manager owns .dit/index: the in-memory Index plus its serialized mirror
// (spec.md §4.5).
type Manager struct {
	repo   *repo.Repository
	blobs  *objects.BlobStore
	ignore IgnoreMatcher
	files  map[string]objects.Entry
}

// Load reads .dit/index (an empty FileMap if the file is empty) and
// returns a Manager ready for mutation.
func Load(r *repo.Repository, blobs *objects.BlobStore, ignore IgnoreMatcher) (*Manager, error) {
	files, err := readIndexFile(r)
	if err != nil {
		return nil, err
	}
	return &Manager{repo: r, blobs: blobs, ignore: ignore, files: files}, nil
}

func readIndexFile(r *repo.Repository) (map[string]objects.Entry, error) {
	data, err := os.ReadFile(r.IndexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]objects.Entry{}, nil
		}
		return nil, diterr.Wrap(diterr.KindFilesystem, "failed to read index", err)
	}
	if len(data) == 0 {
		return map[string]objects.Entry{}, nil
	}

	var fm objects.FileMap
	if err := objects.DecodeJSON(data, &fm); err != nil {
		return nil, diterr.Wrap(diterr.KindSerialization, "malformed index file", err)
	}
	if fm.Files == nil {
		fm.Files = map[string]objects.Entry{}
	}
	return fm.Files, nil
}

// Files returns the current in-memory staged entries, keyed by
// repo-relative path. Callers must not mutate the returned map.
func (m *Manager) Files() map[string]objects.Entry {
	return m.files
}

// save performs the full-file rewrite every mutating call ends with
// (spec.md §4.5: "every mutating operation ends with a full rewrite of
// the index file via temp-file + rename"), reusing the atomic-write
// pattern established by the object store.
func (m *Manager) save() error {
	fm := objects.FileMap{Files: m.files}
	data, err := objects.EncodeJSON(fm)
	if err != nil {
		return diterr.Wrap(diterr.KindSerialization, "failed to serialize index", err)
	}

	tmp := m.repo.IndexPath() + ".tmp-" + ulid.Make().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to write index temp file", err)
	}
	if err := os.Rename(tmp, m.repo.IndexPath()); err != nil {
		os.Remove(tmp)
		return diterr.Wrap(diterr.KindFilesystem, "failed to rename index into place", err)
	}
	return nil
}

// AddFiles stages each path: creates a blob and an entry for New/Modified
// paths, removes the entry for Deleted paths (spec.md §4.5).
func (m *Manager) AddFiles(paths []string) error {
	for _, p := range paths {
		if err := m.addOne(p); err != nil {
			return err
		}
	}
	return m.save()
}

func (m *Manager) addOne(relPath string) error {
	var existing *objects.Entry
	if e, ok := m.files[relPath]; ok {
		existing = &e
	}

	abs := m.repo.AbsPath(relPath)
	w, err := status.Stat(abs, existing)
	if err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to stat "+relPath, err)
	}
	change := status.ClassifyUntracked(w, existing)

	switch change.Kind {
	case status.UntrackedNone, status.UntrackedUnchanged:
		if w.Present {
			m.files[relPath] = objects.Entry{Hash: w.Hash, Fingerprint: w.Fingerprint}
		}
		return nil
	case status.UntrackedDeleted:
		delete(m.files, relPath)
		return nil
	case status.UntrackedNew, status.UntrackedModified:
		hash, err := m.blobs.CreateBlob(abs)
		if err != nil {
			return err
		}
		m.files[relPath] = objects.Entry{Hash: hash, Fingerprint: w.Fingerprint}
		return nil
	default:
		return nil
	}
}

// UnstageFiles reverts each path's index entry to match the HEAD tree
// (removing it if absent from HEAD), per spec.md §4.5.
func (m *Manager) UnstageFiles(paths []string, headFiles map[string]objects.Entry) error {
	for _, p := range paths {
		if entry, ok := headFiles[p]; ok {
			m.files[p] = entry
		} else {
			delete(m.files, p)
		}
	}
	return m.save()
}

// UnstageAll unstages every path with a tracked change relative to HEAD.
func (m *Manager) UnstageAll(headFiles map[string]objects.Entry) error {
	tracked := m.trackedChanges(headFiles)
	paths := make([]string, 0, len(tracked))
	for p := range tracked {
		paths = append(paths, p)
	}
	return m.UnstageFiles(paths, headFiles)
}

// Clear empties the index entirely (used by hard branch switch, spec.md
// §4.6: "If hard = true, clears the index first").
func (m *Manager) Clear() error {
	m.files = map[string]objects.Entry{}
	return m.save()
}

// ReplaceAll overwrites the staged entries with files and persists the
// result, used by the facade's mixed/hard reset to resync the index to a
// reset target's tree (spec.md §8, "Tree reconstruction").
func (m *Manager) ReplaceAll(files map[string]objects.Entry) error {
	copied := make(map[string]objects.Entry, len(files))
	for p, e := range files {
		copied[p] = e
	}
	m.files = copied
	return m.save()
}

func (m *Manager) trackedChanges(headFiles map[string]objects.Entry) map[string]status.TrackedChange {
	eng := &status.Engine{}
	return eng.TrackedChanges(headFiles, m.files)
}

// GetAllTrackedChanges compares the index against the HEAD tree.
func (m *Manager) GetAllTrackedChanges(headFiles map[string]objects.Entry) map[string]status.TrackedChange {
	return m.trackedChanges(headFiles)
}

// GetAllUntrackedChanges walks the working tree via the ignore filter and
// compares it to the index (spec.md §4.5/§4.7).
func (m *Manager) GetAllUntrackedChanges() (map[string]status.UntrackedChange, error) {
	eng := status.NewEngine(m.repo, m.ignore)
	return eng.UntrackedChanges(m.files)
}

// IdentifyChanges returns the (untracked, tracked) classification of a
// single path (spec.md §4.5).
func (m *Manager) IdentifyChanges(relPath string, headFiles map[string]objects.Entry) (status.UntrackedChange, status.TrackedChange, error) {
	var index *objects.Entry
	if e, ok := m.files[relPath]; ok {
		index = &e
	}
	var head *objects.Entry
	if e, ok := headFiles[relPath]; ok {
		head = &e
	}

	w, err := status.Stat(m.repo.AbsPath(relPath), index)
	if err != nil {
		return status.UntrackedChange{}, status.TrackedChange{}, diterr.Wrap(diterr.KindFilesystem, "failed to stat "+relPath, err)
	}

	return status.ClassifyUntracked(w, index), status.ClassifyTracked(head, index), nil
}

// Has reports whether relPath has a staged entry.
func (m *Manager) Has(relPath string) bool {
	_, ok := m.files[relPath]
	return ok
}
