package objects

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dlog"
	"github.com/complexairport/dit/internal/repo"
)

// TreeStore persists and reads immutable tree snapshots (spec.md §4.3).
type TreeStore struct {
	repo *repo.Repository
}

// NewTreeStore returns a TreeStore rooted at repository r.
func NewTreeStore(r *repo.Repository) *TreeStore {
	return &TreeStore{repo: r}
}

// ComputeTreeHash hashes a FileMap's sorted (path, blob-hash) sequence.
// Sorting before hashing is what makes the tree hash independent of
// traversal order (spec.md §3, §8 "Hash determinism").
func ComputeTreeHash(files map[string]Entry) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := NewHasher()
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte(files[p].Hash))
	}
	return h.SumHex()
}

// CreateTree computes the tree hash of files and writes trees/<hash> if it
// doesn't already exist (spec.md §4.3: "A pre-existing tree file with the
// same hash is a no-op").
func (s *TreeStore) CreateTree(files map[string]Entry) (string, error) {
	hash := ComputeTreeHash(files)
	path := filepath.Join(s.repo.Trees(), hash)

	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	tree := Tree{Index: FileMap{Files: files}, Hash: hash}
	data, err := encodeJSON(tree)
	if err != nil {
		return "", diterr.Wrap(diterr.KindSerialization, "failed to serialize tree", err)
	}
	tmp := filepath.Join(s.repo.Trees(), tempName())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", diterr.Wrap(diterr.KindObjectStore, "failed to write tree "+hash, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", diterr.Wrap(diterr.KindObjectStore, "failed to rename tree "+hash+" into place", err)
	}

	dlog.Logger.Debug().Str("hash", hash).Int("files", len(files)).Msg("tree created")
	return hash, nil
}

// GetTree reads and deserializes trees/<hash>.
func (s *TreeStore) GetTree(hash string) (*Tree, error) {
	path := filepath.Join(s.repo.Trees(), hash)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diterr.Wrap(diterr.KindObjectStore, "failed to read tree "+hash, err)
	}

	var tree Tree
	if err := decodeJSON(data, &tree); err != nil {
		return nil, diterr.Wrap(diterr.KindSerialization, "failed to deserialize tree "+hash, err)
	}
	tree.Hash = hash
	return &tree, nil
}
