package objects

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dlog"
	"github.com/complexairport/dit/internal/repo"
)

// CommitStore persists and reads immutable commits and answers ancestry
// queries (spec.md §4.4).
type CommitStore struct {
	repo *repo.Repository
}

// NewCommitStore returns a CommitStore rooted at repository r.
func NewCommitStore(r *repo.Repository) *CommitStore {
	return &CommitStore{repo: r}
}

// computeCommitHash implements spec.md §3's invariant:
// hash = H(author ‖ message ‖ timestamp_le ‖ tree_hash ‖ parent_bytes_or_0)
func computeCommitHash(author, message string, timestamp int64, tree, parent string) string {
	h := NewHasher()
	h.Write([]byte(author))
	h.Write([]byte(message))
	var tsBuf [8]byte
	binary.LittleEndian.PutUint64(tsBuf[:], uint64(timestamp))
	h.Write(tsBuf[:])
	h.Write([]byte(tree))
	if parent == "" {
		h.Write([]byte{0x00})
	} else {
		h.Write([]byte(parent))
	}
	return h.SumHex()
}

// CreateCommit builds, hashes, and persists a commit. parent is "" for a
// root commit. The commit's own Parents field holds 0 or 1 entries; the
// type itself accepts more for forward compatibility with merge commits
// that this store never produces (spec.md §9 Open Question).
func (s *CommitStore) CreateCommit(author, message, tree, parent string) (*Commit, error) {
	now := time.Now().Unix()
	if now < 0 {
		return nil, diterr.ErrTimeWentBackwards
	}

	hash := computeCommitHash(author, message, now, tree, parent)

	var parents []string
	if parent != "" {
		parents = []string{parent}
	}

	commit := &Commit{
		Author:    author,
		Message:   message,
		Timestamp: now,
		Tree:      tree,
		Parents:   parents,
		Hash:      hash,
	}

	data, err := encodeJSON(commit)
	if err != nil {
		return nil, diterr.Wrap(diterr.KindSerialization, "failed to serialize commit", err)
	}
	tmp := filepath.Join(s.repo.Commits(), tempName())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, diterr.Wrap(diterr.KindObjectStore, "failed to write commit "+hash, err)
	}
	if err := os.Rename(tmp, filepath.Join(s.repo.Commits(), hash)); err != nil {
		os.Remove(tmp)
		return nil, diterr.Wrap(diterr.KindObjectStore, "failed to rename commit "+hash+" into place", err)
	}

	dlog.Logger.Debug().Str("hash", hash).Str("tree", tree).Msg("commit created")
	return commit, nil
}

// GetCommit reads and deserializes commits/<hash>, setting Hash from the
// filename rather than the serialized body (spec.md §4.4).
func (s *CommitStore) GetCommit(hash string) (*Commit, error) {
	path := filepath.Join(s.repo.Commits(), hash)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diterr.Wrap(diterr.KindObjectStore, "failed to read commit "+hash, err)
	}

	var commit Commit
	if err := decodeJSON(data, &commit); err != nil {
		return nil, diterr.Wrap(diterr.KindSerialization, "failed to deserialize commit "+hash, err)
	}
	commit.Hash = hash
	return &commit, nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent links. BFS, set-deduplicated, so it terminates on a
// cycle-free DAG and tolerates future merge commits with multiple parents
// (spec.md §4.4, grounded on the original CommitBfsIterator).
func (s *CommitStore) IsAncestor(ancestor, descendant string) (bool, error) {
	visited := map[string]struct{}{}
	queue := []string{descendant}

	for len(queue) > 0 {
		hash := queue[0]
		queue = queue[1:]

		if _, seen := visited[hash]; seen {
			continue
		}
		visited[hash] = struct{}{}

		if hash == ancestor {
			return true, nil
		}

		commit, err := s.GetCommit(hash)
		if err != nil {
			return false, err
		}
		for _, p := range commit.Parents {
			if _, seen := visited[p]; !seen {
				queue = append(queue, p)
			}
		}
	}

	return false, nil
}
