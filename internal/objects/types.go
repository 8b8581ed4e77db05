package objects

import "time"

// Fingerprint is the (size, mtime) pair used to skip re-hashing unchanged
// files (spec.md §3, "Fingerprint").
type Fingerprint struct {
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Equal reports whether two fingerprints are identical. Fingerprint
// equality implies content is assumed unchanged (spec.md §3).
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Size == other.Size && f.ModifiedAt.Equal(other.ModifiedAt)
}

// Entry is a single tracked file: its blob hash and the fingerprint
// observed when that hash was computed.
type Entry struct {
	Hash        string      `json:"hash"`
	Fingerprint Fingerprint `json:"fp"`
}

// FileMap is the path -> Entry mapping shared by the index and every tree
// (spec.md §6: trees and the index share one JSON shape, `{"files": {...}}`).
// The map itself is unordered; encoding/json writes its keys sorted.
type FileMap struct {
	Files map[string]Entry `json:"files"`
}

// NewFileMap returns an empty FileMap ready for use.
func NewFileMap() FileMap {
	return FileMap{Files: make(map[string]Entry)}
}

// Tree is the immutable snapshot written under trees/<hash>. Its Hash is
// derived from content and never serialized (spec.md §3).
type Tree struct {
	Index FileMap `json:"index"`
	Hash  string  `json:"-"`
}

// Commit is the immutable record written under commits/<hash>. Its Hash is
// derived from the filename on read, never serialized (spec.md §3).
type Commit struct {
	Author    string   `json:"author"`
	Message   string   `json:"message"`
	Timestamp int64    `json:"timestamp"`
	Tree      string   `json:"tree"`
	Parents   []string `json:"parents"`
	Hash      string   `json:"-"`
}

// Parent returns the single parent hash for a linear commit, or "" for a
// root commit. Spec.md's current implementation only ever produces 0 or 1
// parents; Parents accepts any length for forward compatibility with
// future merge commits (spec.md §9 Open Question).
func (c *Commit) Parent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}
