// Package status implements the three-way diff (HEAD tree × index × working
// tree) that spec.md §4.7 defines, plus the full-repository status walk.
// The Index manager reuses the same classification tables for add/unstage
// (spec.md §4.5), so the tables live here rather than being duplicated.
package status

import (
	"os"

	"github.com/complexairport/dit/internal/objects"
)

// TrackedKind classifies an index entry against the HEAD tree: "what will
// be in the next commit relative to HEAD" (spec.md §4.7).
type TrackedKind int

const (
	TrackedNone TrackedKind = iota
	TrackedNew
	TrackedDeleted
	TrackedUnchanged
	TrackedModified
)

func (k TrackedKind) String() string {
	switch k {
	case TrackedNone:
		return "none"
	case TrackedNew:
		return "new"
	case TrackedDeleted:
		return "deleted"
	case TrackedUnchanged:
		return "unchanged"
	case TrackedModified:
		return "modified"
	default:
		return "unknown"
	}
}

// TrackedChange is the tracked classification of one path, with the
// relevant blob hashes per spec.md §4.7's table.
type TrackedChange struct {
	Kind TrackedKind
	From string // HEAD hash, for Deleted/Modified
	To   string // index hash, for New/Modified
}

// ClassifyTracked implements spec.md §4.7's tracked-change table directly:
// head and index are the (possibly nil) entries for one path.
func ClassifyTracked(head, index *objects.Entry) TrackedChange {
	switch {
	case head == nil && index == nil:
		return TrackedChange{Kind: TrackedNone}
	case head == nil && index != nil:
		return TrackedChange{Kind: TrackedNew, To: index.Hash}
	case head != nil && index == nil:
		return TrackedChange{Kind: TrackedDeleted, From: head.Hash}
	case head.Hash == index.Hash:
		return TrackedChange{Kind: TrackedUnchanged}
	default:
		return TrackedChange{Kind: TrackedModified, From: head.Hash, To: index.Hash}
	}
}

// UntrackedKind classifies the working tree against the index: "what
// differs on disk from what's staged" (spec.md §4.7).
type UntrackedKind int

const (
	UntrackedNone UntrackedKind = iota
	UntrackedDeleted
	UntrackedNew
	UntrackedUnchanged
	UntrackedModified
)

func (k UntrackedKind) String() string {
	switch k {
	case UntrackedNone:
		return "none"
	case UntrackedDeleted:
		return "deleted"
	case UntrackedNew:
		return "new"
	case UntrackedUnchanged:
		return "unchanged"
	case UntrackedModified:
		return "modified"
	default:
		return "unknown"
	}
}

// UntrackedChange is the untracked classification of one path.
type UntrackedChange struct {
	Kind UntrackedKind
	From string // index hash, for Modified
	To   string // working-tree hash, for New/Modified/Unchanged
}

// WorkingState is the observed state of a path on disk, with the
// fingerprint short-circuit already applied: Hash is the index's hash
// when the fingerprint matched, or a fresh rehash otherwise.
type WorkingState struct {
	Present     bool
	Hash        string
	Fingerprint objects.Fingerprint
}

// Stat computes the WorkingState of absPath against the given index entry
// (nil if untracked), applying the fingerprint short-circuit: a matching
// fingerprint skips rehashing entirely, which is what lets an unreadable
// file still report Unchanged (spec.md §8, "Fingerprint short-circuit").
func Stat(absPath string, index *objects.Entry) (WorkingState, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return WorkingState{Present: false}, nil
		}
		return WorkingState{}, err
	}

	fp := objects.Fingerprint{Size: info.Size(), ModifiedAt: info.ModTime()}
	if index != nil && fp.Equal(index.Fingerprint) {
		return WorkingState{Present: true, Hash: index.Hash, Fingerprint: fp}, nil
	}

	hash, err := objects.HashFileHex(absPath)
	if err != nil {
		return WorkingState{}, err
	}
	return WorkingState{Present: true, Hash: hash, Fingerprint: fp}, nil
}

// ClassifyUntracked implements spec.md §4.7's untracked-change table given
// an already-computed WorkingState and the (possibly nil) index entry.
func ClassifyUntracked(w WorkingState, index *objects.Entry) UntrackedChange {
	switch {
	case !w.Present && index == nil:
		return UntrackedChange{Kind: UntrackedNone}
	case !w.Present && index != nil:
		return UntrackedChange{Kind: UntrackedDeleted}
	case w.Present && index == nil:
		return UntrackedChange{Kind: UntrackedNew, To: w.Hash}
	case w.Present && index != nil && w.Hash == index.Hash:
		return UntrackedChange{Kind: UntrackedUnchanged, To: w.Hash}
	default:
		return UntrackedChange{Kind: UntrackedModified, From: index.Hash, To: w.Hash}
	}
}
