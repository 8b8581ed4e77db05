package status

import (
	"sync"

	"github.com/complexairport/dit/internal/objects"
	"github.com/complexairport/dit/internal/repo"
	"golang.org/x/sync/errgroup"
)

// IgnoreMatcher is the external collaborator the engine consumes to
// exclude paths from the working-tree walk (spec.md §1, §9).
type IgnoreMatcher interface {
	IsIgnored(relPath string, isDir bool) bool
	WalkFiles(root string, fn func(relPath string) error) error
}

// Engine computes the three-way diff for a repository (spec.md §4.7).
type Engine struct {
	repo       *repo.Repository
	ignore     IgnoreMatcher
	MaxWorkers int
}

// NewEngine returns an Engine rooted at r, excluding paths matched by ignore.
func NewEngine(r *repo.Repository, ignore IgnoreMatcher) *Engine {
	return &Engine{repo: r, ignore: ignore, MaxWorkers: 8}
}

// Report is the full classification of the repository: tracked changes
// (index vs HEAD) and untracked changes (working tree vs index), keyed by
// repo-relative path.
type Report struct {
	Tracked   map[string]TrackedChange
	Untracked map[string]UntrackedChange
}

// TrackedChanges classifies every path present in either the HEAD tree or
// the index (spec.md §4.7's tracked table) and returns only the paths whose
// classification is a change (New, Deleted or Modified).
func (e *Engine) TrackedChanges(headFiles, indexFiles map[string]objects.Entry) map[string]TrackedChange {
	out := make(map[string]TrackedChange)
	seen := make(map[string]struct{}, len(headFiles)+len(indexFiles))
	for p := range headFiles {
		seen[p] = struct{}{}
	}
	for p := range indexFiles {
		seen[p] = struct{}{}
	}

	for p := range seen {
		var head, index *objects.Entry
		if e, ok := headFiles[p]; ok {
			head = &e
		}
		if e, ok := indexFiles[p]; ok {
			index = &e
		}
		change := ClassifyTracked(head, index)
		if change.Kind != TrackedNone && change.Kind != TrackedUnchanged {
			out[p] = change
		}
	}
	return out
}

// UntrackedChanges walks the working tree in parallel (spec.md §5,
// "Status enumeration: per-file change classification runs on a worker
// pool"), classifies every visited file against indexFiles and keeps the
// New and Modified ones, then adds Deleted entries for indexed paths absent
// from disk and not ignored (spec.md §4.7).
func (e *Engine) UntrackedChanges(indexFiles map[string]objects.Entry) (map[string]UntrackedChange, error) {
	workers := e.MaxWorkers
	if workers <= 0 {
		workers = 8
	}

	var mu sync.Mutex
	out := make(map[string]UntrackedChange)
	visited := make(map[string]struct{})

	g := new(errgroup.Group)
	g.SetLimit(workers)

	walkErr := e.ignore.WalkFiles(e.repo.Root, func(relPath string) error {
		g.Go(func() error {
			var index *objects.Entry
			mu.Lock()
			if entry, ok := indexFiles[relPath]; ok {
				index = &entry
			}
			mu.Unlock()

			w, err := Stat(e.repo.AbsPath(relPath), index)
			if err != nil {
				return err
			}
			change := ClassifyUntracked(w, index)

			mu.Lock()
			visited[relPath] = struct{}{}
			if change.Kind != UntrackedNone && change.Kind != UntrackedUnchanged {
				out[relPath] = change
			}
			mu.Unlock()
			return nil
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for p := range indexFiles {
		if _, ok := visited[p]; ok {
			continue
		}
		if e.ignore.IsIgnored(p, false) {
			continue
		}
		out[p] = UntrackedChange{Kind: UntrackedDeleted}
	}

	return out, nil
}

// FullStatus runs both classifications.
func (e *Engine) FullStatus(headFiles, indexFiles map[string]objects.Entry) (*Report, error) {
	untracked, err := e.UntrackedChanges(indexFiles)
	if err != nil {
		return nil, err
	}
	return &Report{
		Tracked:   e.TrackedChanges(headFiles, indexFiles),
		Untracked: untracked,
	}, nil
}
