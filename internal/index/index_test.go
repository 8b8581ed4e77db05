package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/complexairport/dit/internal/ignore"
	"github.com/complexairport/dit/internal/objects"
	"github.com/complexairport/dit/internal/repo"
	"github.com/complexairport/dit/internal/status"
	"github.com/stretchr/testify/require"
)

func newTestFixture(t *testing.T) (*repo.Repository, *objects.BlobStore, *ignore.Filter) {
	t.Helper()
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	blobs := objects.NewBlobStore(r)
	ign, err := ignore.Load(r)
	require.NoError(t, err)
	return r, blobs, ign
}

func TestAddFilesCreatesBlobAndEntry(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	require.NoError(t, m.AddFiles([]string{"a.txt"}))
	entry, ok := m.Files()["a.txt"]
	require.True(t, ok)
	require.Equal(t, objects.HashBytesHex([]byte("hello\n")), entry.Hash)
}

func TestAddFilesIsIdempotent(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))

	before, err := os.ReadFile(r.IndexPath())
	require.NoError(t, err)
	entries, err := os.ReadDir(r.Blobs())
	require.NoError(t, err)
	blobCountBefore := len(entries)

	// Re-adding the same unmodified file must be a no-op: no new blob,
	// index file byte-identical.
	require.NoError(t, m.AddFiles([]string{"a.txt"}))

	after, err := os.ReadFile(r.IndexPath())
	require.NoError(t, err)
	require.Equal(t, before, after)

	entries, err = os.ReadDir(r.Blobs())
	require.NoError(t, err)
	require.Len(t, entries, blobCountBefore)
}

func TestAddFilesDetectsFingerprintShortCircuit(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))

	// Make the file unreadable post-stage; a matching fingerprint must
	// still let status/identify succeed and report it unchanged.
	require.NoError(t, os.Chmod(path, 0o000))
	defer os.Chmod(path, 0o644)

	untracked, tracked, err := m.IdentifyChanges("a.txt", map[string]objects.Entry{})
	require.NoError(t, err)
	require.Equal(t, status.UntrackedUnchanged, untracked.Kind)
	require.Equal(t, status.TrackedNew, tracked.Kind)
}

func TestAddFilesDeletedPathRemovesEntry(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))
	require.True(t, m.Has("a.txt"))

	require.NoError(t, os.Remove(path))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))
	require.False(t, m.Has("a.txt"))
}

func TestUnstageFilesRevertsToHead(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))

	headEntry := objects.Entry{Hash: objects.HashBytesHex([]byte("v1\n"))}
	head := map[string]objects.Entry{"a.txt": headEntry}

	require.NoError(t, m.UnstageFiles([]string{"a.txt"}, head))
	require.Equal(t, headEntry.Hash, m.Files()["a.txt"].Hash)
}

func TestUnstageFilesRemovesPathAbsentFromHead(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))

	require.NoError(t, m.UnstageFiles([]string{"a.txt"}, map[string]objects.Entry{}))
	require.False(t, m.Has("a.txt"))
}

func TestUnstageAllUsesTrackedChanges(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	pathA := filepath.Join(r.Root, "a.txt")
	pathB := filepath.Join(r.Root, "b.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("a\n"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("b\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt", "b.txt"}))

	require.NoError(t, m.UnstageAll(map[string]objects.Entry{}))
	require.False(t, m.Has("a.txt"))
	require.False(t, m.Has("b.txt"))
}

func TestClearEmptiesIndex(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	path := filepath.Join(r.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))
	require.NoError(t, m.AddFiles([]string{"a.txt"}))

	require.NoError(t, m.Clear())
	require.Empty(t, m.Files())

	reloaded, err := Load(r, blobs, ign)
	require.NoError(t, err)
	require.Empty(t, reloaded.Files())
}

func TestReplaceAllPersists(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	target := map[string]objects.Entry{"x.txt": {Hash: "deadbeef"}}
	require.NoError(t, m.ReplaceAll(target))

	reloaded, err := Load(r, blobs, ign)
	require.NoError(t, err)
	require.Equal(t, "deadbeef", reloaded.Files()["x.txt"].Hash)
}

func TestGetAllUntrackedChangesRespectsIgnore(t *testing.T) {
	r, blobs, ign := newTestFixture(t)
	require.NoError(t, ign.AddPattern("*.log"))
	m, err := Load(r, blobs, ign)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(r.Root, "tracked.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(r.Root, "noise.log"), []byte("x"), 0o644))

	changes, err := m.GetAllUntrackedChanges()
	require.NoError(t, err)
	_, hasTracked := changes["tracked.txt"]
	_, hasLog := changes["noise.log"]
	require.True(t, hasTracked)
	require.False(t, hasLog)
}
