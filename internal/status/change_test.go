package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/complexairport/dit/internal/objects"
	"github.com/stretchr/testify/require"
)

func TestClassifyTrackedTable(t *testing.T) {
	head := &objects.Entry{Hash: "h1"}
	index := &objects.Entry{Hash: "h1"}

	require.Equal(t, TrackedNone, ClassifyTracked(nil, nil).Kind)
	require.Equal(t, TrackedNew, ClassifyTracked(nil, index).Kind)
	require.Equal(t, TrackedDeleted, ClassifyTracked(head, nil).Kind)
	require.Equal(t, TrackedUnchanged, ClassifyTracked(head, index).Kind)
	require.Equal(t, TrackedModified, ClassifyTracked(head, &objects.Entry{Hash: "h2"}).Kind)
}

func TestClassifyUntrackedTable(t *testing.T) {
	index := &objects.Entry{Hash: "h1"}

	require.Equal(t, UntrackedNone, ClassifyUntracked(WorkingState{Present: false}, nil).Kind)
	require.Equal(t, UntrackedDeleted, ClassifyUntracked(WorkingState{Present: false}, index).Kind)
	require.Equal(t, UntrackedNew, ClassifyUntracked(WorkingState{Present: true, Hash: "h2"}, nil).Kind)
	require.Equal(t, UntrackedUnchanged, ClassifyUntracked(WorkingState{Present: true, Hash: "h1"}, index).Kind)
	require.Equal(t, UntrackedModified, ClassifyUntracked(WorkingState{Present: true, Hash: "h2"}, index).Kind)
}

func TestStatFingerprintShortCircuit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)
	fp := objects.Fingerprint{Size: info.Size(), ModifiedAt: info.ModTime()}
	index := &objects.Entry{Hash: "cached-hash", Fingerprint: fp}

	// Make the file unreadable; a matching fingerprint must still avoid
	// rehashing it (spec.md §8, "Fingerprint short-circuit").
	require.NoError(t, os.Chmod(path, 0o000))
	defer os.Chmod(path, 0o644)

	w, err := Stat(path, index)
	require.NoError(t, err)
	require.Equal(t, "cached-hash", w.Hash)
}

func TestStatRehashesOnFingerprintMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	stale := objects.Fingerprint{Size: 999, ModifiedAt: time.Now().Add(-time.Hour)}
	index := &objects.Entry{Hash: "stale-hash", Fingerprint: stale}

	w, err := Stat(path, index)
	require.NoError(t, err)
	require.Equal(t, objects.HashBytesHex([]byte("v1")), w.Hash)
}
