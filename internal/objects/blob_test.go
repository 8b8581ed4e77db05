package objects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/complexairport/dit/internal/repo"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	return r
}

func TestCreateBlobHashesContent(t *testing.T) {
	r := newTestRepo(t)
	blobs := NewBlobStore(r)

	src := filepath.Join(r.Root, "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello\n"), 0o644))

	hash, err := blobs.CreateBlob(src)
	require.NoError(t, err)
	require.Equal(t, HashBytesHex([]byte("hello\n")), hash)

	data, err := os.ReadFile(blobs.BlobPath(hash))
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestCreateBlobIdempotent(t *testing.T) {
	r := newTestRepo(t)
	blobs := NewBlobStore(r)

	src := filepath.Join(r.Root, "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello\n"), 0o644))

	hash1, err := blobs.CreateBlob(src)
	require.NoError(t, err)
	hash2, err := blobs.CreateBlob(src)
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)

	entries, err := os.ReadDir(r.Blobs())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRecoverBlobRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	blobs := NewBlobStore(r)

	src := filepath.Join(r.Root, "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello\n"), 0o644))
	hash, err := blobs.CreateBlob(src)
	require.NoError(t, err)

	dest := filepath.Join(r.Root, "nested", "restored.txt")
	require.NoError(t, blobs.RecoverBlob(hash, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestRecoverBlobRoundTripCompressed(t *testing.T) {
	r := newTestRepo(t)
	blobs := NewBlobStore(r)
	blobs.Compress = true

	src := filepath.Join(r.Root, "hello.txt")
	content := []byte("hello, compressed world\n")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	hash, err := blobs.CreateBlob(src)
	require.NoError(t, err)
	require.Equal(t, HashBytesHex(content), hash, "hash must be over plaintext, not compressed bytes")

	dest := filepath.Join(r.Root, "restored.txt")
	require.NoError(t, blobs.RecoverBlob(hash, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, content, data)
}

func TestRecoverBlobsParallel(t *testing.T) {
	r := newTestRepo(t)
	blobs := NewBlobStore(r)

	var tasks []RecoverTask
	for i := 0; i < 20; i++ {
		content := []byte{byte(i)}
		hash := HashBytesHex(content)
		require.NoError(t, os.WriteFile(blobs.BlobPath(hash), content, 0o644))
		tasks = append(tasks, RecoverTask{Hash: hash, Dest: filepath.Join(r.Root, "out", hash)})
	}

	require.NoError(t, blobs.RecoverBlobs(tasks))
	for _, task := range tasks {
		_, err := os.Stat(task.Dest)
		require.NoError(t, err)
	}
}

func TestRemoveBlobMissingIsNotError(t *testing.T) {
	r := newTestRepo(t)
	blobs := NewBlobStore(r)
	require.NoError(t, blobs.RemoveBlob("does-not-exist"))
}
