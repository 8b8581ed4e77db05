package objects

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dlog"
	"github.com/complexairport/dit/internal/repo"
	"github.com/klauspost/compress/zstd"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// BlobStore is the content-addressed file store (spec.md §4.2).
type BlobStore struct {
	repo *repo.Repository

	// Compress enables ZSTD framing of on-disk blobs. The hash is always
	// computed over the plaintext, never the compressed bytes.
	Compress bool

	// MaxWorkers bounds the worker pool used by RecoverBlobs for parallel
	// tree materialization (spec.md §5). Defaults to a sane value when <= 0.
	MaxWorkers int
}

// NewBlobStore returns a BlobStore rooted at repository r.
func NewBlobStore(r *repo.Repository) *BlobStore {
	return &BlobStore{repo: r, MaxWorkers: 8}
}

var entropy = ulid.Monotonic(rand.Reader, 0)
var entropyMu sync.Mutex

// tempName returns a unique temp-file name inside blobs/, so concurrent
// CreateBlob calls never collide before rename. dit's object identity is
// still the content hash; the ULID only names the transient file.
func tempName() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Now(), entropy)
	return ".tmp-" + id.String()
}

// BlobPath is a pure lookup, no I/O (spec.md §4.2).
func (b *BlobStore) BlobPath(hash string) string {
	return filepath.Join(b.repo.Blobs(), hash)
}

// CreateBlob stream-reads source, hashes it while writing to a uniquely
// named temp file, then renames the temp file to blobs/<hash>. Two
// concurrent creates of the same content observe at most one rename
// survivor; the loser's temp file is removed (spec.md §4.2 invariant).
func (b *BlobStore) CreateBlob(source string) (string, error) {
	in, err := os.Open(source)
	if err != nil {
		return "", diterr.Wrap(diterr.KindFilesystem, "failed to open "+source, err)
	}
	defer in.Close()

	tmpPath := filepath.Join(b.repo.Blobs(), tempName())
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", diterr.Wrap(diterr.KindObjectStore, "failed to create temp blob file", err)
	}

	hash, err := b.writeCompressed(in, out)
	closeErr := out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return "", diterr.Wrap(diterr.KindObjectStore, "blob write failed for "+source, err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", diterr.Wrap(diterr.KindObjectStore, "blob write failed for "+source, closeErr)
	}

	dest := b.BlobPath(hash)
	if _, err := os.Stat(dest); err == nil {
		// Another create already produced this content; this temp file
		// is redundant.
		os.Remove(tmpPath)
		return hash, nil
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", diterr.Wrap(diterr.KindObjectStore, "failed to rename blob into place", err)
	}

	dlog.Logger.Debug().Str("hash", hash).Msg("blob created")
	return hash, nil
}

// CreateBlobWithHash writes source to blobs/<hash> without recomputing the
// hash, used when the index already knows it (spec.md §4.2).
func (b *BlobStore) CreateBlobWithHash(source, hash string) error {
	dest := b.BlobPath(hash)
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	in, err := os.Open(source)
	if err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to open "+source, err)
	}
	defer in.Close()

	tmpPath := filepath.Join(b.repo.Blobs(), tempName())
	out, err := os.Create(tmpPath)
	if err != nil {
		return diterr.Wrap(diterr.KindObjectStore, "failed to create temp blob file", err)
	}

	_, err = b.writeCompressedNoHash(in, out)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		os.Remove(tmpPath)
		if err != nil {
			return diterr.Wrap(diterr.KindObjectStore, "blob write failed for "+source, err)
		}
		return diterr.Wrap(diterr.KindObjectStore, "blob write failed for "+source, closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return diterr.Wrap(diterr.KindObjectStore, "failed to rename blob into place", err)
	}
	return nil
}

// RecoverBlob copies (and decompresses, if Compress is set) the blob to
// dest, creating parent directories as needed (spec.md §4.2).
func (b *BlobStore) RecoverBlob(hash, dest string) error {
	src, err := os.Open(b.BlobPath(hash))
	if err != nil {
		return diterr.Wrap(diterr.KindObjectStore, "failed to read blob "+hash, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to create parent directory for "+dest, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to create "+dest, err)
	}
	defer out.Close()

	if b.Compress {
		zr, err := zstd.NewReader(src)
		if err != nil {
			return diterr.Wrap(diterr.KindObjectStore, "failed to open zstd frame for blob "+hash, err)
		}
		defer zr.Close()
		if _, err := io.Copy(out, zr); err != nil {
			return diterr.Wrap(diterr.KindObjectStore, "failed to decompress blob "+hash, err)
		}
		return nil
	}

	if _, err := io.Copy(out, src); err != nil {
		return diterr.Wrap(diterr.KindObjectStore, "failed to recover blob "+hash, err)
	}
	return nil
}

// RecoverTask pairs a blob hash with the destination to materialize it to.
type RecoverTask struct {
	Hash string
	Dest string
}

// RecoverBlobs materializes many blobs in parallel using a bounded worker
// pool (spec.md §5: "Tree materialization ... runs on a worker pool").
func (b *BlobStore) RecoverBlobs(tasks []RecoverTask) error {
	workers := b.MaxWorkers
	if workers <= 0 {
		workers = 8
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			return b.RecoverBlob(t.Hash, t.Dest)
		})
	}
	return g.Wait()
}

// RemoveBlob is a best-effort deletion; an absent blob is not an error
// (spec.md §4.2).
func (b *BlobStore) RemoveBlob(hash string) error {
	err := os.Remove(b.BlobPath(hash))
	if err != nil && !os.IsNotExist(err) {
		return diterr.Wrap(diterr.KindObjectStore, "failed to remove blob "+hash, err)
	}
	return nil
}

// writeCompressed hashes the plaintext of src while writing it (optionally
// ZSTD-framed) to out, returning the plaintext's hex digest.
func (b *BlobStore) writeCompressed(src io.Reader, out io.Writer) (string, error) {
	h := NewHasher()
	tee := io.TeeReader(src, h)

	if !b.Compress {
		if _, err := io.Copy(out, tee); err != nil {
			return "", err
		}
		return h.SumHex(), nil
	}

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(zw, tee); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return h.SumHex(), nil
}

// writeCompressedNoHash writes src (optionally ZSTD-framed) to out without
// hashing, used by CreateBlobWithHash where the hash is already known.
func (b *BlobStore) writeCompressedNoHash(src io.Reader, out io.Writer) (int64, error) {
	if !b.Compress {
		return io.Copy(out, src)
	}
	zw, err := zstd.NewWriter(out)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(zw, src)
	if err != nil {
		zw.Close()
		return n, err
	}
	return n, zw.Close()
}
