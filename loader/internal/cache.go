package internal

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"legalrag/types"
)

// Cache persists one gob artifact per pipeline stage so a restarted
// ingestion run resumes from the last completed stage. Every artifact
// carries a fingerprint of the inputs that produced it; a mismatch is a
// miss, never a silent stale read.
type Cache struct {
	dir string
}

func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Load decodes the named artifact into out if its stored fingerprint
// matches. Returns false on absence or mismatch.
func (c *Cache) Load(name, fingerprint string, out any) (bool, error) {
	f, err := os.Open(filepath.Join(c.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	var stored string
	if err := dec.Decode(&stored); err != nil {
		return false, fmt.Errorf("decode cache header %s: %w", name, err)
	}
	if stored != fingerprint {
		return false, nil
	}
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("decode cache payload %s: %w", name, err)
	}
	return true, nil
}

// Save writes the artifact atomically (tmp file + rename) so an
// interrupted run never leaves a half-written stage behind.
func (c *Cache) Save(name, fingerprint string, v any) error {
	path := filepath.Join(c.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(fingerprint); err != nil {
		f.Close()
		return err
	}
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// DirFingerprint hashes the listing of a source directory: relative
// path, size and modification time of every file. Changing, adding or
// removing a source file invalidates downstream stage caches.
func DirFingerprint(dir string) (string, error) {
	type entry struct {
		path string
		line string
	}
	var entries []entry

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		entries = append(entries, entry{
			path: rel,
			line: fmt.Sprintf("%s|%d|%d", rel, info.Size(), info.ModTime().UnixNano()),
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChunksDigest hashes the chunk sequence so the embedding cache is bound
// to the exact chunks it was computed from.
func ChunksDigest(chunks []types.TextChunk) string {
	h := sha256.New()
	for _, c := range chunks {
		h.Write([]byte(c.Content))
		h.Write([]byte{0})
		h.Write([]byte(c.SourceRef))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint combines labeled parts into one cache key.
func Fingerprint(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}
