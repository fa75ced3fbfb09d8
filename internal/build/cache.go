package build

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"golang.org/x/crypto/blake2b"
)

// Cache is a content-addressed store of already-linked executables,
// keyed on everything that affects the output of a build: the source
// text and the optimization knobs. A cache hit skips llc/clang/strip
// entirely.
type Cache struct {
	dir string
}

// NewCache opens (creating if necessary) a cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Key hashes everything a build's output depends on into a single
// cache entry file name: the source text, the bfc optimization level and
// pass list, the LLVM optimization level, and the target triple. blake2b
// is used rather than sha256 because it's the hash this project's
// dependency pack already carries (golang.org/x/crypto/blake2b), and its
// speed matters here since Key runs on every cached build, hit or not.
func Key(source, optLevel, passes, llvmOpt, targetTriple string) string {
	h, _ := blake2b.New256(nil)
	for _, part := range []string{source, optLevel, passes, llvmOpt, targetTriple} {
		h.Write([]byte(part))
		h.Write([]byte{0}) // separator so "ab","c" and "a","bc" don't collide
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached executable path for key, if present.
func (c *Cache) Lookup(key string) (string, bool) {
	path := filepath.Join(c.dir, key)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	return "", false
}

// Store copies executablePath into the cache under key, via a
// uuid-named temporary file swapped into place atomically so a build
// killed mid-copy never leaves a corrupt cache entry for another build
// to pick up.
func (c *Cache) Store(key, executablePath string) (string, error) {
	data, err := os.ReadFile(executablePath)
	if err != nil {
		return "", err
	}
	tmp := filepath.Join(c.dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(c.dir, key)
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return dst, nil
}

// entryTimestamp formats t in the "YYYY-MM-DD HH:MM:SS" shape
// strftime.Format produces — used instead of time.Time's own Format so
// the layout string stays readable without memorizing Go's
// reference-time constant. Nothing in Build calls it.
func entryTimestamp(t time.Time) string {
	return strftime.Format("%Y-%m-%d %H:%M:%S", t)
}
