// Package cache stores comparison outcomes on disk so repeated runs over
// the same inputs skip the bootstrap.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/luxeval/luxeval/internal/models"
)

// entryExt is the file extension of a cache entry: zstd-compressed JSON.
const entryExt = ".json.zst"

// Cache provides caching for comparison outcomes
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// CacheKey generates a unique cache key for a comparison run.
// The key is based on:
// - the normalized score document
// - every part, typically resampling options and noise model settings
//
// Parts are JSON-encoded, so map-valued parts hash independently of
// iteration order.
func CacheKey(doc *models.ScoreDocument, parts ...any) (string, error) {
	h := sha256.New()

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling score document: %w", err)
	}
	if err := writeBytes(h, docJSON); err != nil {
		return "", err
	}

	for i, p := range parts {
		data, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("marshaling key part %d: %w", i, err)
		}
		if err := writeBytes(h, data); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached outcome if it exists
func (c *Cache) Get(key string) (*models.ComparisonOutcome, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compressed, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		// Corrupt entry, treat as miss
		return nil, false
	}

	var outcome models.ComparisonOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, false
	}

	return &outcome, true
}

// Put stores an outcome in the cache
func (c *Cache) Put(key string, outcome *models.ComparisonOutcome) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing zstd encoder: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), compressed, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Only remove a directory that holds nothing but cache entries.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), entryExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+entryExt)
}

func writeBytes(w io.Writer, b []byte) error {
	// null byte delimiter prevents collisions between adjacent parts
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}
