// Package loader reads template files through a cache keyed by each file's
// modification fingerprint, so an unchanged file is read from storage once.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fingerprint identifies a version of a file's content.  Cached content is
// only as fresh as the fingerprint granularity.
type Fingerprint struct {
	ModTime time.Time
	Size    int64
}

// ReadFileFunc reads the bytes at an absolute path.
type ReadFileFunc func(path string) ([]byte, error)

// StatFunc obtains the current fingerprint for an absolute path.
type StatFunc func(path string) (Fingerprint, error)

// Cache is a read-through file cache.  Entries are created on first
// successful read and refreshed when the live fingerprint no longer matches;
// there is no eviction beyond explicit Invalidate and Clear.
type Cache struct {
	read     ReadFileFunc
	stat     StatFunc
	disabled bool
	dedup    *singleflight.Group // non-nil when read deduplication is on
	logger   *zap.Logger

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	content     string
	fingerprint Fingerprint
}

// Option configures a Cache.
type Option func(*Cache)

// Disabled makes every Read hit storage unconditionally and store nothing.
func Disabled() Option {
	return func(c *Cache) { c.disabled = true }
}

// WithReadFile replaces the storage read function (default os.ReadFile).
func WithReadFile(f ReadFileFunc) Option {
	return func(c *Cache) { c.read = f }
}

// WithStat replaces the fingerprint function (default os.Stat mtime+size).
func WithStat(f StatFunc) Option {
	return func(c *Cache) { c.stat = f }
}

// WithReadDeduplication shares a single in-flight storage read among
// concurrent callers of the same path.  Without it, concurrent first reads
// of one path may each hit storage; both store equivalent entries.
func WithReadDeduplication() Option {
	return func(c *Cache) { c.dedup = new(singleflight.Group) }
}

// WithLogger sets the logger used by watch mode.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func New(opts ...Option) *Cache {
	var c = &Cache{
		read:    os.ReadFile,
		stat:    osStat,
		logger:  zap.NewNop(),
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func osStat(path string) (Fingerprint, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{fi.ModTime(), fi.Size()}, nil
}

// Read returns the content of the file at the given absolute path.  If a
// cached entry's fingerprint equals the file's current fingerprint, the
// cached content is returned without touching storage; otherwise the bytes
// are read and the entry replaced.  A failed read is returned to the caller
// and drops any stale entry for the path.
func (c *Cache) Read(path string) (string, error) {
	if c.disabled {
		b, err := c.read(path)
		if err != nil {
			return "", fmt.Errorf("loader: read %s: %w", path, err)
		}
		return string(b), nil
	}

	fp, err := c.stat(path)
	if err != nil {
		c.Invalidate(path)
		return "", fmt.Errorf("loader: stat %s: %w", path, err)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.fingerprint == fp {
		return e.content, nil
	}

	if c.dedup != nil {
		v, err, _ := c.dedup.Do(path, func() (interface{}, error) {
			return c.load(path, fp)
		})
		if err != nil {
			return "", err
		}
		return v.(string), nil
	}
	return c.load(path, fp)
}

func (c *Cache) load(path string, fp Fingerprint) (string, error) {
	b, err := c.read(path)
	if err != nil {
		c.Invalidate(path)
		return "", fmt.Errorf("loader: read %s: %w", path, err)
	}
	var content = string(b)
	c.mu.Lock()
	c.entries[path] = entry{content, fp}
	c.mu.Unlock()
	return content, nil
}

// Invalidate removes the entry for one path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Resolve maps a template reference to one absolute path.  Relative
// references are joined to the base directory; absolute references are
// used as-is.
func Resolve(baseDir, ref string) (string, error) {
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(baseDir, ref)
	}
	return filepath.Abs(ref)
}
