package loader

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage serves file content from memory and counts reads.
type fakeStorage struct {
	mu    sync.Mutex
	files map[string]fakeFile
	reads atomic.Int64
}

type fakeFile struct {
	content string
	fp      Fingerprint
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string]fakeFile)}
}

func (s *fakeStorage) put(path, content string, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = fakeFile{content, Fingerprint{
		ModTime: time.Unix(version, 0),
		Size:    int64(len(content)),
	}}
}

func (s *fakeStorage) read(path string) ([]byte, error) {
	s.reads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(f.content), nil
}

func (s *fakeStorage) stat(path string) (Fingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path]
	if !ok {
		return Fingerprint{}, os.ErrNotExist
	}
	return f.fp, nil
}

func (s *fakeStorage) cache(opts ...Option) *Cache {
	opts = append([]Option{WithReadFile(s.read), WithStat(s.stat)}, opts...)
	return New(opts...)
}

func TestReadThrough(t *testing.T) {
	storage := newFakeStorage()
	storage.put("/t/a.html", "hello", 1)
	c := storage.cache()

	content, err := c.Read("/t/a.html")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.EqualValues(t, 1, storage.reads.Load())

	// second read of an unmodified file must not hit storage
	content, err = c.Read("/t/a.html")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.EqualValues(t, 1, storage.reads.Load())

	// a fingerprint change forces a re-read
	storage.put("/t/a.html", "updated", 2)
	content, err = c.Read("/t/a.html")
	require.NoError(t, err)
	assert.Equal(t, "updated", content)
	assert.EqualValues(t, 2, storage.reads.Load())
}

func TestDisabled(t *testing.T) {
	storage := newFakeStorage()
	storage.put("/t/a.html", "hello", 1)
	c := storage.cache(Disabled())

	for i := 0; i < 3; i++ {
		content, err := c.Read("/t/a.html")
		require.NoError(t, err)
		assert.Equal(t, "hello", content)
	}
	assert.EqualValues(t, 3, storage.reads.Load())
	assert.Equal(t, 0, c.Len())
}

func TestInvalidateAndClear(t *testing.T) {
	storage := newFakeStorage()
	storage.put("/t/a.html", "a", 1)
	storage.put("/t/b.html", "b", 1)
	c := storage.cache()

	_, err := c.Read("/t/a.html")
	require.NoError(t, err)
	_, err = c.Read("/t/b.html")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Invalidate("/t/a.html")
	assert.Equal(t, 1, c.Len())
	_, err = c.Read("/t/a.html")
	require.NoError(t, err)
	assert.EqualValues(t, 3, storage.reads.Load())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestFailedReadDropsStaleEntry(t *testing.T) {
	storage := newFakeStorage()
	storage.put("/t/a.html", "a", 1)
	c := storage.cache()

	_, err := c.Read("/t/a.html")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	storage.mu.Lock()
	delete(storage.files, "/t/a.html")
	storage.mu.Unlock()

	_, err = c.Read("/t/a.html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 0, c.Len(), "stale entry should be dropped")
}

func TestReadDeduplication(t *testing.T) {
	storage := newFakeStorage()
	storage.put("/t/a.html", "hello", 1)

	var slowReads atomic.Int64
	slowRead := func(path string) ([]byte, error) {
		slowReads.Add(1)
		time.Sleep(50 * time.Millisecond)
		return storage.read(path)
	}
	c := New(WithReadFile(slowRead), WithStat(storage.stat), WithReadDeduplication())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content, err := c.Read("/t/a.html")
			assert.NoError(t, err)
			assert.Equal(t, "hello", content)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, slowReads.Load(), "concurrent first reads should share one load")
}

func TestRealFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	c := New()
	content, err := c.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", content)

	// rewrite with a different size so the fingerprint always changes
	require.NoError(t, os.WriteFile(path, []byte("version2"), 0o644))
	content, err = c.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "version2", content)
}

func TestResolve(t *testing.T) {
	abs, err := Resolve("/base", "sub/page.html")
	require.NoError(t, err)
	assert.Equal(t, "/base/sub/page.html", abs)

	abs, err = Resolve("/base", "/elsewhere/page.html")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/page.html", abs)
}

func TestWatchInvalidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	c := New()
	stop, err := c.Watch(dir)
	require.NoError(t, err)
	defer stop()

	_, err = c.Read(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, 3*time.Second, 10*time.Millisecond, "write event should invalidate the entry")

	content, err := c.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", content)
}
