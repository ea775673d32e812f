package loader

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch invalidates cache entries as files under root change on disk, so
// the next Read picks up the new content even when the fingerprint
// granularity would not.  It returns a stop function that releases the
// watcher.
func (c *Cache) Watch(root string) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("loader: watch: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("loader: watch %s: %w", root, err)
	}
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Create) {
					// event names carry the watched root already
					path, err := filepath.Abs(ev.Name)
					if err != nil {
						continue
					}
					c.Invalidate(path)
					c.logger.Debug("invalidated", zap.String("path", path), zap.String("op", ev.Op.String()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return watcher.Close, nil
}
