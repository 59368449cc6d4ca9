package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets editors finish writing before the file is parsed
const reloadDelay = 50 * time.Millisecond

// Watch reloads the scene file at path whenever it changes and sends the new
// scene on the returned channel until ctx is cancelled. A file that fails to
// load is logged and skipped; the channel only ever carries valid scenes.
// The directory is watched rather than the file so editors that replace the
// file on save are followed.
func Watch(ctx context.Context, path string) (<-chan *Scene, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create scene watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	scenes := make(chan *Scene, 1)
	go func() {
		defer close(scenes)
		defer watcher.Close()

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				pending = time.After(reloadDelay)

			case <-pending:
				pending = nil
				s, err := LoadFile(abs)
				if err != nil {
					core.Logger().Warn("scene reload failed", "path", path, "error", err)
					continue
				}
				core.Logger().Info("scene reloaded", "path", path, "objects", len(s.Objects))
				select {
				case scenes <- s:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				core.Logger().Warn("scene watcher error", "error", err)
			}
		}
	}()
	return scenes, nil
}
