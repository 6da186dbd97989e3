package songbook

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sukalov/jamsheet/internal/logger"
)

const watchDebounce = 300 * time.Millisecond

// Watch calls onChange after song files in dir are created, written, renamed
// or removed. Bursts of events within the debounce window trigger a single
// call. Watch blocks until ctx is done.
func Watch(ctx context.Context, dir string, onChange func(ctx context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info(fmt.Sprintf("watching songs directory %s", dir))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, isSong := slugFromFile(filepath.Base(event.Name)); !isSong {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			onChange(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.LogWithErr("songs watcher error", err)
		}
	}
}

// WatchAndReload keeps s in sync with the markdown files in dir.
func WatchAndReload(ctx context.Context, s *Songbook, dir string) error {
	return Watch(ctx, dir, func(ctx context.Context) {
		if err := s.Reload(ctx); err != nil {
			logger.LogWithErr("songbook reload failed", err)
		}
	})
}
