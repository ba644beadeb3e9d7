package normalize

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay lets a burst of writes to one file land before it is read.
const settleDelay = 100 * time.Millisecond

// Watch normalizes source-like files under paths whenever they are written,
// until ctx is done. handle is called for every file the engine would change.
// With write set the file is rewritten; the write event that follows finds
// nothing left to do, since normalization is idempotent.
func Watch(ctx context.Context, logger *zap.Logger, engine Engine, paths []string, write bool, handle func(FileResult)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range paths {
		if err := addWatch(watcher, path); err != nil {
			return err
		}
	}
	logger.Debug("watching", zap.Strings("paths", paths))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(ctx, logger, watcher, engine, event, write, handle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(err))
		}
	}
}

func handleEvent(ctx context.Context, logger *zap.Logger, watcher *fsnotify.Watcher, engine Engine, event fsnotify.Event, write bool, handle func(FileResult)) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := addWatch(watcher, event.Name); err != nil {
				logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
		}
		return
	}
	if !hasDesiredExtension(event.Name) {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(settleDelay):
	}

	result, err := ProcessFile(engine, event.Name, write)
	if err != nil {
		logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	if result.Changed() {
		handle(result)
	}
}

// addWatch watches path, or every directory under it.
func addWatch(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return watcher.Add(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
		return nil
	})
}
