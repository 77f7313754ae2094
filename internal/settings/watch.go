package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"
)

// Watch reloads path whenever it changes on disk and calls fn with the new settings.
// Identical reloads are skipped. The parent directory is watched so atomic
// replace-by-rename saves are seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating settings watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	log := pslog.Ctx(ctx).With("path", path)
	last, err := LoadFrom(path)
	if err != nil {
		log.Warn("settings unreadable; waiting for a valid file", "err", err)
	}

	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("settings watcher error", "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			next, err := LoadFrom(path)
			if err != nil {
				log.Warn("settings reload failed", "err", err)
				continue
			}
			if next == last {
				continue
			}
			last = next
			log.Debug("settings reloaded", "demo", next.DemoMode, "interval", next.RefreshInterval)
			fn(next)
		}
	}
}
