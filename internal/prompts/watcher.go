package prompts

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads s whenever a template file in its directory changes, until
// ctx is cancelled. Bursts of events are coalesced. onReload, if non-nil,
// runs after each successful reload.
func Watch(ctx context.Context, s *Set, logger *slog.Logger, onReload func()) error {
	if s.dir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return err
	}
	logger.Info("prompts: watching", slog.String("dir", s.dir))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("prompts: watcher stopped")
			return nil

		case <-reloadCh:
			reloadCh = nil
			if err := s.Reload(); err != nil {
				logger.Warn("prompts: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("prompts: reloaded", slog.String("dir", s.dir))
			if onReload != nil {
				onReload()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(filepath.Base(ev.Name), ".tmpl") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if reloadTimer == nil {
				reloadTimer = time.NewTimer(100 * time.Millisecond)
			} else {
				reloadTimer.Reset(100 * time.Millisecond)
			}
			reloadCh = reloadTimer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("prompts: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
