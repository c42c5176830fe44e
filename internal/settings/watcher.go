package settings

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/starford/notecmd/internal/checksum"
)

// debounce collapses the burst of events editors produce when saving.
const debounce = 200 * time.Millisecond

// Watch watches the settings file until ctx is cancelled and calls onChange
// with the new settings after each external edit. The parent directory is
// watched so atomic replace-by-rename saves are seen. Edits that fail to
// parse are logged and skipped.
func (s *Store) Watch(ctx context.Context, onChange func(Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return err
	}
	s.logger.Info("settings: watching", slog.String("path", s.path))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settings: watcher stopped")
			return nil

		case <-fire:
			fire = nil
			s.reload(onChange)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("settings: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func (s *Store) reload(onChange func(Settings)) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("settings: reload read failed", slog.String("error", err.Error()))
		}
		return
	}
	if s.ownWrite(data) {
		return
	}
	st, err := decode(data)
	if err != nil {
		s.logger.Warn("settings: ignoring invalid edit", slog.String("error", err.Error()))
		return
	}
	s.mu.Lock()
	s.lastSum = checksum.Sum(data)
	s.mu.Unlock()
	s.logger.Info("settings: reloaded", slog.Int("commands", len(st.Commands)))
	onChange(st)
}
