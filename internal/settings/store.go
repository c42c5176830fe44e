package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/starford/notecmd/internal/checksum"
)

// Store reads and writes the settings file.
type Store struct {
	path   string
	fs     afero.Fs
	logger *slog.Logger

	mu      sync.Mutex
	lastSum string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFs replaces the OS file system, mainly for tests.
func WithFs(fs afero.Fs) StoreOption {
	return func(s *Store) { s.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store for the file at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   filepath.Clean(path),
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields Defaults; it is
// written on the first Save.
func (s *Store) Load() (Settings, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	return decode(data)
}

func decode(data []byte) (Settings, error) {
	var st Settings
	if err := yaml.Unmarshal(data, &st); err != nil {
		return Settings{}, fmt.Errorf("settings: parse: %w", err)
	}
	st.Commands.Normalize()
	if err := st.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings: validate: %w", err)
	}
	return st, nil
}

// Save validates st and atomically replaces the settings file.
func (s *Store) Save(st Settings) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("settings: validate: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, ".settings-tmp-*")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("settings: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("settings: close temp: %w", err)
	}
	// Remember the content before the rename so the watcher sees our own
	// write as unchanged.
	s.lastSum = checksum.Sum(data)
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("settings: rename: %w", err)
	}
	s.logger.Debug("settings: saved", slog.String("path", s.path))
	return nil
}

// ownWrite reports whether data is what this store last saved.
func (s *Store) ownWrite(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return checksum.Matches(data, s.lastSum)
}
