package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/starford/notecmd/internal/apperr"
)

// FS implements Provider on top of an afero file system.
type FS struct {
	fs afero.Fs
}

// NewFS creates a Provider rooted at the given directory on disk.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{fs: afero.NewBasePathFs(afero.NewOsFs(), abs)}, nil
}

// NewMemFS creates an empty in-memory vault.
func NewMemFS() *FS {
	return &FS{fs: afero.NewMemMapFs()}
}

// Afero exposes the underlying file system.
func (f *FS) Afero() afero.Fs {
	return f.fs
}

// cleanPath normalises a vault-relative path and rejects anything that would
// escape the vault.
func cleanPath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path: %w", apperr.ErrInvalidInput)
	}
	slashed := strings.ReplaceAll(rel, "\\", "/")
	if path.IsAbs(slashed) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidInput)
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage: path escapes vault root: %s: %w", rel, apperr.ErrInvalidInput)
	}
	return filepath.FromSlash(cleaned), nil
}

// Exists reports whether a regular file exists at p.
func (f *FS) Exists(p string) bool {
	cp, err := cleanPath(p)
	if err != nil {
		return false
	}
	info, err := f.fs.Stat(cp)
	return err == nil && !info.IsDir()
}

// IsDir reports whether a folder exists at p.
func (f *FS) IsDir(p string) bool {
	cp, err := cleanPath(p)
	if err != nil {
		return false
	}
	ok, err := afero.IsDir(f.fs, cp)
	return err == nil && ok
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(p string) ([]byte, error) {
	cp, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(f.fs, cp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", p, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(p string, content []byte) error {
	cp, err := cleanPath(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(cp)
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := afero.TempFile(f.fs, dir, ".notecmd-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = f.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := f.fs.Rename(tmpName, cp); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Create writes a new file. An existing file is never overwritten.
func (f *FS) Create(p string, content []byte) error {
	if f.Exists(p) {
		return fmt.Errorf("storage: create %s: %w", p, apperr.ErrAlreadyExists)
	}
	return f.Write(p, content)
}

// CreateFolder creates the folder at p and any missing parents.
func (f *FS) CreateFolder(p string) error {
	cp, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := f.fs.MkdirAll(cp, 0o755); err != nil {
		return fmt.Errorf("storage: create folder %s: %w", p, err)
	}
	return nil
}

// List returns the vault-relative paths of all Markdown notes, sorted.
// Temporary files left by Write are skipped.
func (f *FS) List() ([]string, error) {
	var out []string
	err := afero.Walk(f.fs, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".md") || strings.HasPrefix(info.Name(), ".notecmd-tmp-") {
			return nil
		}
		out = append(out, filepath.ToSlash(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Strings(out)
	return out, nil
}
