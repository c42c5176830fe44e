// Package testutil provides shared test helpers for vaults, settings and
// the run journal.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/notecmd/internal/history"
	"github.com/starford/notecmd/internal/settings"
	"github.com/starford/notecmd/internal/storage"
)

// TestHistory creates a journal in a temporary directory that is closed
// when the test ends.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates an in-memory vault holding files.
func TestVault(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	vault := storage.NewMemFS()
	for p, content := range files {
		if err := vault.Write(p, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return vault
}

// TestSettings creates a settings service over an in-memory file holding
// the default commands.
func TestSettings(t *testing.T) *settings.Service {
	t.Helper()
	svc, err := settings.NewService(settings.NewStore("/settings.yaml", settings.WithFs(afero.NewMemMapFs())))
	if err != nil {
		t.Fatal(err)
	}
	return svc
}
