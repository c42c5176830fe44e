package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notecmd/internal/apperr"
)

func tempVault(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	require.NoError(t, err)
	return fs, dir
}

func TestWriteAndRead(t *testing.T) {
	s := NewMemFS()
	content := []byte("# Hello\nWorld\n")
	require.NoError(t, s.Write("note.md", content))

	got, err := s.Read("note.md")
	require.NoError(t, err)
	assert.Equal(t, string(content), string(got))
	assert.True(t, s.Exists("note.md"))
}

func TestReadMissing(t *testing.T) {
	s := NewMemFS()
	_, err := s.Read("nope.md")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s, dir := tempVault(t)
	require.NoError(t, s.Write("a/b/c.md", []byte("deep")))

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.md"))
	require.NoError(t, err, "file not on disk")
	assert.Equal(t, "deep", string(data))
	assert.True(t, s.IsDir("a/b"))
}

func TestCreateNeverOverwrites(t *testing.T) {
	s := NewMemFS()
	require.NoError(t, s.Create("daily/today.md", []byte("first")))
	require.ErrorIs(t, s.Create("daily/today.md", []byte("second")), apperr.ErrAlreadyExists)

	got, _ := s.Read("daily/today.md")
	assert.Equal(t, "first", string(got))
}

func TestCreateFolder(t *testing.T) {
	s := NewMemFS()
	require.NoError(t, s.CreateFolder("Daily/2024"))
	assert.True(t, s.IsDir("Daily/2024"))
	assert.False(t, s.Exists("Daily/2024"), "Exists is for notes only")
}

func TestTraversalBlocked(t *testing.T) {
	s, _ := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		_, err := s.Read(p)
		assert.Error(t, err, "read %q", p)
		assert.Error(t, s.Write(p, []byte("x")), "write %q", p)
		assert.False(t, s.Exists(p), "exists %q", p)
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := NewMemFS()
	_ = s.Write("atomic.md", []byte("original content"))
	require.NoError(t, s.Write("atomic.md", []byte("updated content")))

	got, _ := s.Read("atomic.md")
	assert.Equal(t, "updated content", string(got))

	matches, _ := afero.Glob(s.Afero(), ".notecmd-tmp-*")
	assert.Empty(t, matches, "leftover temp files")
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestNewFS_FileNotDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notecmd-test")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	_, err := NewFS(p)
	assert.Error(t, err, "root is a file")
}

func TestList(t *testing.T) {
	s := NewMemFS()
	for _, p := range []string{"b.md", "Daily/2024-03-05.md", "a.md", "notes.txt"} {
		require.NoError(t, s.Write(p, []byte("x")), p)
	}
	got, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Daily/2024-03-05.md", "a.md", "b.md"}, got)
}
