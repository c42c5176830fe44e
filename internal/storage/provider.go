// Package storage defines the vault file-system abstraction.
package storage

// Provider is the interface for vault file operations. Paths are
// slash-separated and relative to the vault root.
type Provider interface {
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// IsDir reports whether a folder exists at path.
	IsDir(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, replacing any existing file.
	Write(path string, content []byte) error
	// Create writes a new file and fails with apperr.ErrAlreadyExists if one is present.
	Create(path string, content []byte) error
	// CreateFolder creates the folder at path and any missing parents.
	CreateFolder(path string) error
}
