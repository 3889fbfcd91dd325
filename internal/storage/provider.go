// Package storage defines the rooted file-system abstraction used for
// exports, uploaded media and the import inbox.
package storage

import "github.com/starford/craftfolder/internal/models"

// Provider is the interface for file operations under one root directory.
// Every path is relative to that root.
type Provider interface {
	// List returns metadata for the files directly in dir whose names end with ext.
	// An empty ext matches every file.
	List(dir, ext string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Abs resolves path to an absolute file name inside the root.
	Abs(path string) (string, error)
}
