package outbound

import "github.com/ajkula/GoArrival/domain/model"

// DirectoryReader is the read-only view of the filesystem used by the detectors.
// Implementations never write, move or delete entries.
type DirectoryReader interface {
	// CheckDirectory returns an error when dir is missing, not a directory or unreadable
	CheckDirectory(dir string) error

	// ReadDir lists the direct children of dir
	ReadDir(dir string) ([]model.DirectoryEntry, error)

	// Stat observes a single path
	Stat(path string) (model.DirectoryEntry, error)
}
