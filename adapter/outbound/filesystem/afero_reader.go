package filesystem

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// AferoReader implements outbound.DirectoryReader on top of an afero filesystem
type AferoReader struct {
	fs afero.Fs

	// access performs an extra permission check on real filesystems
	access func(dir string) error
}

// NewOSReader reads the real filesystem
func NewOSReader() outbound.DirectoryReader {
	return &AferoReader{
		fs:     afero.NewOsFs(),
		access: checkReadable,
	}
}

// NewReader wraps any afero filesystem, typically afero.NewMemMapFs in tests
func NewReader(fs afero.Fs) outbound.DirectoryReader {
	return &AferoReader{fs: fs}
}

func (r *AferoReader) CheckDirectory(dir string) error {
	info, err := r.fs.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if r.access != nil {
		return r.access(dir)
	}

	f, err := r.fs.Open(dir)
	if err != nil {
		return err
	}
	return f.Close()
}

func (r *AferoReader) ReadDir(dir string) ([]model.DirectoryEntry, error) {
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]model.DirectoryEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, model.DirectoryEntry{
			Path:    filepath.Join(dir, info.Name()),
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})
	}
	return entries, nil
}

func (r *AferoReader) Stat(path string) (model.DirectoryEntry, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return model.DirectoryEntry{}, err
	}
	return model.DirectoryEntry{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}
