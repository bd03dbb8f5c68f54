package service

import (
	"path/filepath"
	"strings"

	"github.com/ajkula/GoArrival/domain/model"
)

// CandidateFilter decides which directory entries may represent an arriving file.
// Both detectors share it so they accept exactly the same names.
type CandidateFilter struct {
	extension       string
	transientPrefix string
}

func NewCandidateFilter(opts model.DetectionOptions) CandidateFilter {
	opts = opts.Normalize()
	return CandidateFilter{
		extension:       opts.Extension,
		transientPrefix: opts.TransientPrefix,
	}
}

// Accepts reports whether entry is an eligible candidate. Directories never are.
func (f CandidateFilter) Accepts(entry model.DirectoryEntry) bool {
	if entry.IsDir {
		return false
	}
	name := entry.Name
	if name == "" {
		name = filepath.Base(entry.Path)
	}
	return f.AcceptsName(name)
}

// AcceptsName applies the extension and transient-prefix rules to a base name
func (f CandidateFilter) AcceptsName(name string) bool {
	if name == "" || strings.HasPrefix(name, f.transientPrefix) {
		return false
	}
	return strings.ToLower(filepath.Ext(name)) == f.extension
}
