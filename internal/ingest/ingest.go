// Package ingest discovers invoice files on disk and loads them as raw
// documents, expanding zip bundles through the archive unpacker.
package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/archive"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path      string
	Archive   bool
	Documents int
	Err       string
}

// DirStats summarizes a collection.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Collection is everything gathered from a set of paths.
type Collection struct {
	Documents []entity.RawDocument
	Files     []FileResult
	Stats     DirStats
	Archive   archive.Stats
}

// Unpacker yields archive entries that pass the filter.
type Unpacker interface {
	Unpack(ctx context.Context, data []byte, f archive.Filter) ([]archive.Entry, archive.Stats, error)
}

// AllowedExt checks if a file extension is one we ingest (pdf or zip).
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
