// Package archive unpacks zip bundles of invoices and filters their entries
// by a distributor marker in the entry name.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/common"
)

// DefaultMaxEntrySize caps a single decompressed entry.
const DefaultMaxEntrySize = 64 << 20

// Entry is one file taken from an archive.
type Entry struct {
	Name string
	Data []byte
}

// Stats counts what the filter kept and dropped.
type Stats struct {
	Scanned  int `json:"scanned"`
	Included int `json:"included"`
	Excluded int `json:"excluded"`
}

// Filter decides whether an entry name is processed.
type Filter interface {
	Match(name string) bool
}

// MarkerFilter keeps names containing Marker, case-insensitively. An empty
// marker keeps everything.
type MarkerFilter struct {
	Marker string
}

func (f MarkerFilter) Match(name string) bool {
	if f.Marker == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(f.Marker))
}

// Select splits names into included and excluded, preserving order.
func Select(names []string, f Filter) (included []string, stats Stats) {
	for _, n := range names {
		stats.Scanned++
		if f.Match(n) {
			included = append(included, n)
			stats.Included++
			continue
		}
		stats.Excluded++
	}
	return included, stats
}

// ZipUnpacker reads PDF entries out of zip archives.
type ZipUnpacker struct {
	MaxEntrySize int64
	logger       *slog.Logger
}

// NewZipUnpacker returns an unpacker with the default entry size cap.
func NewZipUnpacker(logger *slog.Logger) *ZipUnpacker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZipUnpacker{MaxEntrySize: DefaultMaxEntrySize, logger: logger}
}

// Unpack returns PDF entries matching f in archive order. Directories and
// non-PDF files are skipped without counting; PDFs not matching f count as
// excluded.
func (u *ZipUnpacker) Unpack(ctx context.Context, data []byte, f Filter) ([]Entry, Stats, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, Stats{}, common.NewAppError(common.CodeArchive, "open zip", fmt.Errorf("%w: %v", common.ErrArchive, err))
	}
	if f == nil {
		f = MarkerFilter{}
	}

	var (
		entries []Entry
		stats   Stats
	)
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if zf.FileInfo().IsDir() || !constants.IsDocumentExt(path.Ext(zf.Name)) {
			continue
		}
		stats.Scanned++
		if !f.Match(zf.Name) {
			stats.Excluded++
			u.logger.Debug("archive.entry.excluded", "entry", zf.Name)
			continue
		}

		b, err := u.read(zf)
		if err != nil {
			return nil, stats, common.NewAppError(common.CodeArchive, "read "+zf.Name, fmt.Errorf("%w: %v", common.ErrArchive, err))
		}
		stats.Included++
		entries = append(entries, Entry{Name: zf.Name, Data: b})
	}

	u.logger.Info("archive.unpack.ok",
		"scanned", stats.Scanned,
		"included", stats.Included,
		"excluded", stats.Excluded,
	)
	return entries, stats, nil
}

func (u *ZipUnpacker) read(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	limit := u.MaxEntrySize
	if limit <= 0 {
		limit = DefaultMaxEntrySize
	}
	b, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("entry exceeds %d bytes", limit)
	}
	return b, nil
}
