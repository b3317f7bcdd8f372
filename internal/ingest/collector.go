package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/archive"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

// Collector reads PDFs and zip bundles from the filesystem.
type Collector struct {
	unpacker   Unpacker
	filter     archive.Filter
	skipHidden bool
	logger     *slog.Logger
}

// NewCollector keeps archive entries matching marker. Hidden files and
// directories are skipped.
func NewCollector(u Unpacker, marker string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if u == nil {
		u = archive.NewZipUnpacker(logger)
	}
	return &Collector{
		unpacker:   u,
		filter:     archive.MarkerFilter{Marker: marker},
		skipHidden: true,
		logger:     logger,
	}
}

// Collect loads every path in order. Directories are walked in lexical
// order. Unreadable files are recorded in Files and do not stop collection.
func (c *Collector) Collect(ctx context.Context, paths []string) (Collection, error) {
	var out Collection
	out.Documents = []entity.RawDocument{}

	for _, root := range paths {
		if strings.TrimSpace(root) == "" {
			return out, errors.New("empty path")
		}
		info, err := os.Stat(root)
		if err != nil {
			return out, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			c.collectFile(ctx, root, &out)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out.Stats.Scanned++
			if walkErr != nil {
				out.Files = append(out.Files, FileResult{Path: path, Err: walkErr.Error()})
				out.Stats.Failed++
				return nil // continue walking
			}
			if path != root && c.skipHidden && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			c.collectMatched(ctx, path, &out)
			return nil
		})
		if err != nil {
			return out, fmt.Errorf("walk: %w", err)
		}
	}

	c.logger.Info("ingest.collect.ok",
		"paths", len(paths),
		"matched", out.Stats.Matched,
		"failed", out.Stats.Failed,
		"documents", len(out.Documents),
		"archive_excluded", out.Archive.Excluded,
	)
	return out, nil
}

func (c *Collector) collectFile(ctx context.Context, path string, out *Collection) {
	out.Stats.Scanned++
	c.collectMatched(ctx, path, out)
}

func (c *Collector) collectMatched(ctx context.Context, path string, out *Collection) {
	ext := filepath.Ext(path)
	if !AllowedExt(ext) {
		return
	}
	out.Stats.Matched++

	data, err := os.ReadFile(path)
	if err != nil {
		c.fail(out, FileResult{Path: path}, err)
		return
	}

	if !constants.IsArchiveExt(ext) {
		out.Documents = append(out.Documents, entity.RawDocument{Name: filepath.Base(path), Data: data})
		out.Files = append(out.Files, FileResult{Path: path, Documents: 1})
		out.Stats.Succeeded++
		return
	}

	entries, stats, err := c.unpacker.Unpack(ctx, data, c.filter)
	if err != nil {
		c.fail(out, FileResult{Path: path, Archive: true}, err)
		return
	}
	out.Archive.Scanned += stats.Scanned
	out.Archive.Included += stats.Included
	out.Archive.Excluded += stats.Excluded
	for _, e := range entries {
		out.Documents = append(out.Documents, entity.RawDocument{Name: e.Name, Data: e.Data})
	}
	out.Files = append(out.Files, FileResult{Path: path, Archive: true, Documents: len(entries)})
	out.Stats.Succeeded++
}

func (c *Collector) fail(out *Collection, res FileResult, err error) {
	res.Err = err.Error()
	out.Files = append(out.Files, res)
	out.Stats.Failed++
	c.logger.Warn("ingest.file.failed", "path", res.Path, "error", err)
}
