// Package export writes prospect records to report files in several formats.
// Each export method is safe to call repeatedly; every call produces a fresh
// timestamped file and never mutates its input.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itsikram/client-hunter/internal/prospect"
)

// FileExporter writes reports under OutputDir, naming files
// <prefix>_<kind>_<timestamp>.<ext>.
type FileExporter struct {
	OutputDir string
	Prefix    string
	Logger    *slog.Logger

	// now is swappable for deterministic filenames in tests.
	now func() time.Time
}

func New(outputDir, prefix string, logger *slog.Logger) *FileExporter {
	if prefix == "" {
		prefix = "prospects"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExporter{
		OutputDir: outputDir,
		Prefix:    prefix,
		Logger:    logger,
		now:       time.Now,
	}
}

func (e *FileExporter) path(kind, ext string) (string, error) {
	if e.OutputDir != "" {
		if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	stamp := e.now().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s_%s.%s", e.Prefix, kind, stamp, ext)
	return filepath.Join(e.OutputDir, name), nil
}

// ExportAll writes every format. The four files are written concurrently;
// a failure in one does not undo the others. Paths of the files that were
// requested are returned in a fixed order (tabular, structured, flat,
// narrative) alongside the first error encountered.
func (e *FileExporter) ExportAll(records []*prospect.Record) ([]string, error) {
	paths := make([]string, 4)
	var g errgroup.Group

	g.Go(func() error {
		p, err := e.ExportTabular(records)
		paths[0] = p
		return err
	})
	g.Go(func() error {
		p, err := e.ExportStructured(records)
		paths[1] = p
		return err
	})
	g.Go(func() error {
		p, err := e.ExportFlatList(records)
		paths[2] = p
		return err
	})
	g.Go(func() error {
		p, err := e.ExportNarrative(records)
		paths[3] = p
		return err
	})

	err := g.Wait()

	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, err
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
