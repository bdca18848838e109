// Package archive turns a downloaded Unfallatlas zip into the canonical
// per-year CSV: extract to a scratch directory, relocate the single data
// file, clean up.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unfallatlas/accident-data-etl/internal/domain"
	"github.com/unfallatlas/accident-data-etl/internal/observability"
)

// extractedMarker flags a scratch directory whose extraction completed. A
// bare directory left by a crash is re-extracted from scratch.
const extractedMarker = ".extracted"

// dataExtensions are the tabular formats a release may ship its data file as.
var dataExtensions = map[string]bool{".csv": true, ".txt": true}

// Materializer extracts archives and relocates their data file. It implements
// pipeline.Materializer.
type Materializer struct {
	dataDir string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMaterializer creates a Materializer rooted at the data directory.
func NewMaterializer(dataDir string, logger *slog.Logger, metrics *observability.Metrics) *Materializer {
	return &Materializer{dataDir: dataDir, logger: logger, metrics: metrics}
}

// DataPath returns the canonical per-year CSV location.
func (m *Materializer) DataPath(year int) string {
	return filepath.Join(m.dataDir, fmt.Sprintf("%d.csv", year))
}

// Materialize extracts the year's archive into a per-year scratch directory,
// moves the single contained data file to {year}.csv, and removes the scratch
// directory unconditionally. The archive itself is deleted after success and
// kept for a retry otherwise. An archive with zero or multiple data files is
// an explicit ArchiveError, never a silent overwrite.
func (m *Materializer) Materialize(year int, archivePath string) error {
	scratch := filepath.Join(m.dataDir, strconv.Itoa(year))
	defer os.RemoveAll(scratch)

	if err := m.extract(year, archivePath, scratch); err != nil {
		return err
	}

	if err := m.relocate(year, archivePath, scratch); err != nil {
		return err
	}

	if err := os.Remove(archivePath); err != nil {
		m.logger.Warn("could not remove archive after materialization", "year", year, "error", err)
	}
	return nil
}

// extract unpacks the archive into scratch. A scratch directory carrying the
// completion marker counts as already extracted; anything else is rebuilt.
func (m *Materializer) extract(year int, archivePath, scratch string) error {
	if _, err := os.Stat(filepath.Join(scratch, extractedMarker)); err == nil {
		m.logger.Debug("archive already extracted", "year", year, "scratch", scratch)
		return nil
	}
	if err := os.RemoveAll(scratch); err != nil {
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
	}
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extractFile(f, scratch); err != nil {
			return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
		}
	}

	if err := os.WriteFile(filepath.Join(scratch, extractedMarker), nil, 0o644); err != nil {
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
	}

	m.metrics.ArchivesExtracted.Inc()
	m.logger.Info("archive extracted", "year", year, "files", len(zr.File))
	return nil
}

func extractFile(f *zip.File, scratch string) error {
	target := filepath.Join(scratch, f.Name)
	// Reject entries that would escape the scratch directory.
	if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(scratch)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction directory", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extract archive entry %q: %w", f.Name, err)
	}
	return nil
}

// relocate finds the one data file in the scratch tree and renames it to the
// canonical per-year location.
func (m *Materializer) relocate(year int, archivePath, scratch string) error {
	var candidates []string
	err := filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == extractedMarker {
			return nil
		}
		if dataExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
	}

	if len(candidates) != 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = filepath.Base(c)
		}
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Candidates: names}
	}

	dest := m.DataPath(year)
	if err := os.Rename(candidates[0], dest); err != nil {
		return &domain.ArchiveError{Year: year, Archive: filepath.Base(archivePath), Err: err}
	}

	m.logger.Info("data file materialized", "year", year, "path", dest)
	return nil
}
