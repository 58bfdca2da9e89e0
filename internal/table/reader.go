package table

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
)

// ErrNoFiles is returned when a period selects no files.
var ErrNoFiles = errors.New("no files for period")

// Reader loads observation files from disk.
type Reader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReader creates a Reader.
func NewReader(logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{logger: logger, metrics: metrics}
}

// ReadFile reduces a single CSV file.
func (r *Reader) ReadFile(path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	obs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	r.metrics.FilesLoaded.Inc()
	r.metrics.RowsLoaded.Add(float64(len(obs)))
	r.logger.Debug("file loaded", "path", path, "rows", len(obs))
	return obs, nil
}

// ReadPeriod concatenates every file in dir whose name starts with the
// period label, in file name order. Any unreadable file fails the whole read.
func (r *Reader) ReadPeriod(dir string, p domain.Period) ([]domain.Observation, error) {
	files, err := PeriodFiles(dir, p)
	if err != nil {
		return nil, err
	}

	var all []domain.Observation
	for _, path := range files {
		obs, err := r.ReadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, obs...)
	}

	r.logger.Info("period loaded", "period", p.String(), "files", len(files), "rows", len(all))
	return all, nil
}

// PeriodFiles lists the regular files in dir selected by p, sorted by name.
func PeriodFiles(dir string, p domain.Period) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !p.Matches(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w %s in %s", ErrNoFiles, p, dir)
	}
	return files, nil
}
