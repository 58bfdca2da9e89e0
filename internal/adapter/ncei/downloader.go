package ncei

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
)

// Downloader writes one CSV per sampled day into a directory.
type Downloader struct {
	client *Client
	dir    string
	logger *slog.Logger
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(client *Client, dir string, logger *slog.Logger) *Downloader {
	return &Downloader{client: client, dir: dir, logger: logger}
}

// Path returns the file a day is written to.
func (d *Downloader) Path(day time.Time) string {
	return filepath.Join(d.dir, day.Format(domain.DateLayout)+".csv")
}

// Download fetches every 10th day of the month range. A failed day does not
// stop the others; all failures are returned joined after the loop. The
// paths of the files written are returned in date order.
func (d *Downloader) Download(ctx context.Context, year, monthStart, monthEnd int) ([]string, error) {
	days, err := domain.SampleDates(year, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download folder: %w", err)
	}

	d.logger.Info("download started", "year", year, "month_start", monthStart, "month_end", monthEnd, "days", len(days))

	var (
		written []string
		errs    []error
	)
	for _, day := range days {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		path, err := d.downloadDay(ctx, day)
		if err != nil {
			d.logger.Error("day download failed", "date", day.Format(domain.DateLayout), "error", err)
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}

	d.logger.Info("download finished", "written", len(written), "failed", len(errs))
	return written, errors.Join(errs...)
}

// downloadDay writes to a temporary file and renames it into place, so an
// interrupted transfer never leaves a truncated <date>.csv behind.
func (d *Downloader) downloadDay(ctx context.Context, day time.Time) (string, error) {
	path := d.Path(day)
	tmp, err := os.CreateTemp(d.dir, filepath.Base(path)+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	status, n, err := d.client.FetchDay(ctx, day, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		d.logger.Warn("non-200 response written as-is",
			"date", day.Format(domain.DateLayout), "status", status, "bytes", n)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move %s into place: %w", path, err)
	}
	return path, nil
}
