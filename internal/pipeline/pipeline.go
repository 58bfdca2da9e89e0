package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
	"github.com/couchcryptid/marine-obs-maps/internal/render"
)

// Downloader persists sampled days of raw observations.
type Downloader interface {
	Download(ctx context.Context, year, monthStart, monthEnd int) ([]string, error)
}

// ObservationReader loads reduced observations from files.
type ObservationReader interface {
	ReadFile(path string) ([]domain.Observation, error)
	ReadPeriod(dir string, p domain.Period) ([]domain.Observation, error)
}

// MapRenderer draws aggregated cells onto a fresh canvas per call.
type MapRenderer interface {
	Scalar(cells []domain.GridCell, field domain.Field, date string) (*render.Canvas, error)
	Diff(cells []domain.DiffCell, field domain.Field, before, after string) (*render.Canvas, error)
	Wind(cells []domain.WindCell, period string) (*render.Canvas, error)
}

// Notifier announces saved artifacts.
type Notifier interface {
	Publish(ctx context.Context, a domain.Artifact) error
}

// Dirs groups the folders the pipeline reads from and writes to.
type Dirs struct {
	Data   string
	Output string
}

// Pipeline wires acquisition, reduction, aggregation and rendering together.
type Pipeline struct {
	downloader Downloader
	reader     ObservationReader
	renderer   MapRenderer
	meta       render.MetaSource
	notifier   Notifier
	dirs       Dirs
	unit       domain.AngleUnit
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. A nil notifier disables artifact notifications.
func New(
	d Downloader,
	r ObservationReader,
	mr MapRenderer,
	meta render.MetaSource,
	n Notifier,
	dirs Dirs,
	unit domain.AngleUnit,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Pipeline {
	return &Pipeline{
		downloader: d,
		reader:     r,
		renderer:   mr,
		meta:       meta,
		notifier:   n,
		dirs:       dirs,
		unit:       unit,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness reports whether the data folder can be listed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if _, err := os.ReadDir(p.dirs.Data); err != nil {
		return fmt.Errorf("data folder not readable: %w", err)
	}
	return nil
}

// Fetch downloads every 10th day of the month range.
func (p *Pipeline) Fetch(ctx context.Context, year, monthStart, monthEnd int) ([]string, error) {
	return p.downloader.Download(ctx, year, monthStart, monthEnd)
}

// ScalarCanvas draws the per-cell mean of field for one file.
func (p *Pipeline) ScalarCanvas(file, date string, field domain.Field) (*render.Canvas, int, error) {
	if _, err := p.meta.Meta(field); err != nil {
		return nil, 0, err
	}
	obs, err := p.reader.ReadFile(file)
	if err != nil {
		return nil, 0, err
	}
	cells, err := p.aggregate(obs, field)
	if err != nil {
		return nil, 0, err
	}
	c, err := p.renderer.Scalar(cells, field, date)
	if err != nil {
		return nil, 0, err
	}
	return c, len(cells), nil
}

// DiffCanvas draws after minus before for the cells both periods share.
func (p *Pipeline) DiffCanvas(before, after domain.Period, field domain.Field) (*render.Canvas, int, error) {
	if _, err := p.meta.Meta(field); err != nil {
		return nil, 0, err
	}
	b, err := p.periodCells(before, field)
	if err != nil {
		return nil, 0, err
	}
	a, err := p.periodCells(after, field)
	if err != nil {
		return nil, 0, err
	}

	diff := domain.Difference(b, a)
	p.logger.Info("periods joined",
		"field", field.String(),
		"before", before.String(), "before_cells", len(b),
		"after", after.String(), "after_cells", len(a),
		"shared_cells", len(diff),
	)

	c, err := p.renderer.Diff(diff, field, before.String(), after.String())
	if err != nil {
		return nil, 0, err
	}
	return c, len(diff), nil
}

// WindCanvas draws the per-cell mean wind vector for a period.
func (p *Pipeline) WindCanvas(period domain.Period) (*render.Canvas, int, error) {
	obs, err := p.reader.ReadPeriod(p.dirs.Data, period)
	if err != nil {
		return nil, 0, err
	}
	cells, err := domain.AggregateWind(obs, p.unit)
	if err != nil {
		return nil, 0, err
	}
	p.metrics.CellsAggregated.WithLabelValues("WIND").Add(float64(len(cells)))

	c, err := p.renderer.Wind(cells, period.String())
	if err != nil {
		return nil, 0, err
	}
	return c, len(cells), nil
}

// GlobalMap renders and saves a single-date scalar map.
func (p *Pipeline) GlobalMap(ctx context.Context, file, date string, field domain.Field) (domain.Artifact, error) {
	c, n, err := p.ScalarCanvas(file, date, field)
	if err != nil {
		return domain.Artifact{}, err
	}
	meta, err := p.meta.Meta(field)
	if err != nil {
		return domain.Artifact{}, err
	}
	path := render.ScalarPath(p.dirs.Output, field, meta.Title, date)
	return p.save(ctx, c, domain.NewArtifact(domain.KindScalar, field.String(), path, n, date))
}

// DiffMap renders and saves the difference between two periods.
func (p *Pipeline) DiffMap(ctx context.Context, before, after domain.Period, field domain.Field) (domain.Artifact, error) {
	c, n, err := p.DiffCanvas(before, after, field)
	if err != nil {
		return domain.Artifact{}, err
	}
	meta, err := p.meta.Meta(field)
	if err != nil {
		return domain.Artifact{}, err
	}
	path := render.DiffPath(p.dirs.Output, field, meta.Title, before.String(), after.String())
	return p.save(ctx, c, domain.NewArtifact(domain.KindDiff, field.String(), path, n, before.String(), after.String()))
}

// WindMap renders and saves the wind vector map for a period.
func (p *Pipeline) WindMap(ctx context.Context, period domain.Period) (domain.Artifact, error) {
	c, n, err := p.WindCanvas(period)
	if err != nil {
		return domain.Artifact{}, err
	}
	path := render.WindPath(p.dirs.Output, period.String(), p.unit)
	return p.save(ctx, c, domain.NewArtifact(domain.KindWind, "", path, n, period.String(), string(p.unit)))
}

func (p *Pipeline) aggregate(obs []domain.Observation, field domain.Field) ([]domain.GridCell, error) {
	cells, err := domain.Aggregate(obs, field)
	if err != nil {
		return nil, err
	}
	p.metrics.CellsAggregated.WithLabelValues(field.String()).Add(float64(len(cells)))
	return cells, nil
}

func (p *Pipeline) periodCells(period domain.Period, field domain.Field) ([]domain.GridCell, error) {
	obs, err := p.reader.ReadPeriod(p.dirs.Data, period)
	if err != nil {
		return nil, fmt.Errorf("period %s: %w", period, err)
	}
	return p.aggregate(obs, field)
}

// save writes the canvas and publishes the artifact. A failed notification
// is logged; the image on disk is the result.
func (p *Pipeline) save(ctx context.Context, c *render.Canvas, a domain.Artifact) (domain.Artifact, error) {
	if err := c.Save(a.Path); err != nil {
		return domain.Artifact{}, err
	}
	p.metrics.MapsRendered.WithLabelValues(a.Kind).Inc()
	p.logger.Info("map saved", "kind", a.Kind, "field", a.Field, "path", a.Path, "cells", a.Cells)

	if p.notifier == nil {
		return a, nil
	}
	if err := p.notifier.Publish(ctx, a); err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Warn("artifact notification failed", "path", filepath.Base(a.Path), "error", err)
		}
	}
	return a, nil
}
