package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	httpadapter "github.com/couchcryptid/marine-obs-maps/internal/adapter/http"
	"github.com/couchcryptid/marine-obs-maps/internal/config"
	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/pipeline"
)

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}

func runFetch(ctx context.Context, args []string, p *pipeline.Pipeline, logger *slog.Logger) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	year := fs.Int("year", time.Now().Year(), "year to download")
	from := fs.Int("from", 1, "first month (1-12)")
	to := fs.Int("to", 12, "last month (1-12), inclusive")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	paths, err := p.Fetch(ctx, *year, *from, *to)
	logger.Info("fetch complete", "files", len(paths))
	return err
}

func runMap(ctx context.Context, args []string, p *pipeline.Pipeline) error {
	fs := flag.NewFlagSet("map", flag.ContinueOnError)
	file := fs.String("file", "", "CSV file to map")
	date := fs.String("date", "", "date label for the title and file name")
	fieldName := fs.String("field", "", "AIR_TEMP, SEA_SURF_TEMP or SEA_LVL_PRES")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" || *date == "" {
		fs.Usage()
		return errUsage
	}
	field, err := domain.ParseField(*fieldName)
	if err != nil {
		return err
	}

	_, err = p.GlobalMap(ctx, *file, *date, field)
	return err
}

func runDiff(ctx context.Context, args []string, p *pipeline.Pipeline) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	beforeLabel := fs.String("before", "", "earlier period label, e.g. 2021-01")
	afterLabel := fs.String("after", "", "later period label, e.g. 2021-07")
	fieldName := fs.String("field", "", "AIR_TEMP, SEA_SURF_TEMP or SEA_LVL_PRES")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	field, err := domain.ParseField(*fieldName)
	if err != nil {
		return err
	}
	before, err := domain.ParsePeriod(*beforeLabel)
	if err != nil {
		return err
	}
	after, err := domain.ParsePeriod(*afterLabel)
	if err != nil {
		return err
	}

	_, err = p.DiffMap(ctx, before, after, field)
	return err
}

func runWind(ctx context.Context, args []string, p *pipeline.Pipeline) error {
	fs := flag.NewFlagSet("wind", flag.ContinueOnError)
	label := fs.String("period", "", "period label, e.g. 2021-01")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	period, err := domain.ParsePeriod(*label)
	if err != nil {
		return err
	}

	_, err = p.WindMap(ctx, period)
	return err
}

func runServe(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) error {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, cfg.DataDir, logger)

	errc := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
