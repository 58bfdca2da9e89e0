// Command marinemap downloads NCEI global-marine observations and renders
// gridded world maps from them.
//
// Usage:
//
//	marinemap fetch -year 2021 -from 1 -to 3
//	marinemap map   -file data/2021-01-01.csv -date 2021-01-01 -field AIR_TEMP
//	marinemap diff  -before 2021-01 -after 2021-07 -field SEA_LVL_PRES
//	marinemap wind  -period 2021-01
//	marinemap serve
//
// Settings come from the environment (see internal/config).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gonum.org/v1/plot/vg"

	kafkaadapter "github.com/couchcryptid/marine-obs-maps/internal/adapter/kafka"
	"github.com/couchcryptid/marine-obs-maps/internal/adapter/ncei"
	"github.com/couchcryptid/marine-obs-maps/internal/config"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
	"github.com/couchcryptid/marine-obs-maps/internal/pipeline"
	"github.com/couchcryptid/marine-obs-maps/internal/render"
	"github.com/couchcryptid/marine-obs-maps/internal/table"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	profile, err := config.LoadProfile(cfg.RenderProfile)
	if err != nil {
		logger.Error("failed to load render profile", "error", err)
		os.Exit(1)
	}

	// Artifact notifications are feature-flagged via KAFKA_BROKERS.
	var notifier pipeline.Notifier
	var closeNotifier func() error
	if cfg.KafkaEnabled() {
		n := kafkaadapter.NewNotifier(cfg, logger, metrics)
		notifier, closeNotifier = n, n.Close
		logger.Info("artifact notifications enabled", "topic", cfg.KafkaArtifactTopic)
	}

	renderer := render.NewRenderer(profile, render.Size{
		Width:  vg.Length(profile.Width) * vg.Inch,
		Height: vg.Length(profile.Height) * vg.Inch,
	}, metrics)
	if profile.Basemap != "" {
		basemap, err := render.LoadBasemapFile(profile.Basemap)
		if err != nil {
			logger.Error("failed to load basemap", "error", err)
			os.Exit(1)
		}
		renderer.WithBasemap(basemap)
		logger.Info("basemap loaded", "path", profile.Basemap)
	}

	client := ncei.NewClient(cfg.NCEIBaseURL, cfg.NCEITimeout, logger, metrics)
	p := pipeline.New(
		ncei.NewDownloader(client, cfg.DownloadDir, logger),
		table.NewReader(logger, metrics),
		renderer,
		profile,
		notifier,
		pipeline.Dirs{Data: cfg.DataDir, Output: cfg.OutputDir},
		cfg.WindAngleUnit,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cmd := os.Args[1]
	err = dispatch(ctx, cmd, os.Args[2:], cfg, p, logger)
	stop()

	if closeNotifier != nil {
		if cerr := closeNotifier(); cerr != nil {
			logger.Error("kafka notifier close error", "error", cerr)
		}
	}
	if cfg.MetricsFile != "" && cmd != "serve" {
		if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Error("metrics textfile write error", "path", cfg.MetricsFile, "error", werr)
		}
	}

	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, cmd string, args []string, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) error {
	switch cmd {
	case "fetch":
		return runFetch(ctx, args, p, logger)
	case "map":
		return runMap(ctx, args, p)
	case "diff":
		return runDiff(ctx, args, p)
	case "wind":
		return runWind(ctx, args, p)
	case "serve":
		return runServe(ctx, cfg, p, logger)
	default:
		usage()
		return errUsage
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: marinemap <fetch|map|diff|wind|serve> [flags]")
}
