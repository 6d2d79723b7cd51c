// Package static builds the station and line catalog from the Wiener Linien
// open data files.
package static

import (
	"time"

	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/config"
	"github.com/ochtii/wannfahrma-v1/internal/metrics"
	"github.com/ochtii/wannfahrma-v1/internal/static/catalog"
	"github.com/ochtii/wannfahrma-v1/internal/static/ogd"
)

// Result is the outcome of a successful build
type Result struct {
	Stations []catalog.Station
	Lines    []catalog.Line
	Manifest *catalog.Manifest
	Report   metrics.Report
}

// Build runs load, aggregation, normalization and export in order and
// summarizes the exported catalog. Any load, key or export failure aborts the
// run and is returned unchanged so callers can match it with errors.As.
func Build(cfg *config.Config, log *zap.Logger) (*Result, error) {
	return BuildWith(cfg, catalog.NewExporter(cfg.OutputDir, log), log)
}

// BuildWith is Build with a caller-supplied exporter
func BuildWith(cfg *config.Config, exporter *catalog.Exporter, log *zap.Logger) (*Result, error) {
	start := time.Now()
	log.Info("catalog build started",
		zap.String("input_dir", cfg.InputDir),
		zap.String("output_dir", exporter.OutputDir),
	)

	ds, err := ogd.Load(cfg.InputDir, log)
	if err != nil {
		return nil, err
	}

	stations, err := catalog.AggregateStations(ds.Stations, ds.BoardingPoints, ds.Platforms, log)
	if err != nil {
		return nil, err
	}
	lines := catalog.NormalizeLines(ds.Lines, log)

	manifest, err := exporter.Export(stations, lines)
	if err != nil {
		return nil, err
	}

	report := metrics.Summarize(stations, lines, cfg.StatsTopN)
	log.Info("catalog build finished",
		append(report.Fields(),
			zap.String("build_id", manifest.BuildID),
			zap.Duration("duration", time.Since(start)),
		)...,
	)

	return &Result{
		Stations: stations,
		Lines:    lines,
		Manifest: manifest,
		Report:   report,
	}, nil
}
