package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/config"
	"github.com/ochtii/wannfahrma-v1/internal/logging"
	"github.com/ochtii/wannfahrma-v1/internal/static"
)

func main() {
	inputDir := flag.String("input", "", "Directory containing the Wiener Linien OGD CSV files (overrides CATALOG_INPUT_DIR)")
	outputDir := flag.String("output", "", "Directory the catalog JSON files are written to (overrides CATALOG_OUTPUT_DIR)")
	flag.Parse()

	// Load .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	result, err := static.Build(cfg, logger)
	if err != nil {
		logger.Error("catalog build failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	if err := result.Report.WriteText(os.Stdout); err != nil {
		logger.Warn("failed to write report", zap.Error(err))
	}
}
