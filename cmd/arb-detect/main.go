// Command arb-detect runs one arbitrage detection pass over a rate
// snapshot read from a file or fetched from a spot-rates API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/config"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/detector"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/logger"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/rates"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/reporter"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

var (
	configPath   = flag.String("config", "", "path to configuration file (YAML or JSON)")
	inputPath    = flag.String("input", "", "observations file (.json or .csv); overrides the rates API")
	ratesURL     = flag.String("url", "", "spot-rates API base URL (overrides config)")
	ratesBase    = flag.String("base", "", "base currency for API snapshots (overrides config)")
	outputFormat = flag.String("format", "text", "output format: text, json, csv")
	verbose      = flag.Bool("verbose", false, "verbose output")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *ratesURL != "" {
		cfg.Rates.URL = *ratesURL
	}
	if *ratesBase != "" {
		cfg.Rates.Base = *ratesBase
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log configuration: %v\n", err)
		os.Exit(1)
	}

	observations, err := loadObservations(cfg)
	if err != nil {
		log.WithError(err).Error("failed to load observations")
		os.Exit(1)
	}
	log.WithField("observations", len(observations)).Info("loaded rate observations")

	det := detector.New(detector.Config{
		Algorithm:    detector.Algorithm(cfg.Detector.Algorithm),
		MinProfitBps: cfg.Detector.MinProfitBps,
	}, log)

	opportunities, err := det.Detect(observations)
	if err != nil {
		log.WithError(err).Error("detection failed")
		os.Exit(1)
	}

	rep := reporter.New(os.Stdout, reporter.OutputFormat(*outputFormat), *verbose)
	if err := rep.Report(opportunities); err != nil {
		log.WithError(err).Error("failed to write report")
		os.Exit(1)
	}

	if len(opportunities) == 0 {
		os.Exit(0)
	}
}

func loadObservations(cfg *config.Config) ([]types.Observation, error) {
	if *inputPath != "" {
		return rates.LoadFile(*inputPath)
	}
	if cfg.Rates.URL == "" {
		return nil, fmt.Errorf("no input: provide -input or configure rates.url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := rates.NewClient(cfg.Rates.URL, cfg.Rates.RequestsPerSec)
	snapshot, err := client.FetchSnapshot(ctx, cfg.Rates.Base)
	if err != nil {
		return nil, err
	}
	return snapshot.Expand(cfg.Rates.Fee)
}
