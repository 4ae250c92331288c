// Command arb-watch runs continuous arbitrage detection over live
// exchange feeds.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/config"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/detector"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/feed"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/logger"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/reporter"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/store"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

var (
	configPath   = flag.String("config", "", "path to configuration file (YAML or JSON)")
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

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	det := detector.New(detector.Config{
		Algorithm:    detector.Algorithm(cfg.Detector.Algorithm),
		MinProfitBps: cfg.Detector.MinProfitBps,
	}, log)
	rep := reporter.New(os.Stdout, reporter.OutputFormat(*outputFormat), *verbose)

	var dao *store.Dao
	if cfg.Store.Enabled {
		dao, err = store.NewDao(cfg.Store.Addr, cfg.Store.Schema, cfg.Store.User, cfg.Store.Password)
		if err != nil {
			log.WithError(err).Error("failed to open opportunity store")
			os.Exit(1)
		}
		log.WithField("schema", cfg.Store.Schema).Info("opportunity store enabled")
	}

	agg := feed.NewAggregator(cfg.Watch.Interval(), 3*cfg.Watch.Interval(), log)
	if err := setupFeeds(ctx, agg, cfg, log); err != nil {
		log.WithError(err).Error("failed to set up feeds")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"interval":  cfg.Watch.Interval().String(),
		"algorithm": cfg.Detector.Algorithm,
	}).Info("starting live detection")

	agg.Run(ctx, func(observations []types.Observation) {
		opportunities, err := det.Detect(observations)
		if err != nil {
			log.WithError(err).Warn("detection run failed")
			return
		}
		if err := rep.Report(opportunities); err != nil {
			log.WithError(err).Warn("failed to write report")
		}
		if dao != nil && len(opportunities) > 0 {
			if err := dao.SaveOpportunities(opportunities); err != nil {
				log.WithError(err).Warn("failed to persist opportunities")
			}
		}
	})

	rep.PrintStats()
}

func setupFeeds(ctx context.Context, agg *feed.Aggregator, cfg *config.Config, log *logrus.Logger) error {
	enabled := cfg.EnabledFeeds()
	if len(enabled) == 0 {
		return fmt.Errorf("no feeds enabled")
	}

	for _, fc := range enabled {
		var provider feed.Provider
		switch fc.Exchange {
		case "binance":
			provider = feed.NewBinanceProvider()
		case "coinbase":
			provider = feed.NewCoinbaseProvider()
		default:
			return fmt.Errorf("unknown exchange %q", fc.Exchange)
		}

		if err := provider.Connect(ctx); err != nil {
			return fmt.Errorf("connecting %s: %w", fc.Exchange, err)
		}
		if err := provider.Subscribe(fc.Pairs); err != nil {
			return fmt.Errorf("subscribing %s: %w", fc.Exchange, err)
		}

		agg.AddProvider(provider)
		log.WithFields(logger.Fields{
			"exchange": fc.Exchange,
			"pairs":    fc.Pairs,
		}).Info("feed connected")
	}
	return nil
}
