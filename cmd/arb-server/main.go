// Command arb-server exposes arbitrage detection over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/api"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/config"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/detector"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/logger"
	"github.com/Mx2468/bellman-ford-arbitrage/pkg/store"
)

var configPath = flag.String("config", "", "path to configuration file (YAML or JSON)")

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

	det := detector.New(detector.Config{
		Algorithm:    detector.Algorithm(cfg.Detector.Algorithm),
		MinProfitBps: cfg.Detector.MinProfitBps,
	}, log)

	var history api.History
	if cfg.Store.Enabled {
		dao, err := store.NewDao(cfg.Store.Addr, cfg.Store.Schema, cfg.Store.User, cfg.Store.Password)
		if err != nil {
			log.WithError(err).Error("failed to open opportunity store")
			os.Exit(1)
		}
		history = dao
	} else {
		history = api.NewMemoryHistory(cfg.Server.HistorySize)
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(det, history, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("shutdown error")
		}
	}()

	log.WithField("addr", cfg.Server.Addr).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server failed")
		os.Exit(1)
	}
}
