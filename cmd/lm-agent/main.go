package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LanMeter/internal/accounting"
	"LanMeter/internal/capture"
	"LanMeter/internal/config"
	"LanMeter/internal/logging"
	"LanMeter/internal/mapping"
	"LanMeter/internal/metrics"
	"LanMeter/internal/publish"
	"LanMeter/internal/subnet"

	"github.com/gorilla/mux"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config file. A missing file falls back to compiled-in defaults.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.Fatalf("Failed to load config: %v", err)
	}
	logging.SetLevel(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		if err := logging.EnableFileLogging(cfg.Logging.Dir, cfg.Logging.File,
			cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays); err != nil {
			logging.Fatalf("Failed to enable file logging: %v", err)
		}
	}

	logging.Infof("Starting lm-agent version %s", version)
	startedAt := time.Now()

	publishInterval, err := cfg.PublishInterval()
	if err != nil {
		logging.Fatalf("Invalid config: %v", err)
	}
	refreshInterval, err := cfg.RefreshInterval()
	if err != nil {
		logging.Fatalf("Invalid config: %v", err)
	}

	subnets := subnet.New(cfg.LocalSubnets)

	// Seed the resolver from the authority; fall back to the hardcoded
	// default mapping when it is unreachable. The refresher heals this on
	// its next tick.
	resolver := mapping.NewResolver(mapping.DefaultStatus())
	refresher := mapping.NewRefresher(cfg.Mapping.AuthorityURL, refreshInterval, resolver)

	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), 5*time.Second)
	if doc, err := refresher.FetchOnce(fetchCtx); err != nil {
		logging.Errorf("Failed to fetch initial NIC mappings: %v", err)
		logging.Errorf("Using default configuration")
	} else {
		resolver.Replace(doc)
		logging.Infof("Fetched NIC mappings: %d endpoints", len(doc.Mappings))
	}
	cancelFetch()

	stats := accounting.NewTrafficStats()
	gauges := metrics.New()

	// Optional per-window summary publisher. Accounting never depends on
	// it, so a connection failure degrades rather than aborts.
	var sink metrics.WindowSink
	if cfg.NATS.URL != "" {
		natsPub, err := publish.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logging.Errorf("Failed to connect to NATS, window summaries disabled: %v", err)
		} else {
			defer natsPub.Close()
			sink = natsPub
		}
	}

	captureIface := cfg.Capture.Interface
	if captureIface == "" {
		captureIface = resolver.Current().Config.LAN
	}
	handle, err := capture.OpenLive(captureIface)
	if err != nil {
		logging.Fatalf("Cannot start capture: %v", err)
	}

	loop := capture.NewLoop(handle, subnets, resolver, stats)
	loop.Start()
	logging.Infof("Started capturing on %s", captureIface)

	publisher := metrics.NewPublisher(stats, gauges, sink, publishInterval)
	publisher.Start()
	refresher.Start()

	router := mux.NewRouter()
	router.Handle("/metrics", gauges.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "ok",
			"version":        version,
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		})
	}).Methods("GET")

	server := &http.Server{
		Addr:    cfg.Metrics.ListenAddr,
		Handler: router,
	}
	go func() {
		logging.Infof("Prometheus metrics server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logging.Infof("Shutdown signal received, stopping...")
	loop.Stop()
	publisher.Stop()
	refresher.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("HTTP server forced to shutdown: %v", err)
	}
	logging.Infof("Shutdown complete")
}
