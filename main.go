package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/ballotboard/cliparse"
	"github.com/danielhkuo/ballotboard/db"
	"github.com/danielhkuo/ballotboard/fetcher"
	"github.com/danielhkuo/ballotboard/handlers"
	"github.com/danielhkuo/ballotboard/live"
	"github.com/danielhkuo/ballotboard/metrics"
	"github.com/danielhkuo/ballotboard/middleware"
	"github.com/danielhkuo/ballotboard/router"
	"github.com/danielhkuo/ballotboard/tally"
)

func main() {
	var err error

	// A missing .env is fine; real deployments use the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(registry)

	src := fetcher.New(fetcher.Config{
		BaseURL:           cfg.UpstreamURL,
		Token:             cfg.UpstreamToken,
		RequestsPerSecond: cfg.UpstreamRPS,
		CacheTTL:          cfg.UpstreamCacheTTL,
		Metrics:           m,
	})
	agg := &tally.Aggregator{Location: loc, Metrics: m}

	boards := live.NewRegistry(src, live.Options{
		Aggregator: agg,
		PageSize:   cfg.PageSize,
		Metrics:    m,
		Intervals: live.Intervals{
			Countdown:        cfg.CountdownInterval,
			Refresh:          cfg.RefreshInterval,
			PositionCarousel: cfg.PositionCarouselInterval,
			BulletinCarousel: cfg.BulletinCarouselInterval,
		},
	})

	// Create router
	mux := router.NewRouter(dbConn, cfg, handlers.Services{
		Source:     src,
		Aggregator: agg,
		Live:       boards,
		Metrics:    m,
	}, registry)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		boards.CloseAll()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "upstream", cfg.UpstreamURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
