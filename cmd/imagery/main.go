package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/adapters/nasa"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/adapters/sentinelhub"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/adapters/transport"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/config"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/exitcode"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/imagery"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/logging"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/metrics"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/storage"
)

func main() {
	// Create a cancellable context (for graceful shutdown)
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// flags holds the parsed command line.
type flags struct {
	lat       float64
	lon       float64
	date      string
	providers string
	runID     string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("imagery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&f.lat, "lat", 17.4065, "Latitude in degrees [-90, 90]")
	fs.Float64Var(&f.lon, "lon", 78.4772, "Longitude in degrees [-180, 180]")
	fs.StringVar(&f.date, "date", time.Now().UTC().Format(model.DateLayout), "Acquisition date (YYYY-MM-DD)")
	fs.StringVar(&f.providers, "provider", "all", "Providers to query: all, sentinelhub, nasa (comma-separated)")
	fs.StringVar(&f.runID, "run-id", "", "Run identifier (UUIDv7); generated when empty")
	err := fs.Parse(args)
	return f, err
}

// run executes one imagery job and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Configure the global logger until the configured level is known
	logging.Setup(stdout, "info", "json")

	f, err := parseFlags(args, stderr)
	if err != nil {
		return exitcode.ConfigError
	}

	// Parse and validate flags
	providers, err := model.ParseProviders(f.providers)
	if err != nil {
		slog.Error("invalid provider", "error", err)
		fmt.Fprintf(stderr, "Usage: %v\n", err)
		return exitcode.ConfigError
	}
	date, err := model.ParseDate(f.date)
	if err != nil {
		slog.Error("invalid date", "date", f.date, "error", err)
		fmt.Fprintf(stderr, "Usage: date must be a calendar date such as 2023-12-01\n")
		return exitcode.ConfigError
	}
	query := imagery.Query{Coordinate: model.Coordinate{Lat: f.lat, Lon: f.lon}, Date: date}
	if err := query.Validate(); err != nil {
		slog.Error("invalid coordinate", "error", err)
		fmt.Fprintf(stderr, "Usage: %v\n", err)
		return exitcode.ConfigError
	}
	runID, err := resolveRunID(f.runID)
	if err != nil {
		slog.Error("invalid run-id", "error", err)
		fmt.Fprintf(stderr, "Usage: run-id must be a UUIDv7\n")
		return exitcode.ConfigError
	}

	// Ensure environment variables are loaded
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitcode.ConfigError
	}
	logging.Setup(stdout, cfg.LogLevel, cfg.LogFormat)

	httpClient := transport.NewHTTPClient(transport.Options{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.HTTPMaxRetries,
	})
	fetchers, err := newFetchers(cfg, providers, httpClient)
	if err != nil {
		slog.Error("missing provider credentials", "error", err)
		return exitcode.ConfigError
	}

	var objectStorage imagery.ObjectStorage
	if cfg.MinIOEnabled() {
		minioClient, err := storage.NewMinIOClient(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			slog.Error("failed to initialize minio client", "error", err)
			return exitcode.StorageError
		}
		objectStorage = minioClient
	}

	var recorder *metrics.Recorder
	var svcMetrics imagery.Metrics
	if cfg.PushgatewayURL != "" {
		recorder = metrics.NewRecorder()
		svcMetrics = recorder
	}

	svc := imagery.NewService(fetchers, objectStorage, svcMetrics)

	slog.Info("imagery job started", "run_id", runID, "providers", providers, "lat", f.lat, "lon", f.lon, "date", date.String())
	outcomes, err := svc.Run(ctx, query, runID)
	if err != nil {
		slog.Error("invalid query", "error", err)
		return exitcode.For(err)
	}

	if recorder != nil {
		if err := recorder.Push(ctx, cfg.PushgatewayURL, runID); err != nil {
			slog.Warn("failed to push metrics", "error", err)
		}
	}

	code := exitcode.For(imagery.FirstError(outcomes))
	slog.Info("imagery job complete", "run_id", runID, "exit_code", code)
	return code
}

func resolveRunID(s string) (model.RunID, error) {
	if s == "" {
		return model.NewRunID()
	}
	runID := model.RunID(s)
	return runID, runID.Validate()
}

// newFetchers checks every selected provider's credentials before constructing any client.
func newFetchers(cfg *config.Config, providers []model.Provider, httpClient *http.Client) ([]imagery.Fetcher, error) {
	for _, p := range providers {
		if err := cfg.RequireProvider(p); err != nil {
			return nil, err
		}
	}

	fetchers := make([]imagery.Fetcher, 0, len(providers))
	for _, p := range providers {
		switch p {
		case model.SentinelHub:
			fetchers = append(fetchers, sentinelhub.NewClient(sentinelhub.Config{
				BaseURL:      cfg.SentinelHubBaseURL,
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
			}, httpClient))
		case model.NASA:
			fetchers = append(fetchers, nasa.NewClient(nasa.Config{
				BaseURL: cfg.NASABaseURL,
				APIKey:  cfg.NASAAPIKey,
			}, httpClient))
		}
	}
	return fetchers, nil
}
