package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-blob/pkg/simpleblob/api"
	"github.com/tendant/simple-blob/pkg/simpleblob/config"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("simple-blob", flag.ContinueOnError)
	configFile := flags.String("config", "", "optional YAML/JSON/TOML config file, environment variables take precedence")
	flags.Usage = cleanenv.FUsage(flags.Output(), &config.ServerConfig{}, nil, flags.PrintDefaults)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.WithFile(*configFile), config.WithEnv())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := cfg.BuildLogger(os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	svc, closeSinks, err := cfg.BuildService(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer closeSinks()

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: api.NewRouter(svc, api.RouterConfig{
			MaxUploadBytes: cfg.MaxUploadBytes,
			Logger:         logger,
		}),
		// No read or write timeout: uploads and downloads may stream for a long time
		ReadHeaderTimeout: 20 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		slog.Info("Simple Blob server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"storage", cfg.StorageURL,
			"max_upload_bytes", cfg.MaxUploadBytes,
			"audit", cfg.DatabaseURL != "",
		)
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return eg.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
