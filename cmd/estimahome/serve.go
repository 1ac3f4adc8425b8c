package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"estimahome/config"
	"estimahome/db"
	ehttp "estimahome/http"
	"estimahome/logging"
	"estimahome/ml"
	"estimahome/monitoring"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve estimates over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	// 1. Logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 2. Model artifacts. A failed load leaves the service up without prediction.
	loader, err := ml.NewLoader(cfg.Model.ArtifactFiles, 0)
	if err != nil {
		return err
	}
	bundle, loadErr := loader.Load(cfg.Model.ArtifactDir)
	if loadErr != nil {
		logger.Error("model artifacts not loaded, prediction unavailable",
			zap.String("dir", cfg.Model.ArtifactDir),
			zap.Error(loadErr))
	} else {
		logger.Info("model artifacts loaded",
			zap.String("dir", bundle.Dir()),
			zap.Strings("skewed_columns", bundle.SkewedColumns()))
	}
	estimator := ml.NewEstimator(bundle, loadErr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Artifact drift watcher
	deps := ehttp.Deps{
		Estimator: estimator,
		Metrics:   monitoring.NewMetrics(),
		Logger:    logger,
	}
	if cfg.Model.Watch && loadErr == nil {
		watcher, err := ml.NewWatcher(cfg.Model.ArtifactDir, cfg.Model.ArtifactFiles, logger)
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
			deps.Watcher = watcher
		}
	}

	// 4. Prediction history
	if cfg.Database.Path != "" {
		store, err := db.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Store = store
		logger.Info("prediction history enabled", zap.String("path", cfg.Database.Path))
	}

	// 5. HTTP server
	server := ehttp.NewServer(ehttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        cfg.HTTP.Timeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}, ehttp.NewHandlers(deps))

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return err
	}
	logger.Info("exiting")
	return nil
}
