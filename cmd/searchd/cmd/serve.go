package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/solosuccess/searchd/internal/config"
	"github.com/solosuccess/searchd/internal/indexer"
	"github.com/solosuccess/searchd/internal/logging"
	"github.com/solosuccess/searchd/internal/search"
	"github.com/solosuccess/searchd/internal/server"
	"github.com/solosuccess/searchd/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the search index HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:     cfg.Logging.Level,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	}
	if debugMode {
		logCfg.Level = "debug"
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer cleanup()
	logger := slog.Default()

	st, err := store.NewSQLiteStore(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer func() { _ = st.Close() }()

	idx, err := indexer.New(indexer.WithStore(st))
	if err != nil {
		return err
	}

	svc, err := search.NewService(
		search.WithStore(st),
		search.WithLimit(cfg.Index.ResultLimit),
		search.WithMinQueryLength(cfg.Index.MinQueryLength),
		search.WithSnippetLength(cfg.Index.SnippetLength),
	)
	if err != nil {
		return err
	}

	resolver := server.NewStaticResolver(cfg.Auth.Tokens)

	srv, err := server.New(idx, svc, st, resolver, logger, &server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
