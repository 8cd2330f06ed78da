package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeroshade/sgvdesk/internal/artifact"
	"github.com/zeroshade/sgvdesk/internal/catalog"
	"github.com/zeroshade/sgvdesk/internal/config"
	"github.com/zeroshade/sgvdesk/internal/ledger"
	"github.com/zeroshade/sgvdesk/internal/session"
	"github.com/zeroshade/sgvdesk/types"
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("could not read .env: %v", err)
	}
	cfg := config.LoadConfig()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.Port == "" {
		log.Fatal("must set $PORT")
	}

	writer := artifact.NewWriter(cfg.OutputDir, artifact.ParseFormat(cfg.ArtifactFormat))
	store := session.NewStore(session.Options{
		TTL:       cfg.SessionTTL,
		Artifacts: writer,
		Vouchers: func() ([]types.Voucher, error) {
			rows, src, err := ledger.LoadDefault(cfg.DataDir)
			if err == nil {
				slog.Debug("loaded default vouchers", "source", src, "rows", len(rows))
			}
			return rows, err
		},
		Catalog: func() ([]*types.CatalogItem, error) {
			return catalog.Load(cfg.CatalogPath)
		},
	})
	defer store.Shutdown()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, cleaning up")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening", "port", cfg.Port, "output", cfg.OutputDir, "catalog", cfg.CatalogPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
	}
}
