// Package gateway serves the localhost control surface: status of the
// reconciliation streams, live repository lookups, and a read-only view
// of the notification ledger. It binds to 127.0.0.1 only.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/monitor"
	"github.com/the1andoni/repowatch/internal/repository"
)

// Gateway is the HTTP status server that runs alongside the monitor.
type Gateway struct {
	cfg       config.GatewayConfig
	monitor   *monitor.Monitor
	provider  repository.Provider
	startedAt time.Time
	version   string
}

// New creates a Gateway. Call Start() to begin serving.
func New(cfg config.GatewayConfig, mon *monitor.Monitor, provider repository.Provider, version string) *Gateway {
	return &Gateway{
		cfg:       cfg,
		monitor:   mon,
		provider:  provider,
		startedAt: time.Now(),
		version:   version,
	}
}

// Start serves until ctx is cancelled. A zero port disables the gateway
// and returns immediately.
func (gw *Gateway) Start(ctx context.Context) error {
	port := gw.cfg.Port
	if port == 0 {
		slog.Info("gateway disabled")
		<-ctx.Done()
		return nil
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: buildHandler(gw),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("gateway listening", "addr", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
