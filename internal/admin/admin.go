// Package admin exposes the operational HTTP surface: health probes,
// Prometheus metrics, and a status summary. It runs alongside the MCP
// transport when an admin address is configured; the MCP protocol
// itself never flows through here.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/health"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/logging"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
)

// WalletInfo is the wallet surface the status endpoint reports.
type WalletInfo interface {
	Address() string
	ChainID() *big.Int
}

// Deps are the collaborators the admin endpoints read from. All fields
// must be set.
type Deps struct {
	Health  *health.Registry
	Wallet  WalletInfo
	Version string
	Logger  *slog.Logger
}

// Server is the admin HTTP server.
type Server struct {
	deps    Deps
	logger  *slog.Logger
	router  *gin.Engine
	httpSrv *http.Server
	started time.Time

	ready atomic.Bool
}

// New builds the admin server on the given listen address.
func New(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		deps:    deps,
		logger:  logger.With("component", "admin"),
		started: time.Now(),
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	router.Use(metrics.Middleware())

	router.GET("/healthz", s.handleHealthz)
	router.GET("/readyz", s.handleReadyz)
	router.GET("/metrics", metrics.Handler())
	router.GET("/status", s.handleStatus)

	s.router = router
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("admin server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	s.ready.Store(true)

	select {
	case err := <-errChan:
		return fmt.Errorf("admin server: %w", err)
	case <-ctx.Done():
	}

	s.ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin shutdown: %w", err)
	}
	s.logger.Info("admin server stopped")
	return nil
}
