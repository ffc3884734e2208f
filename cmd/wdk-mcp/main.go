// Command wdk-mcp serves the wallet toolkit as an MCP server.
//
// By default it speaks JSON-RPC over stdio for hosts that spawn it as a
// subprocess. Set WDK_MCP_HTTP_ADDR to serve Streamable HTTP instead.
// WDK_ADMIN_ADDR enables the operational HTTP surface (health probes,
// Prometheus metrics, status).
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/admin"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/config"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/health"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/indexer"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/journal"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/logging"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/mcpserver"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/pricing"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/tokens"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/traces"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/wallet"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/watcher"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wdk-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting wdk-mcp",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
		"env", cfg.Env,
		"chain_id", cfg.ChainID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// When the MCP transport exits (host closed stdin), everything else
	// winds down too.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		return fmt.Errorf("init traces: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTraces(flushCtx); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	w, err := wallet.New(wallet.Config{
		RPCURL:     cfg.RPCURL,
		PrivateKey: cfg.PrivateKey,
		ChainID:    cfg.ChainID,
		SwapRouter: cfg.SwapRouter,
	})
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	defer func() { _ = w.Close() }()

	logger.Info("wallet ready",
		"address", w.Address(),
		"swaps_enabled", cfg.SwapRouter != "",
	)

	registry := tokens.Defaults()
	if cfg.TokensFile != "" {
		if err := registry.LoadFile(cfg.TokensFile); err != nil {
			return fmt.Errorf("load tokens file: %w", err)
		}
		logger.Info("token registry extended", "file", cfg.TokensFile, "tokens", len(registry.All()))
	}

	idx := indexer.New(indexer.Config{
		BaseURL: cfg.IndexerURL,
		APIKey:  cfg.IndexerAPIKey,
		WSURL:   cfg.IndexerWSURL,
	})
	prices := pricing.New(pricing.Config{
		BaseURL:   cfg.PricingURL,
		TTL:       cfg.PriceTTL,
		RedisAddr: cfg.RedisAddr,
	}, logger)

	store, db, err := openJournal(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	var stream *indexer.Stream
	if cfg.IndexerWSURL != "" {
		stream = indexer.NewStream(cfg.IndexerWSURL, cfg.IndexerAPIKey, w.Address(), logger)
	}
	confirmations := watcher.New(
		watcher.Config{PollInterval: cfg.ConfirmPollInterval},
		w, store, stream, logger,
	)
	confirmations.Start(ctx)
	defer confirmations.Stop()

	mcpSrv := mcpserver.NewMCPServer(mcpserver.Deps{
		Wallet:      w,
		Registry:    registry,
		Indexer:     idx,
		Pricing:     prices,
		Journal:     store,
		SlippageBps: cfg.SlippageBps,
		Logger:      logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AdminAddr != "" {
		reg := health.NewRegistry()
		reg.Register("rpc", health.PingChecker("rpc", w.Ping))
		if idx.Configured() {
			reg.Register("indexer", health.PingChecker("indexer", idx.Ping))
		}
		if prices.Configured() {
			reg.Register("pricing", health.PingChecker("pricing", prices.Ping))
		}
		if db != nil {
			reg.Register("database", health.DBChecker("database", db))
		}

		adminSrv := admin.New(cfg.AdminAddr, admin.Deps{
			Health:  reg,
			Wallet:  w,
			Version: Version,
			Logger:  logger,
		})
		g.Go(func() error { return adminSrv.Run(gctx) })

		if db != nil {
			g.Go(func() error {
				metrics.StartDBStatsCollector(gctx, db, 15*time.Second)
				return nil
			})
		}
	}

	g.Go(func() error {
		defer cancel()
		return serveMCP(gctx, cfg, mcpSrv, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("wdk-mcp stopped")
	return nil
}

// serveMCP runs the MCP transport: Streamable HTTP when an address is
// configured, stdio otherwise.
func serveMCP(ctx context.Context, cfg *config.Config, s *server.MCPServer, logger *slog.Logger) error {
	if cfg.MCPHTTPAddr != "" {
		httpSrv := server.NewStreamableHTTPServer(s)

		errChan := make(chan error, 1)
		go func() {
			logger.Info("mcp server listening", "transport", "streamable-http", "addr", cfg.MCPHTTPAddr)
			if err := httpSrv.Start(cfg.MCPHTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		select {
		case err := <-errChan:
			return fmt.Errorf("mcp http server: %w", err)
		case <-ctx.Done():
		}

		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("mcp http shutdown: %w", err)
		}
		return nil
	}

	logger.Info("mcp server listening", "transport", "stdio")
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

// openJournal selects the journal backend: PostgreSQL when a database
// URL is configured, in-memory otherwise. The *sql.DB is nil for the
// in-memory store.
func openJournal(cfg *config.Config, logger *slog.Logger) (journal.Store, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory journal")
		return journal.NewMemoryStore(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("using PostgreSQL journal", "url", maskDSN(cfg.DatabaseURL))
	return journal.NewPostgresStore(db), db, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
