package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/market-monitor/internal/api"
	"github.com/rickgao/market-monitor/internal/config"
	"github.com/rickgao/market-monitor/internal/feed"
	"github.com/rickgao/market-monitor/internal/model"
	"github.com/rickgao/market-monitor/internal/relay"
	"github.com/rickgao/market-monitor/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	envFile := flag.String("env", ".env", "path to .env file")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols to follow (default: first N available)")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting market monitor",
		"version", version.Version,
		"commit", version.Commit,
		"api_url", cfg.API.BaseURL,
		"poll_interval", cfg.Feed.PollInterval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create API client
	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	}
	if cfg.API.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(cfg.API.UserAgent))
	}
	apiClient := api.NewClient(cfg.API.BaseURL, opts...)

	registry := feed.New(feed.Config{PollInterval: cfg.Feed.PollInterval}, apiClient, logger)

	symbols := pickSymbols(ctx, apiClient, *symbolsFlag, cfg.Monitor.SymbolLimit, logger)

	subs, err := followMarket(registry, symbols, cfg.Monitor.ShowStats, logger)
	if err != nil {
		logger.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Relay.Enabled {
		rl := relay.New(relay.Config{
			WriteTimeout: cfg.Relay.WriteTimeout,
			PingInterval: cfg.Relay.PingInterval,
			SendBuffer:   cfg.Relay.SendBuffer,

			MinPollInterval: cfg.Relay.MinPollInterval,
			MaxPollInterval: cfg.Relay.MaxPollInterval,
		}, registry, apiClient, logger)

		relayServer := &http.Server{
			Addr:              cfg.Relay.Addr,
			Handler:           rl.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("starting relay server", "addr", cfg.Relay.Addr)
			if err := relayServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			rl.Close()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return relayServer.Shutdown(shutdownCtx)
		})
	}

	logger.Info("market monitor running",
		"symbols", symbols,
		"relay_enabled", cfg.Relay.Enabled,
	)

	// Wait for shutdown
	<-gctx.Done()
	if err := g.Wait(); err != nil {
		logger.Error("relay server error", "error", err)
	}

	logger.Info("shutting down...")

	for _, s := range subs {
		s.Unsubscribe()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := registry.Close(shutdownCtx); err != nil {
		logger.Warn("feed registry did not stop cleanly", "error", err)
	}

	stats := registry.Stats()
	logger.Info("market monitor stopped",
		"polls", stats.Polls,
		"failures", stats.Failures,
		"deliveries", stats.Deliveries,
	)
}

// pickSymbols returns the explicit symbol list, or the first limit symbols the
// backend offers. A failed lookup is logged and yields no symbols.
func pickSymbols(ctx context.Context, client *api.Client, explicit string, limit int, logger *slog.Logger) []string {
	if explicit != "" {
		var out []string
		for _, s := range strings.Split(explicit, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var (
		available []string
		states    []model.MarketState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		available, err = client.GetSymbols(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		states, err = client.GetMarketStates(gctx)
		if err != nil {
			// Not every backend serves the states listing.
			logger.Debug("market states unavailable", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn("failed to fetch available symbols", "error", err)
		return nil
	}

	logger.Info("market metadata loaded",
		"available_symbols", len(available),
		"market_states", len(states),
	)

	if limit > 0 && len(available) > limit {
		available = available[:limit]
	}
	return available
}

// followMarket subscribes console logging to market state and each symbol.
func followMarket(reg *feed.Registry, symbols []string, showStats bool, logger *slog.Logger) ([]*feed.Subscription, error) {
	var subs []*feed.Subscription
	release := func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}

	sub, err := feed.SubscribeMarketState(reg, func(snap *model.MarketSnapshot, err error) {
		if err != nil {
			logger.Error("market state unavailable", "error", err)
			return
		}
		attrs := []any{
			"state", snap.State,
			"volatility", model.FormatPercent(snap.Volatility),
			"trend", model.FormatPercent(snap.TrendStrength),
			"volume", model.FormatVolume(snap.TradingVolume),
		}
		if showStats {
			stats := model.ComputeStats(*snap)
			attrs = append(attrs,
				"avg_price", model.FormatPrice(stats.AveragePrice),
				"high", model.FormatPrice(stats.HighPrice),
				"low", model.FormatPrice(stats.LowPrice),
			)
		}
		logger.Info("market state", attrs...)
	})
	if err != nil {
		return nil, err
	}
	subs = append(subs, sub)

	for _, symbol := range symbols {
		symbol := symbol
		sub, err := feed.SubscribeSymbol(reg, symbol, func(snap *model.SymbolSnapshot, err error) {
			if err != nil {
				logger.Error("failed to fetch symbol data", "symbol", symbol, "error", err)
				return
			}
			logger.Info("symbol update",
				"symbol", snap.Symbol,
				"price", model.FormatPrice(snap.Price),
				"change", model.FormatPercent(snap.Change),
				"at", snap.Time().Format(time.TimeOnly),
			)
		})
		if err != nil {
			release()
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, nil
}
