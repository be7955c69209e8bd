package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polysignal/config"
	"github.com/alejandrodnm/polysignal/internal/adapters/coingecko"
	"github.com/alejandrodnm/polysignal/internal/adapters/notify"
	"github.com/alejandrodnm/polysignal/internal/adapters/polymarket"
	"github.com/alejandrodnm/polysignal/internal/adapters/storage"
	"github.com/alejandrodnm/polysignal/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	logLevel := flag.String("log-level", "", "log level: debug|info|warn|error (overrides config)")
	logFormat := flag.String("log-format", "", "log format: text|json (overrides config)")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	market := flag.String("market", "", "analyze a single market by slug and exit")
	bankroll := flag.Float64("bankroll", 0, "bankroll in USDC (overrides config)")
	detail := flag.Bool("detail", false, "expand top signals after the table")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *bankroll > 0 {
		cfg.Analysis.Bankroll = *bankroll
	}
	setupLogger(cfg.Log)

	slog.Info("polysignal starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"bankroll", cfg.Analysis.Bankroll,
		"once", *once,
		"market", *market,
	)

	client := polymarket.NewClient(cfg.APIs.CLOBURL, cfg.APIs.GammaURL, cfg.APIs.DataAPIURL)
	gecko := coingecko.NewClient(cfg.APIs.CoingeckoURL)

	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "path", cfg.Storage.Path)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole(*detail)

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.TopN = cfg.Scan.TopN
	scanCfg.Workers = cfg.Scan.Workers
	scanCfg.MaxMarkets = cfg.Scan.MaxMarkets
	scanCfg.Bankroll = cfg.Analysis.Bankroll
	scanCfg.KellyFraction = cfg.Analysis.KellyFraction
	scanCfg.MinWhaleVolume = cfg.Analysis.MinWhaleVolume
	scanCfg.WhaleTradeMin = cfg.Analysis.WhaleTradeMin
	scanCfg.MCRuns = cfg.Analysis.MCRuns
	scanCfg.Retention = cfg.Retention()
	scanCfg.Filter = scanner.FilterConfig{
		MinVolume24h: cfg.Filter.MinVolume24h,
		MinLiquidity: cfg.Filter.MinLiquidity,
		MinDays:      cfg.Filter.MinDays,
		MaxDays:      cfg.Filter.MaxDays,
	}

	s := scanner.New(scanCfg, scanner.Deps{
		Markets:  client,
		History:  client,
		Trades:   client,
		Holders:  client,
		Crypto:   gecko,
		Storage:  store,
		Wallets:  store,
		Notifier: console,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *market != "":
		result, plan, err := s.AnalyzeOne(ctx, *market)
		if err != nil {
			slog.Error("market analysis failed", "slug", *market, "err", err)
			os.Exit(1)
		}
		console.RenderDetail(result, &plan)

	case *once:
		if err := s.RunOnce(ctx); err != nil {
			slog.Error("scan cycle failed", "err", err)
			os.Exit(1)
		}

	default:
		if err := s.Run(ctx); err != nil {
			slog.Error("scanner exited with error", "err", err)
			os.Exit(1)
		}
		slog.Info("polysignal stopped cleanly")
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
