package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polysignal/internal/domain"
	"github.com/alejandrodnm/polysignal/internal/ports"
)

const (
	defaultWorkers = 4

	// smartWalletMinVolume es el volumen whale acumulado que un wallet
	// necesita antes de contar como smart money.
	smartWalletMinVolume = 50_000

	// markProfitableMinValue es el valor mínimo de posición para que un
	// holder en verde cuente como hit rentable del wallet.
	markProfitableMinValue = 10_000
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval   time.Duration
	TopN           int
	Workers        int
	MaxMarkets     int
	Bankroll       float64
	KellyFraction  float64
	MinWhaleVolume float64
	WhaleTradeMin  float64
	MCRuns         int
	Retention      time.Duration
	Filter         FilterConfig
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval:   10 * time.Minute,
		TopN:           10,
		Workers:        defaultWorkers,
		MaxMarkets:     200,
		Bankroll:       1000,
		KellyFraction:  domain.DefaultKellyFraction,
		MinWhaleVolume: 10_000,
		WhaleTradeMin:  domain.DefaultWhaleTradeMin,
		MCRuns:         domain.DefaultSimulations,
		Retention:      7 * 24 * time.Hour,
		Filter:         DefaultFilterConfig(),
	}
}

// Deps agrupa los puertos que el scanner necesita inyectados.
type Deps struct {
	Markets  ports.MarketProvider
	History  ports.HistoryProvider
	Trades   ports.TradeProvider
	Holders  ports.HolderProvider
	Crypto   ports.CryptoProvider
	Storage  ports.Storage
	Wallets  ports.WalletBook
	Notifier ports.Notifier
}

// Scanner es el orquestador principal del loop de escaneo.
type Scanner struct {
	cfg      Config
	deps     Deps
	analyzer *DeepAnalyzer
	filter   *Filter
}

// New crea un Scanner con todas las dependencias inyectadas.
func New(cfg Config, deps Deps) *Scanner {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultConfig().ScanInterval
	}
	engine := domain.NewMonteCarloEngine(cfg.MCRuns, rand.NewSource(time.Now().UnixNano()))
	return &Scanner{
		cfg:  cfg,
		deps: deps,
		analyzer: NewDeepAnalyzer(
			deps.History, deps.Trades, deps.Holders, deps.Crypto,
			engine, cfg.MinWhaleVolume, cfg.WhaleTradeMin),
		filter: NewFilter(cfg.Filter),
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Corre un ciclo inmediato y después uno por tick.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"top_n", s.cfg.TopN,
		"workers", s.cfg.Workers,
	)

	if err := s.RunOnce(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta un ciclo completo: escaneo, persistencia, notificación
// de lo que cambió y poda de análisis viejos.
func (s *Scanner) RunOnce(ctx context.Context) error {
	start := time.Now()

	results, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	if err := s.deps.Storage.SaveAnalyses(ctx, runID, results); err != nil {
		slog.Warn("storage error", "err", err)
	}

	relevant := s.deps.Storage.FilterRelevant(results)
	if err := s.deps.Notifier.Notify(ctx, relevant); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if s.cfg.Retention > 0 {
		if err := s.deps.Storage.PruneBefore(ctx, start.Add(-s.cfg.Retention)); err != nil {
			slog.Warn("prune error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"run_id", runID,
		"signals", len(results),
		"notified", len(relevant),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → filter → análisis concurrente → rank y devuelve el top.
func (s *Scanner) cycle(ctx context.Context) ([]domain.DeepAnalysisResult, error) {
	smart, err := s.deps.Wallets.SmartWallets(ctx, smartWalletMinVolume)
	if err != nil {
		slog.Warn("smart wallets load failed", "err", err)
		smart = map[string]bool{}
	}

	markets, err := s.deps.Markets.FetchActiveMarkets(ctx, s.cfg.MaxMarkets)
	if err != nil {
		return nil, fmt.Errorf("scanner.cycle: fetch markets: %w", err)
	}

	filtered := s.filter.Apply(markets)
	slog.Debug("markets filtered", "fetched", len(markets), "passed", len(filtered))

	results := s.analyzeConcurrent(ctx, filtered, smart)
	ranked := rankResults(results)
	if s.cfg.TopN > 0 && len(ranked) > s.cfg.TopN {
		ranked = ranked[:s.cfg.TopN]
	}
	return ranked, nil
}

// analyzeMarket enriquece el snapshot con flujo whale y signal score, corre
// el análisis profundo y alimenta el wallet book con lo observado.
func (s *Scanner) analyzeMarket(ctx context.Context, m domain.MarketSnapshot, smart map[string]bool) (domain.DeepAnalysisResult, error) {
	trades, err := s.deps.Trades.FetchTrades(ctx, m.ConditionID, tradeFetchLimit)
	if err != nil {
		slog.Debug("trades fetch failed", "condition_id", m.ConditionID, "err", err)
	}

	now := time.Now()
	m.Whale = domain.BuildWhaleFlow(trades, s.cfg.WhaleTradeMin, whaleWindow, now)
	m.SmartMoneyRatio = domain.SmartMoneyRatio(trades, s.cfg.WhaleTradeMin, smart)
	m.SignalScore, _ = domain.ScoreSignal(m, now)

	result, err := s.analyzer.Analyze(ctx, m, s.cfg.Bankroll, s.cfg.KellyFraction)
	if err != nil {
		return domain.DeepAnalysisResult{}, err
	}

	s.recordWallets(ctx, m.ConditionID, trades)
	return result, nil
}

// recordWallets acumula en el wallet book los trades whale nuevos del ciclo
// y marca como rentables los holders grandes con posición en verde. Solo
// considera trades dentro de la ventana del ciclo para no recontar volumen.
func (s *Scanner) recordWallets(ctx context.Context, conditionID string, trades []domain.Trade) {
	window := s.cfg.ScanInterval
	if window <= 0 {
		window = time.Hour
	}
	cutoff := time.Now().Add(-window).Unix()

	for _, t := range trades {
		amount := t.Amount()
		if t.ProxyWallet == "" || amount < s.cfg.WhaleTradeMin || t.Timestamp < cutoff {
			continue
		}
		if err := s.deps.Wallets.RecordWhaleTrade(ctx, t.ProxyWallet, amount, time.Unix(t.Timestamp, 0)); err != nil {
			slog.Debug("wallet book update failed", "wallet", t.ProxyWallet, "err", err)
		}
	}

	positions, err := s.deps.Holders.FetchHolders(ctx, conditionID)
	if err != nil {
		return
	}
	for _, p := range positions {
		if p.CashPnL > 0 && p.CurrentValue > markProfitableMinValue {
			if err := s.deps.Wallets.MarkProfitable(ctx, p.Wallet); err != nil {
				slog.Debug("mark profitable failed", "wallet", p.Wallet, "err", err)
			}
		}
	}
}

// AnalyzeOne corre el análisis profundo de un solo mercado por slug y
// construye su plan de trading. Es el camino del modo -market.
func (s *Scanner) AnalyzeOne(ctx context.Context, slug string) (domain.DeepAnalysisResult, domain.TradePlan, error) {
	m, err := s.deps.Markets.FetchMarket(ctx, slug)
	if err != nil {
		return domain.DeepAnalysisResult{}, domain.TradePlan{}, fmt.Errorf("scanner.AnalyzeOne: %w", err)
	}

	smart, err := s.deps.Wallets.SmartWallets(ctx, smartWalletMinVolume)
	if err != nil {
		smart = map[string]bool{}
	}

	result, err := s.analyzeMarket(ctx, m, smart)
	if err != nil {
		return domain.DeepAnalysisResult{}, domain.TradePlan{}, fmt.Errorf("scanner.AnalyzeOne: %w", err)
	}

	var trend float64
	if tokenID := result.Market.YesTokenID(); tokenID != "" {
		if h, err := s.deps.History.FetchPriceHistory(ctx, tokenID); err == nil {
			trend = h.Change(24 * time.Hour)
		}
	}

	plan := domain.BuildTradePlan(result.Market, result, trend)
	return result, plan, nil
}

// rankResults ordena por |edge| × confianza descendente: primero los
// mercados donde el modelo más se aleja del precio con más acuerdo interno.
func rankResults(results []domain.DeepAnalysisResult) []domain.DeepAnalysisResult {
	sort.Slice(results, func(i, j int) bool {
		return attractiveness(results[i]) > attractiveness(results[j])
	})
	return results
}

func attractiveness(r domain.DeepAnalysisResult) float64 {
	return math.Abs(r.Edge) * float64(r.Confidence)
}
