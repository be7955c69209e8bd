package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/polysignal/internal/domain"
	"github.com/alejandrodnm/polysignal/internal/ports"
)

const (
	// tradeFetchLimit es cuántos trades recientes alimentan flujo whale y bayes.
	tradeFetchLimit = 500

	// whaleWindow es la ventana de agregación del flujo whale.
	whaleWindow = 24 * time.Hour

	// smartConflictScore es el smart score mínimo para que un desacuerdo de
	// holders cuente como conflicto duro contra el modelo.
	smartConflictScore = 80
)

// DeepAnalyzer corre el análisis profundo de un mercado: fetch paralelo de
// datos, sub-modelos independientes y blend de consenso. Es el único punto
// donde red y modelos se tocan; los sub-modelos en domain son puros.
type DeepAnalyzer struct {
	history ports.HistoryProvider
	trades  ports.TradeProvider
	holders ports.HolderProvider
	crypto  ports.CryptoProvider
	engine  *domain.MonteCarloEngine

	minWhaleVolume float64
	whaleTradeMin  float64
}

// NewDeepAnalyzer crea un DeepAnalyzer con los providers inyectados.
func NewDeepAnalyzer(
	history ports.HistoryProvider,
	trades ports.TradeProvider,
	holders ports.HolderProvider,
	crypto ports.CryptoProvider,
	engine *domain.MonteCarloEngine,
	minWhaleVolume, whaleTradeMin float64,
) *DeepAnalyzer {
	if minWhaleVolume <= 0 {
		minWhaleVolume = 10_000
	}
	if whaleTradeMin <= 0 {
		whaleTradeMin = domain.DefaultWhaleTradeMin
	}
	return &DeepAnalyzer{
		history:        history,
		trades:         trades,
		holders:        holders,
		crypto:         crypto,
		engine:         engine,
		minWhaleVolume: minWhaleVolume,
		whaleTradeMin:  whaleTradeMin,
	}
}

// Analyze corre el pipeline completo sobre un snapshot: fetch paralelo,
// sub-modelos, consenso, conflicto, confianza y sizing.
//
// Cada fuente que falla queda en Errors y su sub-modelo degrada; el análisis
// solo aborta con inputs inválidos (precio fuera de (0,1], bankroll <= 0).
func (a *DeepAnalyzer) Analyze(ctx context.Context, snap domain.MarketSnapshot, bankroll, fraction float64) (domain.DeepAnalysisResult, error) {
	if snap.YesPrice <= 0 || snap.YesPrice > 1 {
		return domain.DeepAnalysisResult{}, fmt.Errorf(
			"scanner.Analyze: yes price %.4f out of (0,1] for %s: %w",
			snap.YesPrice, snap.ConditionID, domain.ErrInvalidInput)
	}
	if bankroll <= 0 {
		return domain.DeepAnalysisResult{}, fmt.Errorf(
			"scanner.Analyze: bankroll %.2f must be positive: %w", bankroll, domain.ErrInvalidInput)
	}

	cryptoInfo := domain.DetectCryptoMarket(snap.Question)

	var (
		mu         sync.Mutex
		history    domain.PriceHistory
		cryptoData domain.CryptoData
		positions  []domain.HolderPosition
		trades     []domain.Trade
		fetchErrs  = map[string]string{}
	)
	recordErr := func(source string, err error) {
		mu.Lock()
		fetchErrs[source] = err.Error()
		mu.Unlock()
		slog.Debug("deep analysis fetch failed",
			"source", source, "condition_id", snap.ConditionID, "err", err)
	}

	var wg sync.WaitGroup
	if tokenID := snap.YesTokenID(); tokenID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := a.history.FetchPriceHistory(ctx, tokenID)
			if err != nil {
				recordErr("history", err)
				return
			}
			mu.Lock()
			history = h
			mu.Unlock()
		}()
	}
	if cryptoInfo != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := a.crypto.FetchCryptoData(ctx, cryptoInfo.CoinID)
			if err != nil {
				recordErr("crypto", err)
				return
			}
			mu.Lock()
			cryptoData = data
			mu.Unlock()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		p, err := a.holders.FetchHolders(ctx, snap.ConditionID)
		if err != nil {
			recordErr("holders", err)
			return
		}
		mu.Lock()
		positions = p
		mu.Unlock()
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		t, err := a.trades.FetchTrades(ctx, snap.ConditionID, tradeFetchLimit)
		if err != nil {
			recordErr("trades", err)
			return
		}
		mu.Lock()
		trades = t
		mu.Unlock()
	}()
	wg.Wait()

	now := time.Now()
	if snap.Whale == nil && len(trades) > 0 {
		snap.Whale = domain.BuildWhaleFlow(trades, a.whaleTradeMin, whaleWindow, now)
	}

	// Sub-modelos: cada uno corre solo con los datos que llegaron.
	signalProb := domain.EstimateProbability(snap, a.minWhaleVolume)
	days := snap.DaysToClose()

	var mc *domain.MonteCarloResult
	switch {
	case cryptoInfo != nil && cryptoData.IsValid():
		mc = a.engine.SimulateCrypto(cryptoData, *cryptoInfo, snap.YesPrice, days)
	case len(history.Points) > 0:
		mc = a.engine.SimulateGeneric(snap.YesPrice, days, history)
	}
	cryptoMode := mc != nil && mc.Mode == "crypto"

	var bayes *domain.BayesianResult
	if len(trades) > 0 {
		var avgHourly float64
		if w := snap.Whale; w != nil && w.WindowHours > 0 {
			avgHourly = w.TotalVolume / w.WindowHours
		}
		b := domain.UpdateProbability(snap.YesPrice, trades, history.Change(24*time.Hour), avgHourly, now)
		bayes = &b
	}

	greeks := domain.AnalyzeGreeks(snap.YesPrice, days, history)

	estimates := domain.EstimateSet{Signal: signalProb}
	if mc != nil {
		p := mc.ProbabilityYes
		estimates.MonteCarlo = &p
	}
	if bayes != nil {
		p := bayes.Posterior
		estimates.Bayesian = &p
	}

	consensus, anomalies := domain.BlendConsensus(estimates, cryptoMode)
	for _, an := range anomalies {
		slog.Warn("probability anomaly corrected",
			"source", an.Source, "raw", an.Raw, "corrected", an.Corrected,
			"condition_id", snap.ConditionID)
	}

	edge := domain.Edge(consensus, snap.YesPrice)
	side := domain.SideNeutral
	if edge >= domain.EdgeThreshold {
		side = domain.SideYes
	} else if edge <= -domain.EdgeThreshold {
		side = domain.SideNo
	}

	holdersResult := domain.ScoreHolders(positions, snap.Whale, consensus)

	var conflicts []domain.Conflict
	if side != domain.SideNeutral &&
		holdersResult.SmartScore >= smartConflictScore &&
		holdersResult.SmartScoreSide != side {
		conflicts = append(conflicts, domain.Conflict{
			Kind: "smart_money_disagreement",
			Detail: fmt.Sprintf("model says %s but smart money (score %d) sides %s",
				side, holdersResult.SmartScore, holdersResult.SmartScoreSide),
		})
	}

	confidence := domain.ConfidenceScore(snap.SignalScore, estimates.Spread(), len(conflicts) > 0)

	// Con lado NEUTRAL el kelly se recalcula contra el propio mercado para
	// devolver un resultado en cero con campos coherentes.
	modelForKelly := consensus
	if side == domain.SideNeutral {
		modelForKelly = snap.YesPrice
	}
	kelly, err := domain.SizePosition(modelForKelly, snap.YesPrice, bankroll, fraction)
	if err != nil {
		return domain.DeepAnalysisResult{}, err
	}

	var kellyPct float64
	if side != domain.SideNeutral {
		kellyPct = kelly.KellyFraction * domain.KellyConfidenceMultiplier(confidence)
		if kellyPct < domain.MinKellyThreshold {
			kellyPct = 0
		}
	}

	result := domain.DeepAnalysisResult{
		Market:           snap,
		ModelProbability: consensus,
		MarketPrice:      snap.YesPrice,
		Edge:             edge,
		RecommendedSide:  side,
		Confidence:       confidence,
		KellyPct:         kellyPct,
		Kelly:            kelly,
		MonteCarlo:       mc,
		Bayesian:         bayes,
		Greeks:           &greeks,
		Holders:          &holdersResult,
		Conflicts:        conflicts,
		IsPositiveSetup:  side != domain.SideNeutral && kellyPct > 0 && len(conflicts) == 0,
	}
	if len(fetchErrs) > 0 {
		result.Errors = fetchErrs
	}
	return result, nil
}
