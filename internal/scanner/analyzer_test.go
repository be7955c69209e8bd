package scanner_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alejandrodnm/polysignal/internal/domain"
	"github.com/alejandrodnm/polysignal/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

// newTestAnalyzer arma un DeepAnalyzer con engine determinista. Los casos
// que dependen del Monte Carlo separan precio y umbral lo suficiente como
// para que la probabilidad clampee en 0.001 o 0.999 con cualquier seed.
func newTestAnalyzer(h *mockHistory, tr *mockTrades, ho *mockHolders, cr *mockCrypto) *scanner.DeepAnalyzer {
	engine := domain.NewMonteCarloEngine(2000, rand.NewSource(42))
	return scanner.NewDeepAnalyzer(h, tr, ho, cr, engine, 10_000, 5_000)
}

func makeFlatCloses(price float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

// analyzerSnapshot construye un snapshot sin token CLOB: el analizador no
// intenta fetch de historial y el caso queda controlado por los mocks.
func analyzerSnapshot(question string, yesPrice float64, signalScore int, whale *domain.WhaleFlow) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		ConditionID: "0xcond",
		Question:    question,
		Slug:        "cond-slug",
		YesPrice:    yesPrice,
		NoPrice:     1 - yesPrice,
		Volume24h:   120_000,
		Liquidity:   40_000,
		EndDate:     time.Now().Add(9 * 24 * time.Hour),
		SignalScore: signalScore,
		Whale:       whale,
	}
}

// --- tests ---

func TestDeepAnalyzer_BalancedMarketStaysNeutral(t *testing.T) {
	a := newTestAnalyzer(&mockHistory{}, &mockTrades{}, &mockHolders{},
		&mockCrypto{err: errors.New("coin not found")})

	snap := analyzerSnapshot("Will the candidate win the debate?", 0.50, 20, nil)
	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err)
	assert.Equal(t, domain.SideNeutral, result.RecommendedSide)
	assert.InDelta(t, 0.50, result.ModelProbability, 1e-9)
	assert.InDelta(t, 0, result.Edge, 1e-9)
	assert.Zero(t, result.KellyPct)
	assert.False(t, result.IsPositiveSetup)
	require.NotNil(t, result.Kelly)
	assert.False(t, result.Kelly.HasEdge)
}

func TestDeepAnalyzer_WhaleTiltRecommendsYes(t *testing.T) {
	a := newTestAnalyzer(&mockHistory{}, &mockTrades{}, &mockHolders{},
		&mockCrypto{err: errors.New("coin not found")})

	whale := &domain.WhaleFlow{
		YesVolume: 47_500, NoVolume: 2_500, TotalVolume: 50_000,
		YesCount: 5, NoCount: 1, WindowHours: 24,
	}
	snap := analyzerSnapshot("Will turnout exceed expectations?", 0.40, 80, whale)
	snap.SmartMoneyRatio = 0.7

	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err)
	// Ajuste por tilt: 0.9 × 0.12 × 1.3 = +0.1404 sobre el precio.
	assert.InDelta(t, 0.5404, result.ModelProbability, 1e-6)
	assert.Equal(t, domain.SideYes, result.RecommendedSide)
	assert.Equal(t, 90, result.Confidence)
	assert.InDelta(t, 0.0585, result.KellyPct, 1e-6)
	assert.True(t, result.IsPositiveSetup)
	assert.False(t, result.HasConflict())
}

func TestDeepAnalyzer_WhaleTiltRecommendsNo(t *testing.T) {
	a := newTestAnalyzer(&mockHistory{}, &mockTrades{}, &mockHolders{},
		&mockCrypto{err: errors.New("coin not found")})

	// Espejo del caso YES: mismo desequilibrio en la dirección opuesta.
	whale := &domain.WhaleFlow{
		YesVolume: 2_500, NoVolume: 47_500, TotalVolume: 50_000,
		YesCount: 1, NoCount: 5, WindowHours: 24,
	}
	snap := analyzerSnapshot("Will turnout exceed expectations?", 0.60, 80, whale)
	snap.SmartMoneyRatio = 0.7

	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err)
	assert.InDelta(t, 0.4596, result.ModelProbability, 1e-6)
	assert.Equal(t, domain.SideNo, result.RecommendedSide)
	assert.InDelta(t, 0.0585, result.KellyPct, 1e-6)
	assert.True(t, result.IsPositiveSetup)
}

func TestDeepAnalyzer_SmartMoneyConflictVetoesSetup(t *testing.T) {
	// Mercado de umbral cripto con el precio del activo muy por debajo del
	// objetivo: el Monte Carlo clampea en 0.001 y arrastra el consenso a NO
	// contra un mercado que cotiza 0.85. Los holders YES, todos rentables y
	// grandes, disparan el conflicto smart money.
	trades := []domain.Trade{
		makeWhaleTrade("0xw1", 6_000, true, 30*time.Minute),
		makeWhaleTrade("0xw2", 6_000, true, 30*time.Minute),
		makeWhaleTrade("0xw3", 6_000, true, 30*time.Minute),
	}
	holders := make([]domain.HolderPosition, 5)
	for i := range holders {
		holders[i] = domain.HolderPosition{
			Wallet:       "0xh" + string(rune('1'+i)),
			Outcome:      domain.SideYes,
			Size:         50_000,
			CurrentValue: 60_000,
			CashPnL:      8_000,
		}
	}
	crypto := &mockCrypto{data: domain.NewCryptoData("bitcoin", 50_000, makeFlatCloses(50_000, 30))}

	a := newTestAnalyzer(&mockHistory{}, &mockTrades{trades: trades}, &mockHolders{positions: holders}, crypto)

	snap := analyzerSnapshot("Will Bitcoin reach $150,000 by March 31?", 0.85, 80, nil)
	snap.SmartMoneyRatio = 0.6

	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err)
	require.NotNil(t, result.MonteCarlo)
	assert.Equal(t, "crypto", result.MonteCarlo.Mode)
	assert.InDelta(t, 0.001, result.MonteCarlo.ProbabilityYes, 1e-12)

	assert.Equal(t, domain.SideNo, result.RecommendedSide)
	assert.InDelta(t, 0.4767, result.ModelProbability, 0.001)

	require.True(t, result.HasConflict(), "smart money en YES debe chocar con el modelo en NO")
	assert.Equal(t, "smart_money_disagreement", result.Conflicts[0].Kind)
	require.NotNil(t, result.Holders)
	assert.Equal(t, domain.SideYes, result.Holders.SmartScoreSide)
	assert.GreaterOrEqual(t, result.Holders.SmartScore, 80)

	// El conflicto no anula el sizing, pero sí el setup y la confianza.
	assert.Equal(t, 25, result.Confidence)
	assert.InDelta(t, 0.03, result.KellyPct, 1e-9)
	assert.False(t, result.IsPositiveSetup)
}

func TestDeepAnalyzer_CryptoMarketSimulatesAsset(t *testing.T) {
	// Activo cotizando al doble del umbral: todas las corridas terminan por
	// encima y la probabilidad clampea en 0.999.
	crypto := &mockCrypto{data: domain.NewCryptoData("bitcoin", 200_000, makeFlatCloses(200_000, 30))}
	a := newTestAnalyzer(&mockHistory{}, &mockTrades{}, &mockHolders{}, crypto)

	snap := analyzerSnapshot("Will Bitcoin hit $100k by June 30?", 0.55, 50, nil)
	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err)
	require.NotNil(t, result.MonteCarlo)
	assert.Equal(t, "crypto", result.MonteCarlo.Mode)
	assert.Equal(t, "bitcoin", result.MonteCarlo.CoinID)
	assert.InDelta(t, 100_000, result.MonteCarlo.Threshold, 0.01)
	assert.Equal(t, "above", result.MonteCarlo.Direction)
	assert.InDelta(t, 0.999, result.MonteCarlo.ProbabilityYes, 1e-12)

	// Blend crypto: (0.2×0.55 + 0.5×0.999) / 0.7.
	assert.InDelta(t, 0.8707, result.ModelProbability, 0.001)
	assert.Equal(t, domain.SideYes, result.RecommendedSide)
}

func TestDeepAnalyzer_GenericMonteCarloTracksMarket(t *testing.T) {
	history := &mockHistory{history: makeFlatHistory(0.60, 48)}
	a := newTestAnalyzer(history, &mockTrades{}, &mockHolders{},
		&mockCrypto{err: errors.New("coin not found")})

	snap := analyzerSnapshot("Will the incumbent win re-election?", 0.62, 45, nil)
	snap.ClobTokenIDs = []string{"tok-yes", "tok-no"}

	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err)
	require.NotNil(t, result.MonteCarlo)
	assert.Equal(t, "generic", result.MonteCarlo.Mode)
	// Sin drift la simulación genérica reproduce el precio del mercado.
	assert.InDelta(t, 0.62, result.MonteCarlo.ProbabilityYes, 1e-9)
	assert.InDelta(t, 0, result.MonteCarlo.Edge, 1e-9)
	assert.Equal(t, domain.SideNeutral, result.RecommendedSide)
	assert.Zero(t, result.KellyPct)
}

func TestDeepAnalyzer_DegradesWhenSourcesFail(t *testing.T) {
	boom := errors.New("api down")
	a := newTestAnalyzer(
		&mockHistory{err: boom},
		&mockTrades{err: boom},
		&mockHolders{err: boom},
		&mockCrypto{err: boom},
	)

	snap := analyzerSnapshot("Will Ethereum close above $5,000 this year?", 0.30, 35, nil)
	snap.ClobTokenIDs = []string{"tok-yes", "tok-no"}

	result, err := a.Analyze(context.Background(), snap, 1000, 0.25)

	require.NoError(t, err, "fallos de fetch degradan, nunca abortan")
	for _, source := range []string{"history", "trades", "holders", "crypto"} {
		assert.Contains(t, result.Errors, source)
	}

	// Sin datos externos queda solo el estimador de señal sobre el precio.
	assert.Nil(t, result.MonteCarlo)
	assert.Nil(t, result.Bayesian)
	require.NotNil(t, result.Greeks)
	assert.False(t, result.Greeks.Theta.HasData)
	assert.False(t, result.Greeks.Vega.HasData)
	require.NotNil(t, result.Holders)
	assert.False(t, result.Holders.HasPositions)
	assert.Equal(t, domain.SideNeutral, result.RecommendedSide)
	assert.InDelta(t, 0.30, result.ModelProbability, 1e-9)
}

func TestDeepAnalyzer_RejectsInvalidPrice(t *testing.T) {
	a := newTestAnalyzer(&mockHistory{}, &mockTrades{}, &mockHolders{}, &mockCrypto{})

	snap := analyzerSnapshot("Will anything happen?", 0, 50, nil)
	_, err := a.Analyze(context.Background(), snap, 1000, 0.25)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeepAnalyzer_RejectsInvalidBankroll(t *testing.T) {
	a := newTestAnalyzer(&mockHistory{}, &mockTrades{}, &mockHolders{}, &mockCrypto{})

	snap := analyzerSnapshot("Will anything happen?", 0.50, 50, nil)
	_, err := a.Analyze(context.Background(), snap, 0, 0.25)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
