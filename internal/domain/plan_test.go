package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func planMarket() MarketSnapshot {
	return MarketSnapshot{
		ConditionID: "0xcond",
		Question:    "Will it happen?",
		YesPrice:    0.50,
		NoPrice:     0.50,
		Volume24h:   150_000,
		Liquidity:   50_000,
		EndDate:     time.Now().Add(5 * 24 * time.Hour),
		SignalScore: 70,
		Whale:       &WhaleFlow{YesVolume: 40000, NoVolume: 10000, TotalVolume: 50000},
	}
}

func TestBuildTradePlan_PositiveSetup(t *testing.T) {
	m := planMarket()
	r := DeepAnalysisResult{RecommendedSide: SideYes, IsPositiveSetup: true}

	plan := BuildTradePlan(m, r, 0.15)

	assert.Equal(t, SideYes, plan.Side)
	assert.Equal(t, 0.50, plan.Entry)
	// target = min(0.85, 0.50×1.3) = 0.65; stop = max(0.05, 0.50×0.80) = 0.40
	assert.InDelta(t, 0.65, plan.Target, 1e-9)
	assert.InDelta(t, 0.40, plan.Stop, 1e-9)
	// R:R = (0.65-0.50)/(0.50-0.40) = 1.5
	assert.InDelta(t, 1.5, plan.RiskReward, 1e-9)

	// whale 80% fuerte + volumen alto + tendencia fuerte alineada.
	assert.Len(t, plan.Reasons, 3)
	assert.Empty(t, plan.Warnings)
	assert.True(t, plan.ShouldBet)
}

func TestBuildTradePlan_WarningsVeto(t *testing.T) {
	// Consenso débil, volumen bajo, tendencia en contra, liquidez fina y
	// cierre inminente: 5 advertencias vetan la apuesta con score alto.
	m := planMarket()
	m.Whale = &WhaleFlow{YesVolume: 27500, NoVolume: 22500, TotalVolume: 50000}
	m.Volume24h = 30_000
	m.Liquidity = 10_000
	m.EndDate = time.Now().Add(12 * time.Hour)
	m.SignalScore = 80

	r := DeepAnalysisResult{RecommendedSide: SideYes, IsPositiveSetup: true}
	plan := BuildTradePlan(m, r, -0.10)

	assert.Len(t, plan.Warnings, 5)
	assert.False(t, plan.ShouldBet)
}

func TestBuildTradePlan_NoSideFlipsTrend(t *testing.T) {
	// Precio cayendo -12% favorece al plan NO: cuenta como tendencia
	// alineada fuerte, no como advertencia.
	m := planMarket()
	m.NoPrice = 0.45
	m.Whale = &WhaleFlow{YesVolume: 10000, NoVolume: 40000, TotalVolume: 50000}

	r := DeepAnalysisResult{RecommendedSide: SideNo, IsPositiveSetup: true}
	plan := BuildTradePlan(m, r, -0.12)

	assert.Equal(t, 0.45, plan.Entry)
	assert.InDelta(t, 0.585, plan.Target, 1e-9)
	assert.InDelta(t, 0.36, plan.Stop, 1e-9)
	assert.Len(t, plan.Reasons, 3)
	assert.True(t, plan.ShouldBet)
}

func TestBuildTradePlan_NeutralNeverBets(t *testing.T) {
	m := planMarket()
	r := DeepAnalysisResult{RecommendedSide: SideNeutral, IsPositiveSetup: false}
	plan := BuildTradePlan(m, r, 0.15)

	// Reporta precios sobre YES como referencia, sin autorizar apuesta.
	assert.Equal(t, 0.50, plan.Entry)
	assert.False(t, plan.ShouldBet)
}

func TestBuildTradePlan_LowSignalScoreBlocks(t *testing.T) {
	m := planMarket()
	m.SignalScore = 55
	r := DeepAnalysisResult{RecommendedSide: SideYes, IsPositiveSetup: true}

	plan := BuildTradePlan(m, r, 0.15)
	assert.False(t, plan.ShouldBet)
}

func TestBuildTradePlan_NegativeSetupBlocks(t *testing.T) {
	m := planMarket()
	r := DeepAnalysisResult{RecommendedSide: SideYes, IsPositiveSetup: false}

	plan := BuildTradePlan(m, r, 0.15)
	assert.False(t, plan.ShouldBet)
}

func TestBuildTradePlan_PriceCapsAndFloors(t *testing.T) {
	m := planMarket()
	m.YesPrice = 0.80
	r := DeepAnalysisResult{RecommendedSide: SideYes, IsPositiveSetup: true}

	plan := BuildTradePlan(m, r, 0.15)
	// 0.80×1.3 = 1.04 → techo 0.85; stop 0.64.
	assert.InDelta(t, 0.85, plan.Target, 1e-9)
	assert.InDelta(t, 0.64, plan.Stop, 1e-9)

	m.YesPrice = 0.05
	plan = BuildTradePlan(m, r, 0.15)
	// stop = max(0.05, 0.04) = 0.05 → pérdida 0 → R:R indefinido en 0.
	assert.InDelta(t, 0.05, plan.Stop, 1e-9)
	assert.Equal(t, 0.0, plan.RiskReward)
}

func TestBuildTradePlan_LongHorizonWarning(t *testing.T) {
	m := planMarket()
	m.EndDate = time.Now().Add(30 * 24 * time.Hour)
	r := DeepAnalysisResult{RecommendedSide: SideYes, IsPositiveSetup: true}

	plan := BuildTradePlan(m, r, 0.15)
	assert.Len(t, plan.Warnings, 1)
	// Una sola advertencia no veta.
	assert.True(t, plan.ShouldBet)
}
