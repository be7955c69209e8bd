package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalizeProbability_Cases(t *testing.T) {
	p, fixed := NormalizeProbability(0.65)
	assert.Equal(t, 0.65, p)
	assert.False(t, fixed)

	// Porcentaje mal escalado: 65 se lee como 0.65.
	p, fixed = NormalizeProbability(65)
	assert.Equal(t, 0.65, p)
	assert.True(t, fixed)

	p, fixed = NormalizeProbability(-0.2)
	assert.Equal(t, 0.0, p)
	assert.True(t, fixed)

	p, fixed = NormalizeProbability(150)
	assert.Equal(t, 1.0, p)
	assert.True(t, fixed)

	p, fixed = NormalizeProbability(1.0)
	assert.Equal(t, 1.0, p)
	assert.False(t, fixed)
}

func TestEstimateSet_Spread(t *testing.T) {
	assert.Equal(t, 0.0, EstimateSet{Signal: 0.60}.Spread())

	set := EstimateSet{Signal: 0.60, MonteCarlo: floatPtr(0.55), Bayesian: floatPtr(0.70)}
	assert.InDelta(t, 0.15, set.Spread(), 1e-9)
}

func TestBlendConsensus_GenericWeights(t *testing.T) {
	set := EstimateSet{Signal: 0.60, MonteCarlo: floatPtr(0.55), Bayesian: floatPtr(0.70)}

	// 0.4×0.60 + 0.2×0.55 + 0.4×0.70 = 0.63
	consensus, anomalies := BlendConsensus(set, false)
	assert.InDelta(t, 0.63, consensus, 1e-9)
	assert.Empty(t, anomalies)
}

func TestBlendConsensus_CryptoWeights(t *testing.T) {
	set := EstimateSet{Signal: 0.60, MonteCarlo: floatPtr(0.55), Bayesian: floatPtr(0.70)}

	// 0.2×0.60 + 0.5×0.55 + 0.3×0.70 = 0.605
	consensus, _ := BlendConsensus(set, true)
	assert.InDelta(t, 0.605, consensus, 1e-9)
}

func TestBlendConsensus_RenormalizesMissingEstimators(t *testing.T) {
	// Sin Monte Carlo los pesos restantes se renormalizan:
	// (0.4×0.60 + 0.4×0.70) / 0.8 = 0.65
	set := EstimateSet{Signal: 0.60, Bayesian: floatPtr(0.70)}
	consensus, _ := BlendConsensus(set, false)
	assert.InDelta(t, 0.65, consensus, 1e-9)

	// Solo señal: el consenso es la señal.
	only := EstimateSet{Signal: 0.58}
	consensus, _ = BlendConsensus(only, false)
	assert.InDelta(t, 0.58, consensus, 1e-9)
}

func TestBlendConsensus_ReportsAnomalies(t *testing.T) {
	// Una probabilidad en escala porcentual se corrige y se reporta.
	set := EstimateSet{Signal: 65, MonteCarlo: floatPtr(0.60)}
	consensus, anomalies := BlendConsensus(set, false)

	assert.InDelta(t, (0.4*0.65+0.2*0.60)/0.6, consensus, 1e-9)
	assert.Len(t, anomalies, 1)
	assert.Equal(t, "signal", anomalies[0].Source)
	assert.Equal(t, 65.0, anomalies[0].Raw)
	assert.Equal(t, 0.65, anomalies[0].Corrected)
}

// --- ConfidenceScore ---

func TestConfidenceScore_HighAgreement(t *testing.T) {
	// base 20 + tier(80)=30 + acuerdo(0.02)=40 = 90
	assert.Equal(t, 90, ConfidenceScore(80, 0.02, false))
}

func TestConfidenceScore_ConflictPenalty(t *testing.T) {
	assert.Equal(t, 60, ConfidenceScore(80, 0.02, true))
}

func TestConfidenceScore_FloorAtFive(t *testing.T) {
	// 20 + 6 + 5 = 31; conflicto -30 → 1 → piso 5.
	assert.Equal(t, 5, ConfidenceScore(10, 0.20, true))
}

func TestConfidenceScore_SpreadBands(t *testing.T) {
	assert.Equal(t, 20+30+40, ConfidenceScore(80, 0.03, false))
	assert.Equal(t, 20+30+28, ConfidenceScore(80, 0.05, false))
	assert.Equal(t, 20+30+16, ConfidenceScore(80, 0.08, false))
	assert.Equal(t, 20+30+5, ConfidenceScore(80, 0.15, false))
}

func TestKellyConfidenceMultiplier_Bands(t *testing.T) {
	assert.Equal(t, 0.3, KellyConfidenceMultiplier(29))
	assert.Equal(t, 0.6, KellyConfidenceMultiplier(30))
	assert.Equal(t, 0.6, KellyConfidenceMultiplier(49))
	assert.Equal(t, 1.0, KellyConfidenceMultiplier(50))
	assert.Equal(t, 1.0, KellyConfidenceMultiplier(95))
}

// --- DeepAnalysisResult ---

func TestDeepAnalysisResult_EdgePct(t *testing.T) {
	r := DeepAnalysisResult{MarketPrice: 0.50, Edge: 0.05, RecommendedSide: SideYes}
	assert.InDelta(t, 10.0, r.EdgePct(), 1e-9)

	// Para NO el costo de entrada es 1 - precio YES.
	r = DeepAnalysisResult{MarketPrice: 0.60, Edge: -0.06, RecommendedSide: SideNo}
	assert.InDelta(t, 15.0, r.EdgePct(), 1e-9)

	r = DeepAnalysisResult{MarketPrice: 0, Edge: 0.05, RecommendedSide: SideYes}
	assert.Equal(t, 0.0, r.EdgePct())
}

func TestDeepAnalysisResult_HasConflict(t *testing.T) {
	r := DeepAnalysisResult{}
	assert.False(t, r.HasConflict())
	r.Conflicts = append(r.Conflicts, Conflict{Kind: "smart_money_disagreement"})
	assert.True(t, r.HasConflict())
}
