package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTheta_NoHistory(t *testing.T) {
	// Sin historia la deriva observada es 0 y la anomalía es la esperada:
	// expected = (1 - 0.70)/7 = 0.0429 pp/día hacia la resolución YES.
	r := AnalyzeTheta(0.70, 7, PriceHistory{})

	assert.False(t, r.HasData)
	assert.Equal(t, SideYes, r.DominantSide)
	assert.InDelta(t, 0.042857, r.ExpectedDrift, 1e-5)
	assert.Equal(t, 0.0, r.ActualDrift)
	assert.InDelta(t, 0.042857, r.Anomaly, 1e-5)
	assert.True(t, r.IsOpportunity)
	assert.InDelta(t, 0.50, r.TimeValue, 1e-9)
}

func TestAnalyzeTheta_ObservedDrift(t *testing.T) {
	// 25 muestras horarias subiendo 0.60 → 0.72 en 24h: actual = 0.12/día.
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 0.60 + 0.005*float64(i)
	}
	r := AnalyzeTheta(0.72, 7, hourlySeries(prices))

	assert.True(t, r.HasData)
	assert.InDelta(t, 0.04, r.ExpectedDrift, 1e-9)
	assert.InDelta(t, 0.12, r.ActualDrift, 1e-6)
	// El precio sube 3x más rápido de lo que el theta explica.
	assert.InDelta(t, -0.08, r.Anomaly, 1e-6)
	assert.True(t, r.IsOpportunity)
}

func TestAnalyzeTheta_NoSideTarget(t *testing.T) {
	// Bajo 0.50 domina NO y el precio debería derivar hacia 0.
	r := AnalyzeTheta(0.30, 5, PriceHistory{})
	assert.Equal(t, SideNo, r.DominantSide)
	assert.InDelta(t, -0.06, r.ExpectedDrift, 1e-9)
	assert.InDelta(t, -6.0, r.ThetaYes(), 1e-6)
	assert.InDelta(t, 6.0, r.ThetaNo(), 1e-6)
}

func TestAnalyzeTheta_ShortHorizonNotTradable(t *testing.T) {
	// Con 2 días la anomalía existe pero ya no es operable.
	r := AnalyzeTheta(0.70, 2, PriceHistory{})
	assert.Greater(t, r.Anomaly, thetaAnomalyMin)
	assert.False(t, r.IsOpportunity)
}

func TestAnalyzeTheta_ZeroDaysDefaultsToOne(t *testing.T) {
	r := AnalyzeTheta(0.70, 0, PriceHistory{})
	assert.Equal(t, 1.0, r.DaysToClose)
	assert.InDelta(t, 0.30, r.ExpectedDrift, 1e-9)
}

func TestAnalyzeTheta_DriftDivisorFloor(t *testing.T) {
	// Dos muestras a 60s: dt se eleva al piso de 0.1 días.
	h := PriceHistory{Points: []PricePoint{
		{Timestamp: 1_700_000_000, Price: 0.50},
		{Timestamp: 1_700_000_060, Price: 0.56},
	}}
	r := AnalyzeTheta(0.56, 10, h)
	assert.InDelta(t, 0.60, r.ActualDrift, 1e-6)
}

// --- AnalyzeVega ---

func TestAnalyzeVega_InsufficientData(t *testing.T) {
	r := AnalyzeVega(hourlySeries([]float64{0.5, 0.51, 0.52}))
	assert.Equal(t, "unknown", r.Regime)
	assert.False(t, r.HasData)
}

func TestAnalyzeVega_NormalRegime(t *testing.T) {
	// Serie uniformemente alternante: vol reciente ≈ vol histórica.
	prices := make([]float64, 30)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 0.50
		} else {
			prices[i] = 0.55
		}
	}
	r := AnalyzeVega(hourlySeries(prices))

	assert.True(t, r.HasData)
	assert.Equal(t, "normal", r.Regime)
	assert.InDelta(t, 1.0, r.VolRatio, 0.25)
	assert.False(t, r.IsSleeping)
	assert.False(t, r.IsSpiking)
}

func TestAnalyzeVega_SleepingMarket(t *testing.T) {
	// Cabeza volátil + cola plana: la vol reciente cae a 0.
	prices := make([]float64, 0, 65)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			prices = append(prices, 0.50)
		} else {
			prices = append(prices, 0.61)
		}
	}
	for i := 0; i < 25; i++ {
		prices = append(prices, 0.55)
	}
	r := AnalyzeVega(hourlySeries(prices))

	assert.True(t, r.IsSleeping)
	assert.Equal(t, "low", r.Regime)
	assert.Less(t, r.VolRatio, vegaSleepRatio)
}

func TestAnalyzeVega_VolatilitySpike(t *testing.T) {
	// Cabeza plana larga + cola violenta: ratio reciente/histórica > 2.5.
	prices := make([]float64, 0, 225)
	for i := 0; i < 200; i++ {
		prices = append(prices, 0.50)
	}
	for i := 0; i < 25; i++ {
		if i%2 == 0 {
			prices = append(prices, 0.65)
		} else {
			prices = append(prices, 0.50)
		}
	}
	r := AnalyzeVega(hourlySeries(prices))

	assert.True(t, r.IsSpiking)
	assert.Equal(t, "spike", r.Regime)
	assert.Greater(t, r.VolRatio, vegaSpikeRatio)
}

func TestGreeksResult_Flags(t *testing.T) {
	g := AnalyzeGreeks(0.70, 7, PriceHistory{})
	assert.True(t, g.HasTimeOpportunity())
	assert.False(t, g.HasVolSignal())
	assert.Equal(t, "unknown", g.Vega.Regime)
}

func TestVegaResult_VolChangePct(t *testing.T) {
	v := VegaResult{VolRatio: 1.8}
	assert.InDelta(t, 80.0, v.VolChangePct(), 1e-9)
}
