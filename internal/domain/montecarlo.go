package domain

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Parámetros de simulación. El clamp evita reportar certezas absolutas:
// 10k corridas no distinguen 0.9995 de 1.0.
const (
	DefaultSimulations = 10000
	mcProbFloor        = 0.001
	mcProbCeil         = 0.999
	defaultCryptoVol   = 0.50
	defaultGenericVol  = 0.40
)

// PriceBucket es un bucket de la distribución simulada para display.
type PriceBucket struct {
	Label       string
	Probability float64
}

// MonteCarloResult es el resultado de una simulación de precio final.
type MonteCarloResult struct {
	Mode           string // "crypto" | "generic"
	NumSimulations int

	ProbabilityYes float64
	MarketPrice    float64
	Edge           float64 // probabilityYes - marketPrice; 0 en modo generic

	// Solo en modo crypto.
	CoinID            string
	CurrentAssetPrice float64
	Threshold         float64
	Direction         string

	Pct5           float64
	Pct50          float64
	Pct95          float64
	MeanFinalPrice float64
	StdFinalPrice  float64
	Distribution   []PriceBucket
}

// HasEdge devuelve true si la simulación encontró un edge operable.
func (r MonteCarloResult) HasEdge() bool {
	return math.Abs(r.Edge) >= 0.03
}

// EdgePct devuelve el edge relativo al precio de mercado en porcentaje.
func (r MonteCarloResult) EdgePct() float64 {
	if r.MarketPrice <= 0 {
		return 0
	}
	return r.Edge / r.MarketPrice * 100
}

// MonteCarloEngine simula precios finales con una fuente de aleatoriedad
// inyectada para que los tests sean deterministas.
type MonteCarloEngine struct {
	runs int
	rng  *rand.Rand
}

// NewMonteCarloEngine crea un engine con runs corridas por simulación.
// Con runs <= 0 usa DefaultSimulations.
func NewMonteCarloEngine(runs int, src rand.Source) *MonteCarloEngine {
	if runs <= 0 {
		runs = DefaultSimulations
	}
	return &MonteCarloEngine{runs: runs, rng: rand.New(src)}
}

// SimulateCrypto simula el precio spot del activo con GBM y cuenta en
// cuántas corridas se cruza el umbral del mercado.
//
// Fórmula: S(T) = S0 × exp((μ - σ²/2)T + σ√T·z), z ~ N(0,1), T = días/365.
// Solo importa el precio final (check estilo opción europea), así que basta
// un draw terminal por corrida en vez de recorrer el path día a día.
func (e *MonteCarloEngine) SimulateCrypto(crypto CryptoData, info CryptoMarketInfo, marketPrice, days float64) *MonteCarloResult {
	if days < 0 {
		days = 0
	}
	sigma := crypto.Sigma
	if sigma < 0.01 {
		sigma = defaultCryptoVol
	}

	T := days / 365.0
	drift := (crypto.Mu - 0.5*sigma*sigma) * T
	diffusion := sigma * math.Sqrt(T)

	finals := make([]float64, e.runs)
	yesCount := 0
	for i := range finals {
		z := e.rng.NormFloat64()
		final := crypto.CurrentPrice * math.Exp(drift+diffusion*z)
		finals[i] = final

		if info.Direction == "above" {
			if final >= info.Threshold {
				yesCount++
			}
		} else if final <= info.Threshold {
			yesCount++
		}
	}

	prob := clampRange(float64(yesCount)/float64(e.runs), mcProbFloor, mcProbCeil)
	sort.Float64s(finals)

	result := &MonteCarloResult{
		Mode:              "crypto",
		NumSimulations:    e.runs,
		ProbabilityYes:    prob,
		MarketPrice:       marketPrice,
		Edge:              prob - marketPrice,
		CoinID:            crypto.CoinID,
		CurrentAssetPrice: crypto.CurrentPrice,
		Threshold:         info.Threshold,
		Direction:         info.Direction,
		Distribution:      cryptoDistribution(finals, info.Threshold),
	}
	result.fillStats(finals)
	return result
}

// SimulateGeneric simula el precio del propio mercado de predicción como
// paseo gaussiano acotado alrededor del precio actual. No inyecta drift:
// la probabilidad reportada es el precio de mercado y el edge es 0; el
// valor está en la dispersión (percentiles y buckets), no en la media.
func (e *MonteCarloEngine) SimulateGeneric(marketPrice, days float64, history PriceHistory) *MonteCarloResult {
	if days < 0 {
		days = 0
	}
	sigma := defaultGenericVol
	if len(history.Points) > 0 {
		if v := history.Volatility(); v >= 0.01 {
			sigma = v
		}
	}

	totalVol := sigma * math.Sqrt(days/365.0)

	finals := make([]float64, e.runs)
	for i := range finals {
		shock := e.rng.NormFloat64() * totalVol
		finals[i] = clampRange(marketPrice+shock, 0.01, 0.99)
	}
	sort.Float64s(finals)

	result := &MonteCarloResult{
		Mode:           "generic",
		NumSimulations: e.runs,
		ProbabilityYes: marketPrice,
		MarketPrice:    marketPrice,
		Distribution:   genericDistribution(finals),
	}
	result.fillStats(finals)
	return result
}

// fillStats calcula percentiles, media y desviación sobre finals ordenados.
func (r *MonteCarloResult) fillStats(sorted []float64) {
	n := len(sorted)
	if n == 0 {
		return
	}
	r.Pct5 = sorted[int(float64(n)*0.05)]
	r.Pct50 = sorted[int(float64(n)*0.50)]
	r.Pct95 = sorted[min(int(float64(n)*0.95), n-1)]

	var sum float64
	for _, p := range sorted {
		sum += p
	}
	r.MeanFinalPrice = sum / float64(n)
	r.StdFinalPrice = sampleStdev(sorted)
}

// cryptoDistribution agrupa los precios finales en 5 buckets centrados en
// el umbral, con paso del 10% del umbral.
func cryptoDistribution(sorted []float64, threshold float64) []PriceBucket {
	if len(sorted) == 0 {
		return nil
	}
	step := threshold * 0.10
	bounds := [4]float64{
		threshold - 2*step,
		threshold - step,
		threshold,
		threshold + step,
	}
	labels := [5]string{
		"< $" + fmtAssetPrice(bounds[0]),
		"$" + fmtAssetPrice(bounds[0]) + "-$" + fmtAssetPrice(bounds[1]),
		"$" + fmtAssetPrice(bounds[1]) + "-$" + fmtAssetPrice(bounds[2]),
		"$" + fmtAssetPrice(bounds[2]) + "-$" + fmtAssetPrice(bounds[3]),
		"> $" + fmtAssetPrice(bounds[3]),
	}

	var counts [5]int
	for _, p := range sorted {
		switch {
		case p < bounds[0]:
			counts[0]++
		case p < bounds[1]:
			counts[1]++
		case p < bounds[2]:
			counts[2]++
		case p < bounds[3]:
			counts[3]++
		default:
			counts[4]++
		}
	}

	n := float64(len(sorted))
	buckets := make([]PriceBucket, 5)
	for i := range buckets {
		buckets[i] = PriceBucket{Label: labels[i], Probability: float64(counts[i]) / n}
	}
	return buckets
}

// genericDistribution agrupa precios de mercado simulados en rangos de 20¢.
func genericDistribution(sorted []float64) []PriceBucket {
	if len(sorted) == 0 {
		return nil
	}
	ranges := [5]struct {
		label  string
		lo, hi float64
	}{
		{"0-20¢", 0, 0.20},
		{"20-40¢", 0.20, 0.40},
		{"40-60¢", 0.40, 0.60},
		{"60-80¢", 0.60, 0.80},
		{"80-100¢", 0.80, 1.01},
	}

	n := float64(len(sorted))
	buckets := make([]PriceBucket, 5)
	for i, r := range ranges {
		count := 0
		for _, p := range sorted {
			if p >= r.lo && p < r.hi {
				count++
			}
		}
		buckets[i] = PriceBucket{Label: r.label, Probability: float64(count) / n}
	}
	return buckets
}

// fmtAssetPrice formatea precios grandes en K/M para labels compactos.
func fmtAssetPrice(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.0fK", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
