package domain

import "math"

// EdgeThreshold es el edge mínimo (2pp) para recomendar un lado.
const EdgeThreshold = 0.02

// Pesos del blend de consenso. En modo crypto el Monte Carlo pesa más
// porque simula un subyacente real; en genérico el modelo de señal y el
// bayesiano llevan la voz.
const (
	cryptoSignalWeight = 0.20
	cryptoMCWeight     = 0.50
	cryptoBayesWeight  = 0.30

	genericSignalWeight = 0.40
	genericMCWeight     = 0.20
	genericBayesWeight  = 0.40
)

// Conflict es un desacuerdo duro entre estimadores detectado al blendear.
type Conflict struct {
	Kind   string // "smart_money_disagreement"
	Detail string
}

// ProbAnomaly registra una probabilidad fuera de [0,1] corregida
// defensivamente antes del blend. Se reporta para loguear, nunca aborta.
type ProbAnomaly struct {
	Source    string
	Raw       float64
	Corrected float64
}

// EstimateSet agrupa las estimaciones independientes de probabilidad YES.
// Signal siempre existe; las otras dos son opcionales según datos.
type EstimateSet struct {
	Signal     float64
	MonteCarlo *float64
	Bayesian   *float64
}

// Spread devuelve max-min entre las estimaciones presentes: la medida de
// acuerdo entre estimadores que alimenta la confianza.
func (e EstimateSet) Spread() float64 {
	lo, hi := e.Signal, e.Signal
	for _, p := range []*float64{e.MonteCarlo, e.Bayesian} {
		if p == nil {
			continue
		}
		if *p < lo {
			lo = *p
		}
		if *p > hi {
			hi = *p
		}
	}
	return hi - lo
}

// NormalizeProbability corrige defensivamente valores probabilísticos fuera
// de [0,1]. Valores en (1,100] se tratan como porcentaje mal escalado y se
// dividen por 100; el resto se recorta al rango. Devuelve true si hubo
// corrección para que el caller lo loguee.
func NormalizeProbability(p float64) (float64, bool) {
	if p >= 0 && p <= 1 {
		return p, false
	}
	if p > 1 && p <= 100 {
		return p / 100, true
	}
	if p < 0 {
		return 0, true
	}
	return 1, true
}

// BlendConsensus combina las estimaciones en una probabilidad de consenso.
// Los pesos se renormalizan sobre los estimadores presentes: un sub-modelo
// sin datos sale del blend en vez de arrastrarlo a cero.
func BlendConsensus(est EstimateSet, cryptoMode bool) (float64, []ProbAnomaly) {
	sw, mw, bw := genericSignalWeight, genericMCWeight, genericBayesWeight
	if cryptoMode {
		sw, mw, bw = cryptoSignalWeight, cryptoMCWeight, cryptoBayesWeight
	}

	var anomalies []ProbAnomaly
	normalize := func(source string, p float64) float64 {
		fixed, anomalous := NormalizeProbability(p)
		if anomalous {
			anomalies = append(anomalies, ProbAnomaly{Source: source, Raw: p, Corrected: fixed})
		}
		return fixed
	}

	sum := normalize("signal", est.Signal) * sw
	weight := sw
	if est.MonteCarlo != nil {
		sum += normalize("monte_carlo", *est.MonteCarlo) * mw
		weight += mw
	}
	if est.Bayesian != nil {
		sum += normalize("bayesian", *est.Bayesian) * bw
		weight += bw
	}

	consensus := sum / weight
	if consensus < 0 {
		consensus = 0
	} else if consensus > 1 {
		consensus = 1
	}
	return consensus, anomalies
}

// ConfidenceScore puntúa 0-100 la confianza en la recomendación.
// Suma una base fija, el tier del signal score y el acuerdo entre
// estimadores; un conflicto de smart money resta 30 puntos.
func ConfidenceScore(signalScore int, spread float64, hasConflict bool) int {
	confidence := 20 + confidenceTier(signalScore) + agreementPoints(spread)
	if confidence > 95 {
		confidence = 95
	}
	if hasConflict {
		confidence -= 30
	}
	if confidence < 5 {
		confidence = 5
	}
	return confidence
}

func confidenceTier(score int) int {
	switch {
	case score >= 70:
		return 30
	case score >= 55:
		return 24
	case score >= 40:
		return 18
	case score >= 25:
		return 12
	default:
		return 6
	}
}

func agreementPoints(spread float64) int {
	switch {
	case spread <= 0.03:
		return 40
	case spread <= 0.06:
		return 28
	case spread <= 0.10:
		return 16
	default:
		return 5
	}
}

// KellyConfidenceMultiplier encoge el sizing en bandas de baja confianza
// en vez de rechazar el trade de forma binaria.
func KellyConfidenceMultiplier(confidence int) float64 {
	switch {
	case confidence < 30:
		return 0.3
	case confidence < 50:
		return 0.6
	default:
		return 1.0
	}
}

// DeepAnalysisResult es la salida de consenso de un análisis profundo.
// Se construye una vez por request, es inmutable después y no se persiste
// desde el core: cada request recalcula con datos frescos.
type DeepAnalysisResult struct {
	Market MarketSnapshot

	ModelProbability float64
	MarketPrice      float64
	Edge             float64 // consenso - mercado
	RecommendedSide  string
	Confidence       int
	KellyPct         float64 // fracción final del bankroll tras confianza

	Kelly      *KellyResult
	MonteCarlo *MonteCarloResult
	Bayesian   *BayesianResult
	Greeks     *GreeksResult
	Holders    *HoldersResult

	Conflicts       []Conflict
	IsPositiveSetup bool

	// Errors registra fallos de fetch por fuente; el sub-modelo afectado
	// degrada en vez de abortar el análisis.
	Errors map[string]string
}

// EdgePct devuelve el edge como porcentaje sobre el costo de entrada del
// lado recomendado (para NO el costo es 1 - precio YES).
func (r DeepAnalysisResult) EdgePct() float64 {
	cost := r.MarketPrice
	if r.RecommendedSide == SideNo {
		cost = 1 - r.MarketPrice
	}
	if cost <= 0 {
		return 0
	}
	return math.Abs(r.Edge) / cost * 100
}

// HasConflict devuelve true si se detectó desacuerdo smart money.
func (r DeepAnalysisResult) HasConflict() bool {
	return len(r.Conflicts) > 0
}
