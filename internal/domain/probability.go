package domain

// Límites del estimador: ningún modelo puede empujar la probabilidad a un
// extremo casi-cierto por fuerte que sea la señal.
const (
	ProbFloor = 0.03
	ProbCeil  = 0.97
)

// ClampProbability recorta p al rango [0.03, 0.97].
func ClampProbability(p float64) float64 {
	if p < ProbFloor {
		return ProbFloor
	}
	if p > ProbCeil {
		return ProbCeil
	}
	return p
}

// EstimateProbability convierte el snapshot en una probabilidad calibrada
// para YES. Parte del precio de mercado y lo ajusta por el tilt whale,
// acotado por un techo de confianza que depende del signal score y de la
// concentración de smart money.
//
// Fórmula:
//
//	confidence = techo(signal_score) × boost(smart_money_ratio)
//	edge       = tilt × confidence
//	resultado  = clamp(yes_price + edge, 0.03, 0.97)
//
// Sin flujo whale significativo devuelve clamp(yes_price): el tilt solo no
// es una probabilidad, necesita evidencia de capital detrás.
func EstimateProbability(m MarketSnapshot, minWhaleVolume float64) float64 {
	base := m.YesPrice
	if m.Whale == nil || !m.Whale.IsSignificant(minWhaleVolume) {
		return ClampProbability(base)
	}

	confidence := signalAdjustmentCeiling(m.SignalScore)
	switch {
	case m.SmartMoneyRatio >= 0.5:
		confidence *= 1.3
	case m.SmartMoneyRatio >= 0.3:
		confidence *= 1.1
	}

	edge := m.Whale.Tilt() * confidence
	return ClampProbability(base + edge)
}

// signalAdjustmentCeiling devuelve el ajuste máximo absoluto de probabilidad
// permitido en cada tier de signal score.
func signalAdjustmentCeiling(score int) float64 {
	switch {
	case score >= 70:
		return 0.12
	case score >= 55:
		return 0.08
	case score >= 40:
		return 0.05
	case score >= 25:
		return 0.03
	default:
		return 0.01
	}
}

// Edge devuelve la ventaja del modelo sobre el mercado: modelo - mercado.
func Edge(modelProb, marketPrice float64) float64 {
	return modelProb - marketPrice
}

// EdgePercent devuelve el edge relativo al precio de mercado en porcentaje.
// Devuelve 0 con precio no positivo.
func EdgePercent(modelProb, marketPrice float64) float64 {
	if marketPrice <= 0 {
		return 0
	}
	return (modelProb - marketPrice) / marketPrice * 100
}

// SideFromProbability traduce una probabilidad YES a lado recomendado.
// YES desde 0.55, NO desde 0.45; entre ambos la banda muerta es NEUTRAL.
func SideFromProbability(p float64) string {
	switch {
	case p >= 0.55:
		return SideYes
	case p <= 0.45:
		return SideNo
	default:
		return SideNeutral
	}
}
