package domain

import "time"

// signalMinWhaleVolume es el volumen whale mínimo para puntuar el tilt;
// por debajo el componente cae al piso neutral.
const signalMinWhaleVolume = 10000.0

// SignalBreakdown descompone el signal score en sus cinco componentes.
// Máximos: tilt 40, volumen 25, smart money 15, liquidez 10, recencia 10.
type SignalBreakdown struct {
	Tilt       float64
	Volume     float64
	SmartMoney float64
	Liquidity  float64
	Recency    float64
}

// Total suma los componentes del breakdown.
func (b SignalBreakdown) Total() float64 {
	return b.Tilt + b.Volume + b.SmartMoney + b.Liquidity + b.Recency
}

// ScoreSignal calcula el heurístico 0-100 de atractivo del mercado que
// alimenta MarketSnapshot.SignalScore. Combina desequilibrio whale, volumen,
// concentración smart money, liquidez y frescura del último trade grande.
func ScoreSignal(m MarketSnapshot, now time.Time) (int, SignalBreakdown) {
	breakdown := SignalBreakdown{
		Tilt:       tiltScore(m.Whale),
		Volume:     volumeScore(m.Volume24h),
		SmartMoney: smartMoneyScore(m.SmartMoneyRatio),
		Liquidity:  liquidityScore(m.Liquidity),
		Recency:    recencyScore(m.Whale, now),
	}
	return int(breakdown.Total()), breakdown
}

// tiltScore puntúa el desequilibrio whale (máx 40). Consenso fuerte en
// cualquier dirección puntúa alto; sin volumen material queda neutral.
func tiltScore(whale *WhaleFlow) float64 {
	if whale == nil || whale.TotalVolume < signalMinWhaleVolume {
		return 10
	}
	tilt := whale.Tilt()
	if tilt < 0 {
		tilt = -tilt
	}
	switch {
	case tilt >= 0.60:
		return 40
	case tilt >= 0.40:
		return 32
	case tilt >= 0.30:
		return 26
	case tilt >= 0.20:
		return 20
	default:
		return 12
	}
}

// volumeScore puntúa el volumen 24h (máx 25).
func volumeScore(volume24h float64) float64 {
	switch {
	case volume24h >= 500_000:
		return 25
	case volume24h >= 200_000:
		return 21
	case volume24h >= 100_000:
		return 17
	case volume24h >= 50_000:
		return 13
	case volume24h >= 20_000:
		return 9
	default:
		return 5
	}
}

// smartMoneyScore puntúa la concentración smart money (máx 15).
func smartMoneyScore(ratio float64) float64 {
	switch {
	case ratio >= 0.7:
		return 15
	case ratio >= 0.5:
		return 12
	case ratio >= 0.3:
		return 8
	case ratio > 0:
		return 4
	default:
		return 0
	}
}

// liquidityScore puntúa la liquidez del libro (máx 10).
func liquidityScore(liquidity float64) float64 {
	switch {
	case liquidity >= 100_000:
		return 10
	case liquidity >= 50_000:
		return 8
	case liquidity >= 20_000:
		return 6
	case liquidity >= 10_000:
		return 4
	default:
		return 2
	}
}

// recencyScore puntúa la frescura del último trade whale (máx 10).
// Señal vieja es señal débil: a las 24h casi no aporta.
func recencyScore(whale *WhaleFlow, now time.Time) float64 {
	if whale == nil {
		return 0
	}
	last := whale.LastTrade()
	if last.IsZero() {
		return 0
	}
	age := now.Sub(last)
	switch {
	case age <= time.Hour:
		return 10
	case age <= 4*time.Hour:
		return 8
	case age <= 12*time.Hour:
		return 6
	case age <= 24*time.Hour:
		return 4
	default:
		return 2
	}
}

// StrengthLabel clasifica un signal score en etiqueta de display.
func StrengthLabel(score int) string {
	switch {
	case score >= 75:
		return "STRONG BUY"
	case score >= 65:
		return "BUY"
	case score >= 50:
		return "MODERATE"
	case score >= 35:
		return "WEAK"
	default:
		return "AVOID"
	}
}
