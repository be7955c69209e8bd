package domain

import "time"

// DefaultWhaleTradeMin es el umbral de materialidad de un trade whale en USDC.
const DefaultWhaleTradeMin = 5000.0

// WhaleFlow agrega el flujo de trades whale de un mercado en una ventana.
type WhaleFlow struct {
	YesVolume   float64
	NoVolume    float64
	YesCount    int
	NoCount     int
	TotalVolume float64
	WindowHours float64
	// Último trade whale observado por lado; cero si no hubo.
	LastYesTrade time.Time
	LastNoTrade  time.Time
}

// Tilt devuelve el desequilibrio de volumen en [-1,1]: +1 todo YES, -1 todo NO.
// Fórmula: (yes - no) / total. Devuelve 0 sin volumen.
func (w WhaleFlow) Tilt() float64 {
	if w.TotalVolume <= 0 {
		return 0
	}
	return (w.YesVolume - w.NoVolume) / w.TotalVolume
}

// YesShare devuelve la fracción [0,1] del volumen whale en el lado YES.
// Sin volumen devuelve 0.5 (neutral).
func (w WhaleFlow) YesShare() float64 {
	if w.TotalVolume <= 0 {
		return 0.5
	}
	return w.YesVolume / w.TotalVolume
}

// IsSignificant devuelve true si el volumen agregado supera el mínimo
// para considerar el flujo como evidencia.
func (w WhaleFlow) IsSignificant(minVolume float64) bool {
	return w.TotalVolume >= minVolume
}

// DominantSide devuelve el lado con más volumen, o NEUTRAL en empate.
func (w WhaleFlow) DominantSide() string {
	switch {
	case w.YesVolume > w.NoVolume:
		return SideYes
	case w.NoVolume > w.YesVolume:
		return SideNo
	default:
		return SideNeutral
	}
}

// LastTrade devuelve el timestamp del trade whale más reciente de ambos lados.
func (w WhaleFlow) LastTrade() time.Time {
	if w.LastYesTrade.After(w.LastNoTrade) {
		return w.LastYesTrade
	}
	return w.LastNoTrade
}

// BuildWhaleFlow agrega los trades con Amount >= minTrade dentro de la
// ventana [now-window, now]. Devuelve nil si no hay trades whale.
func BuildWhaleFlow(trades []Trade, minTrade float64, window time.Duration, now time.Time) *WhaleFlow {
	if minTrade <= 0 {
		minTrade = DefaultWhaleTradeMin
	}
	cutoff := now.Add(-window).Unix()

	flow := WhaleFlow{WindowHours: window.Hours()}
	for _, t := range trades {
		amount := t.Amount()
		if amount < minTrade || t.Timestamp < cutoff {
			continue
		}
		ts := time.Unix(t.Timestamp, 0)
		if t.IsYes() {
			flow.YesVolume += amount
			flow.YesCount++
			if ts.After(flow.LastYesTrade) {
				flow.LastYesTrade = ts
			}
		} else {
			flow.NoVolume += amount
			flow.NoCount++
			if ts.After(flow.LastNoTrade) {
				flow.LastNoTrade = ts
			}
		}
	}

	flow.TotalVolume = flow.YesVolume + flow.NoVolume
	if flow.YesCount+flow.NoCount == 0 {
		return nil
	}
	return &flow
}

// SmartMoneyRatio devuelve la fracción del volumen whale aportada por
// wallets marcados como smart money. Sin volumen whale devuelve 0.
func SmartMoneyRatio(trades []Trade, minTrade float64, smartWallets map[string]bool) float64 {
	if minTrade <= 0 {
		minTrade = DefaultWhaleTradeMin
	}
	var total, smart float64
	for _, t := range trades {
		amount := t.Amount()
		if amount < minTrade {
			continue
		}
		total += amount
		if smartWallets[t.ProxyWallet] {
			smart += amount
		}
	}
	if total <= 0 {
		return 0
	}
	return smart / total
}
