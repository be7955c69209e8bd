package domain

import "time"

// Lados recomendables de un mercado binario.
const (
	SideYes     = "YES"
	SideNo      = "NO"
	SideNeutral = "NEUTRAL"
)

// MarketSnapshot es la foto inmutable de un mercado sobre la que corre todo
// el análisis. La construye el scanner con datos ya fetcheados; el core nunca
// la muta ni sale a la red por su cuenta.
type MarketSnapshot struct {
	ConditionID  string
	Question     string
	Slug         string
	EventSlug    string
	YesPrice     float64 // precio YES en (0,1)
	NoPrice      float64 // precio NO, normalmente 1 - YesPrice
	Volume24h    float64 // USDC últimas 24h
	VolumeTotal  float64
	Liquidity    float64
	EndDate      time.Time
	ClobTokenIDs []string // índice 0 = token YES

	// SignalScore es el heurístico externo 0-100 (tilt/volumen/smart
	// money/liquidez/recencia). Lo calcula ScoreSignal, no el core.
	SignalScore int

	// SmartMoneyRatio es la fracción [0,1] del volumen whale que viene de
	// wallets con rentabilidad histórica demostrada.
	SmartMoneyRatio float64

	// Whale resume el flujo de trades grandes; nil cuando no hay datos.
	Whale *WhaleFlow
}

// DaysToClose devuelve los días hasta la resolución del mercado.
// Devuelve 0 si EndDate no está definido o ya pasó.
func (m MarketSnapshot) DaysToClose() float64 {
	if m.EndDate.IsZero() {
		return 0
	}
	d := time.Until(m.EndDate).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// YesTokenID devuelve el token CLOB del lado YES, o "" si no hay tokens.
func (m MarketSnapshot) YesTokenID() string {
	if len(m.ClobTokenIDs) == 0 {
		return ""
	}
	return m.ClobTokenIDs[0]
}

// PriceFor devuelve el precio de entrada para un lado dado.
// Para NEUTRAL devuelve el precio YES como referencia.
func (m MarketSnapshot) PriceFor(side string) float64 {
	if side == SideNo {
		return m.NoPrice
	}
	return m.YesPrice
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa el conditionID como fallback.
func TruncateQuestion(question, conditionID string, maxLen int) string {
	q := question
	if q == "" {
		if len(conditionID) > 20 {
			q = conditionID[:20] + "..."
		} else {
			q = conditionID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}
