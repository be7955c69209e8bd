package domain

import "math"

// Umbrales de señal temporal y de volatilidad.
const (
	thetaAnomalyMin   = 0.005 // pp/día de desviación para marcar oportunidad
	thetaMinDays      = 3.0   // bajo esto el theta ya no es operable
	vegaSleepRatio    = 0.4
	vegaSpikeRatio    = 2.5
	vegaElevatedRatio = 1.5
	vegaMinHistVol    = 0.05
)

// ThetaResult describe la deriva temporal esperada del precio hacia la
// resolución y su anomalía frente a la deriva observada.
type ThetaResult struct {
	ExpectedDrift float64 // pp/día que el precio debería moverse hacia el objetivo
	ActualDrift   float64 // pp/día observados en las últimas muestras
	Anomaly       float64 // expected - actual
	TimeValue     float64 // prima sobre el valor intrínseco
	DaysToClose   float64
	DominantSide  string
	IsOpportunity bool
	HasData       bool // false si no hubo historia para la deriva observada
}

// ThetaYes devuelve la deriva diaria del lado YES en puntos porcentuales.
func (t ThetaResult) ThetaYes() float64 {
	return t.ExpectedDrift * 100
}

// ThetaNo devuelve la deriva diaria del lado NO en puntos porcentuales.
func (t ThetaResult) ThetaNo() float64 {
	return -t.ExpectedDrift * 100
}

// VegaResult describe el régimen de volatilidad del mercado.
type VegaResult struct {
	HistoricalVol float64
	RecentVol     float64
	VolRatio      float64
	Regime        string // "spike" | "low" | "high" | "normal" | "unknown"
	IsSleeping    bool
	IsSpiking     bool
	HasData       bool
}

// VolChangePct devuelve el cambio de volatilidad reciente vs histórica en %.
func (v VegaResult) VolChangePct() float64 {
	return (v.VolRatio - 1) * 100
}

// GreeksResult agrupa las dos griegas adaptadas a mercados binarios.
type GreeksResult struct {
	Theta ThetaResult
	Vega  VegaResult
}

// HasTimeOpportunity devuelve true si la anomalía temporal es operable.
func (g GreeksResult) HasTimeOpportunity() bool {
	return g.Theta.IsOpportunity
}

// HasVolSignal devuelve true si el régimen de volatilidad da señal.
func (g GreeksResult) HasVolSignal() bool {
	return g.Vega.IsSleeping || g.Vega.IsSpiking
}

// AnalyzeTheta compara la deriva que el precio necesita para llegar a su
// objetivo (1.0 si domina YES, 0.0 si domina NO) contra la deriva observada
// en las últimas muestras de la serie.
//
// Fórmula: expected = (target - yes) / días; actual = Δprecio / Δdías sobre
// las últimas min(24, n-1) muestras con piso de 0.1 días para el divisor.
func AnalyzeTheta(yesPrice, daysToClose float64, history PriceHistory) ThetaResult {
	days := daysToClose
	if days <= 0 {
		days = 1
	}

	target := 1.0
	side := SideYes
	if yesPrice < 0.50 {
		target = 0.0
		side = SideNo
	}
	expected := (target - yesPrice) / days

	result := ThetaResult{
		ExpectedDrift: expected,
		DaysToClose:   days,
		DominantSide:  side,
		TimeValue:     timeValue(yesPrice),
	}

	if len(history.Points) >= 2 {
		n := len(history.Points) - 1
		if n > 24 {
			n = 24
		}
		recent := history.Points[len(history.Points)-1]
		past := history.Points[len(history.Points)-1-n]
		dtDays := float64(recent.Timestamp-past.Timestamp) / 86400
		if dtDays < 0.1 {
			dtDays = 0.1
		}
		result.ActualDrift = (recent.Price - past.Price) / dtDays
		result.HasData = true
	}

	result.Anomaly = result.ExpectedDrift - result.ActualDrift
	result.IsOpportunity = math.Abs(result.Anomaly) > thetaAnomalyMin && days >= thetaMinDays
	return result
}

// timeValue devuelve la prima del precio sobre su valor intrínseco,
// con intrínseco = |yes - 0.5| medido desde el lado dominante.
func timeValue(yesPrice float64) float64 {
	intrinsic := math.Abs(yesPrice - 0.5)
	var tv float64
	if yesPrice >= 0.5 {
		tv = yesPrice - intrinsic
	} else {
		tv = (1 - yesPrice) - intrinsic
	}
	if tv < 0 {
		return 0
	}
	return tv
}

// AnalyzeVega clasifica el régimen de volatilidad comparando la volatilidad
// reciente (últimos 24 retornos) contra la histórica de la serie completa.
// Con menos de 5 muestras devuelve régimen "unknown".
func AnalyzeVega(history PriceHistory) VegaResult {
	if len(history.Points) < 5 {
		return VegaResult{Regime: "unknown"}
	}

	hist := history.Volatility()
	recent := history.RecentVolatility(24)

	ratio := 1.0
	if hist > 0.001 {
		ratio = recent / hist
	}

	result := VegaResult{
		HistoricalVol: hist,
		RecentVol:     recent,
		VolRatio:      ratio,
		IsSleeping:    ratio < vegaSleepRatio && hist > vegaMinHistVol,
		IsSpiking:     ratio > vegaSpikeRatio,
		HasData:       true,
	}

	switch {
	case result.IsSpiking:
		result.Regime = "spike"
	case result.IsSleeping:
		result.Regime = "low"
	case ratio > vegaElevatedRatio:
		result.Regime = "high"
	default:
		result.Regime = "normal"
	}
	return result
}

// AnalyzeGreeks calcula theta y vega de un mercado en una pasada.
func AnalyzeGreeks(yesPrice, daysToClose float64, history PriceHistory) GreeksResult {
	return GreeksResult{
		Theta: AnalyzeTheta(yesPrice, daysToClose, history),
		Vega:  AnalyzeVega(history),
	}
}
