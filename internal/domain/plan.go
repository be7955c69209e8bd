package domain

import "fmt"

// Geometría de precios del plan: objetivo y stop se derivan del precio de
// entrada, con topes absolutos para no proyectar salidas en colas ilíquidas.
const (
	planTargetMult = 1.30
	planTargetCap  = 0.85
	planStopMult   = 0.80
	planStopFloor  = 0.05
)

// minPlanSignal es el signal score mínimo para autorizar una apuesta.
const minPlanSignal = 60

// maxPlanWarnings veta el plan cuando se acumulan demasiadas advertencias,
// aunque el setup tenga edge.
const maxPlanWarnings = 3

// TradePlan es el plan de entrada accionable que acompaña a un análisis:
// precios de entrada/objetivo/stop, ratio riesgo/beneficio y el veredicto
// final con sus razones legibles.
type TradePlan struct {
	Side       string
	Entry      float64
	Target     float64
	Stop       float64
	RiskReward float64
	ShouldBet  bool
	Reasons    []string
	Warnings   []string
}

// BuildTradePlan construye el plan de trading de un análisis terminado.
// trend24h es el cambio relativo del precio YES en 24h; para planes NO se
// invierte, de modo que tendencia positiva siempre significa "a favor del
// lado recomendado". Con lado NEUTRAL el plan reporta precios sobre YES
// como referencia pero nunca autoriza apuesta.
func BuildTradePlan(m MarketSnapshot, r DeepAnalysisResult, trend24h float64) TradePlan {
	side := r.RecommendedSide
	entry := m.PriceFor(side)

	target := entry * planTargetMult
	if target > planTargetCap {
		target = planTargetCap
	}
	stop := entry * planStopMult
	if stop < planStopFloor {
		stop = planStopFloor
	}

	plan := TradePlan{
		Side:   side,
		Entry:  entry,
		Target: target,
		Stop:   stop,
	}
	if loss := entry - stop; loss > 0 {
		plan.RiskReward = (target - entry) / loss
	}

	plan.review(m, side, trend24h)

	plan.ShouldBet = side != SideNeutral &&
		r.IsPositiveSetup &&
		m.SignalScore >= minPlanSignal &&
		len(plan.Warnings) < maxPlanWarnings
	return plan
}

// review llena Reasons y Warnings inspeccionando flujo whale, volumen,
// tendencia, liquidez y tiempo a cierre.
func (p *TradePlan) review(m MarketSnapshot, side string, trend24h float64) {
	// Consenso whale a favor del lado elegido.
	var share float64
	if m.Whale != nil {
		share = m.Whale.YesShare()
		if side == SideNo {
			share = 1 - share
		}
	}
	switch {
	case share >= 0.75:
		p.reason("strong whale consensus: %.0f%% on %s", share*100, side)
	case share >= 0.60:
		p.reason("moderate whale consensus: %.0f%% on %s", share*100, side)
	default:
		p.warning("weak whale consensus: %.0f%%", share*100)
	}

	switch {
	case m.Volume24h >= 100_000:
		p.reason("high volume: $%.0fK in 24h", m.Volume24h/1000)
	case m.Volume24h >= 50_000:
		p.reason("decent volume: $%.0fK in 24h", m.Volume24h/1000)
	default:
		p.warning("low volume: $%.0fK in 24h", m.Volume24h/1000)
	}

	trend := trend24h
	if side == SideNo {
		trend = -trend
	}
	switch {
	case trend > 0.10:
		p.reason("strong aligned trend: %+.1f%% in 24h", trend*100)
	case trend > 0:
		p.reason("positive trend: %+.1f%% in 24h", trend*100)
	case trend > -0.05:
		p.warning("flat trend")
	default:
		p.warning("trend against position: %.1f%% in 24h", trend*100)
	}

	if m.Liquidity < 20_000 {
		p.warning("thin liquidity, exiting may be hard")
	}

	days := m.DaysToClose()
	if days < 1 {
		p.warning("closes within 24h, resolution risk")
	} else if days > 21 {
		p.warning("long horizon, capital locked %.0f days", days)
	}
}

func (p *TradePlan) reason(format string, args ...any) {
	p.Reasons = append(p.Reasons, fmt.Sprintf(format, args...))
}

func (p *TradePlan) warning(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}
