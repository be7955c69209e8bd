package domain

import (
	"fmt"
	"math"
	"time"
)

// Cotas del update bayesiano. Los LR se acotan para que ninguna evidencia
// aislada arrastre el posterior a un extremo.
const (
	MaxLikelihoodRatio = 3.0
	MinLikelihoodRatio = 0.33
	minEvidenceVolume  = 500.0 // USDC mínimos en ventana para considerar evidencia

	surgeWindow         = 2 * time.Hour
	divergenceWindow    = 4 * time.Hour
	consensusWindow     = 4 * time.Hour
	consensusMinWallets = 3
	consensusMinTrade   = 5000.0
	evidenceTradeMin    = 500.0 // piso por trade individual en surge/divergencia
)

// Evidence es una pieza de evidencia bayesiana con su likelihood ratio.
// LR > 1 apoya YES, LR < 1 apoya NO.
type Evidence struct {
	Category        string // "surge" | "divergence" | "consensus"
	Description     string
	LikelihoodRatio float64
}

// FavorsYes devuelve true si la evidencia apoya el lado YES.
func (e Evidence) FavorsYes() bool {
	return e.LikelihoodRatio > 1.0
}

// Strength clasifica la fuerza de la evidencia por su LR.
func (e Evidence) Strength() string {
	lr := e.LikelihoodRatio
	switch {
	case lr >= 2.0 || lr <= 0.5:
		return "strong"
	case lr >= 1.3 || lr <= 0.77:
		return "moderate"
	default:
		return "weak"
	}
}

// BayesianResult es el resultado del update de probabilidad por evidencia.
type BayesianResult struct {
	Prior           float64
	Posterior       float64
	Evidence        []Evidence
	CombinedLR      float64
	UpdateMagnitude float64 // |posterior - prior|
}

// EdgeVsMarket devuelve cuánto se aleja el posterior del prior de mercado.
func (b BayesianResult) EdgeVsMarket() float64 {
	return b.Posterior - b.Prior
}

// IsOverreaction devuelve true si el mercado se movió lejos del posterior.
func (b BayesianResult) IsOverreaction() bool {
	return math.Abs(b.EdgeVsMarket()) >= 0.08
}

// Direction devuelve el lado hacia el que empuja la evidencia.
func (b BayesianResult) Direction() string {
	switch {
	case b.Posterior > b.Prior+0.02:
		return SideYes
	case b.Posterior < b.Prior-0.02:
		return SideNo
	default:
		return SideNeutral
	}
}

// HasSignal devuelve true si hubo evidencia y el update es material.
func (b BayesianResult) HasSignal() bool {
	return len(b.Evidence) > 0 && math.Abs(b.EdgeVsMarket()) >= 0.03
}

// UpdateProbability corre el update bayesiano completo sobre el prior
// (típicamente el precio YES del mercado) usando el comportamiento whale
// como evidencia, sin depender de feeds de noticias.
//
// Fórmula: posterior_odds = prior_odds × LR₁ × LR₂ × LR₃;
// posterior = odds / (1 + odds), recortado a [0.03, 0.97].
func UpdateProbability(prior float64, trades []Trade, priceChange24h, avgHourlyVolume float64, now time.Time) BayesianResult {
	var evidence []Evidence
	if e := detectWhaleSurge(trades, avgHourlyVolume, now); e != nil {
		evidence = append(evidence, *e)
	}
	if e := detectDivergence(trades, priceChange24h, now); e != nil {
		evidence = append(evidence, *e)
	}
	if e := detectConsensus(trades, now); e != nil {
		evidence = append(evidence, *e)
	}

	priorClamped := clampRange(prior, 0.01, 0.99)
	odds := priorClamped / (1 - priorClamped)

	combined := 1.0
	for _, e := range evidence {
		odds *= e.LikelihoodRatio
		combined *= e.LikelihoodRatio
	}

	posterior := clampRange(odds/(1+odds), ProbFloor, ProbCeil)

	return BayesianResult{
		Prior:           prior,
		Posterior:       posterior,
		Evidence:        evidence,
		CombinedLR:      combined,
		UpdateMagnitude: math.Abs(posterior - prior),
	}
}

// detectWhaleSurge busca volumen whale inusual en las últimas 2h contra el
// promedio horario. Surge de 3×+ en una dirección clara es señal fuerte.
func detectWhaleSurge(trades []Trade, avgHourlyVolume float64, now time.Time) *Evidence {
	yes, no := sideVolumes(trades, surgeWindow, evidenceTradeMin, now)
	total := yes + no
	if total < minEvidenceVolume {
		return nil
	}

	var surgeRatio float64
	if avgHourlyVolume > 0 {
		surgeRatio = total / (avgHourlyVolume * surgeWindow.Hours())
	} else if total > 5000 {
		// Sin baseline asumimos surge moderado si el volumen absoluto es alto.
		surgeRatio = 2.0
	} else {
		surgeRatio = 1.0
	}
	if surgeRatio < 1.5 {
		return nil
	}

	baseLR := 1.3
	switch {
	case surgeRatio >= 5.0:
		baseLR = 2.0
	case surgeRatio >= 3.0:
		baseLR = 1.5
	}

	yesShare := yes / total
	var lr float64
	var desc string
	switch {
	case yesShare > 0.6:
		lr = baseLR
		desc = fmt.Sprintf("Whale surge %.1fx avg, %.0f%% YES", surgeRatio, yesShare*100)
	case yesShare < 0.4:
		lr = 1 / baseLR
		desc = fmt.Sprintf("Whale surge %.1fx avg, %.0f%% NO", surgeRatio, (1-yesShare)*100)
	default:
		// Surge mixto no dice nada direccional.
		return nil
	}

	return &Evidence{Category: "surge", Description: desc, LikelihoodRatio: clampLR(lr)}
}

// detectDivergence busca precio moviéndose contra el flujo whale:
// precio cayendo con whales comprando YES es el clásico "buying the dip".
func detectDivergence(trades []Trade, priceChange24h float64, now time.Time) *Evidence {
	yes, no := sideVolumes(trades, divergenceWindow, evidenceTradeMin, now)
	total := yes + no
	if total < minEvidenceVolume {
		return nil
	}
	yesShare := yes / total

	var lr float64
	var desc string
	switch {
	case priceChange24h < -0.05 && yesShare > 0.60:
		strength := math.Min(math.Abs(priceChange24h)*10, 1.0)
		lr = 1.3 + strength*0.7
		desc = fmt.Sprintf("Price down %.1f%% but whales %.0f%% YES", math.Abs(priceChange24h)*100, yesShare*100)
	case priceChange24h > 0.05 && yesShare < 0.40:
		strength := math.Min(priceChange24h*10, 1.0)
		lr = 1 / (1.3 + strength*0.7)
		desc = fmt.Sprintf("Price up %.1f%% but whales %.0f%% NO", priceChange24h*100, (1-yesShare)*100)
	default:
		return nil
	}

	return &Evidence{Category: "divergence", Description: desc, LikelihoodRatio: clampLR(lr)}
}

// detectConsensus busca 3+ wallets independientes apostando $5K+ al mismo
// lado en 4h. Cada wallet adicional suma convicción hasta un tope.
func detectConsensus(trades []Trade, now time.Time) *Evidence {
	cutoff := now.Add(-consensusWindow).Unix()
	walletsYes := map[string]float64{}
	walletsNo := map[string]float64{}

	for _, t := range trades {
		if t.Timestamp < cutoff || t.ProxyWallet == "" {
			continue
		}
		amount := t.Amount()
		if amount < consensusMinTrade {
			continue
		}
		if t.IsYes() {
			walletsYes[t.ProxyWallet] += amount
		} else {
			walletsNo[t.ProxyWallet] += amount
		}
	}

	yesCount, noCount := len(walletsYes), len(walletsNo)
	var lr float64
	var desc string
	switch {
	case yesCount >= consensusMinWallets && yesCount > noCount:
		lr = 1.4 + math.Min(float64(yesCount-consensusMinWallets)*0.15, 0.6)
		desc = fmt.Sprintf("%d whales ($5K+) consensus YES", yesCount)
	case noCount >= consensusMinWallets && noCount > yesCount:
		lr = 1 / (1.4 + math.Min(float64(noCount-consensusMinWallets)*0.15, 0.6))
		desc = fmt.Sprintf("%d whales ($5K+) consensus NO", noCount)
	default:
		return nil
	}

	return &Evidence{Category: "consensus", Description: desc, LikelihoodRatio: clampLR(lr)}
}

// sideVolumes acumula volumen whale por lado dentro de la ventana.
func sideVolumes(trades []Trade, window time.Duration, minTrade float64, now time.Time) (yes, no float64) {
	cutoff := now.Add(-window).Unix()
	for _, t := range trades {
		if t.Timestamp < cutoff {
			continue
		}
		amount := t.Amount()
		if amount < minTrade {
			continue
		}
		if t.IsYes() {
			yes += amount
		} else {
			no += amount
		}
	}
	return yes, no
}

func clampLR(lr float64) float64 {
	return clampRange(lr, MinLikelihoodRatio, MaxLikelihoodRatio)
}
