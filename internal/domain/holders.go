package domain

import (
	"sort"
	"strings"
)

// SideStats resume la calidad de los holders de un lado del mercado.
// El PnL usado es el unrealized (cashPnl) que expone la Data-API; el
// lifetime PnL por wallet exigiría una llamada extra por holder.
type SideStats struct {
	Side             string
	Count            int
	MedianPnL        float64
	ProfitableCount  int
	ProfitablePct    float64
	Above5kCount     int // holders con valor de posición > $5K
	Above10kCount    int
	Above50kCount    int
	TopHolderProfit  float64
	TopHolderAddress string
}

// Above10kPct devuelve el porcentaje de holders con posición > $10K.
func (s SideStats) Above10kPct() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Above10kCount) / float64(s.Count) * 100
}

// Above5kPct devuelve el porcentaje de holders con posición > $5K.
func (s SideStats) Above5kPct() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Above5kCount) / float64(s.Count) * 100
}

// ScoreBreakdown descompone el smart score en sus tres componentes 0-100.
type ScoreBreakdown struct {
	Holders float64
	Tilt    float64
	Model   float64
}

// HoldersResult es la salida completa del análisis de holders.
type HoldersResult struct {
	YesStats       SideStats
	NoStats        SideStats
	SmartScore     int
	SmartScoreSide string
	Breakdown      ScoreBreakdown // del lado ganador
	HasPositions   bool
}

// BuildSideStats calcula las métricas de holders de un lado.
// side es SideYes o SideNo; el match contra Outcome es case-insensitive.
func BuildSideStats(positions []HolderPosition, side string) SideStats {
	stats := SideStats{Side: side}

	var pnls []float64
	for _, p := range positions {
		if !strings.EqualFold(p.Outcome, side) || p.Size <= 0 {
			continue
		}
		stats.Count++
		pnls = append(pnls, p.CashPnL)

		if p.CashPnL > 0 {
			stats.ProfitableCount++
		}
		if p.CurrentValue > 5000 {
			stats.Above5kCount++
		}
		if p.CurrentValue > 10000 {
			stats.Above10kCount++
		}
		if p.CurrentValue > 50000 {
			stats.Above50kCount++
		}
		if stats.Count == 1 || p.CashPnL > stats.TopHolderProfit {
			stats.TopHolderProfit = p.CashPnL
			stats.TopHolderAddress = p.Wallet
		}
	}

	if stats.Count == 0 {
		return SideStats{Side: side}
	}
	stats.ProfitablePct = float64(stats.ProfitableCount) / float64(stats.Count) * 100
	stats.MedianPnL = median(pnls)
	return stats
}

// sideQuality puntúa 0-100 la calidad de los holders de un lado con cuatro
// pilares independientes de 25 puntos: rentabilidad amplia, concentración
// whale, mediana positiva y presencia de un mega-holder.
// El pilar whale satura cuando el 10% de los holders pasa de $10K.
func sideQuality(stats SideStats) float64 {
	if stats.Count == 0 {
		return 0
	}
	score := minFloat(25, stats.ProfitablePct*0.25)
	score += minFloat(25, stats.Above10kPct()*2.5)
	if stats.MedianPnL > 0 {
		score += 25
	}
	if stats.Above50kCount > 0 {
		score += 25
	}
	return score
}

// ScoreHolders combina calidad de holders, tilt whale y probabilidad del
// modelo en un smart score 0-100 por lado, y reporta el lado ganador.
//
// Pesos: 40% holders, 30% tilt, 30% modelo. Sin datos de holders en ambos
// lados reequilibra a 50% tilt / 50% modelo con el término holders en cero.
func ScoreHolders(positions []HolderPosition, whale *WhaleFlow, modelYesProb float64) HoldersResult {
	yesStats := BuildSideStats(positions, SideYes)
	noStats := BuildSideStats(positions, SideNo)

	yesTilt, noTilt := 0.5, 0.5
	if whale != nil && whale.TotalVolume > 0 {
		yesTilt = whale.YesShare()
		noTilt = 1 - yesTilt
	}
	modelNo := 1 - modelYesProb

	result := HoldersResult{
		YesStats:     yesStats,
		NoStats:      noStats,
		HasPositions: yesStats.Count > 0 || noStats.Count > 0,
	}

	var scoreYes, scoreNo float64
	var breakYes, breakNo ScoreBreakdown

	if !result.HasPositions {
		scoreYes = 0.5*(yesTilt*100) + 0.5*(modelYesProb*100)
		scoreNo = 0.5*(noTilt*100) + 0.5*(modelNo*100)
		breakYes = ScoreBreakdown{Tilt: yesTilt * 100, Model: modelYesProb * 100}
		breakNo = ScoreBreakdown{Tilt: noTilt * 100, Model: modelNo * 100}
	} else {
		yesQuality := sideQuality(yesStats)
		noQuality := sideQuality(noStats)
		scoreYes = 0.4*yesQuality + 0.3*(yesTilt*100) + 0.3*(modelYesProb*100)
		scoreNo = 0.4*noQuality + 0.3*(noTilt*100) + 0.3*(modelNo*100)
		breakYes = ScoreBreakdown{Holders: yesQuality, Tilt: yesTilt * 100, Model: modelYesProb * 100}
		breakNo = ScoreBreakdown{Holders: noQuality, Tilt: noTilt * 100, Model: modelNo * 100}
	}

	if scoreNo > scoreYes {
		result.SmartScore = int(scoreNo)
		result.SmartScoreSide = SideNo
		result.Breakdown = breakNo
	} else {
		result.SmartScore = int(scoreYes)
		result.SmartScoreSide = SideYes
		result.Breakdown = breakYes
	}
	return result
}

// median devuelve la mediana; con n par promedia los dos centrales.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
