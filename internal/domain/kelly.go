package domain

import (
	"fmt"
	"math"
)

// Parámetros de sizing. El cap duro del 10% del bankroll manda sobre
// cualquier Kelly teórico; posiciones bajo el 1% se descartan como polvo.
const (
	DefaultKellyFraction = 0.25
	MaxPositionPct       = 0.10
	MinKellyThreshold    = 0.01
	minKellyEdge         = 0.02
)

// KellyResult es la recomendación de sizing de una posición.
type KellyResult struct {
	ModelProbability float64
	MarketPrice      float64
	Bankroll         float64
	Fraction         float64
	FractionName     string

	// Edge del lado apostado: p - precio de ese lado.
	Edge    float64
	EdgePct float64

	KellyFull       float64 // fracción Kelly completa, sin escalar
	KellyFraction   float64 // fracción final tras fraction y caps
	RecommendedSize float64 // USDC redondeados
	RecommendedSide string

	HasEdge       bool
	IsSignificant bool
}

// SizePct devuelve la fracción final como porcentaje del bankroll.
func (k KellyResult) SizePct() float64 {
	return k.KellyFraction * 100
}

// PotentialProfit devuelve la ganancia si el lado apostado resuelve a 1.
func (k KellyResult) PotentialProfit() float64 {
	if k.MarketPrice <= 0 {
		return 0
	}
	priceSide := k.MarketPrice
	if k.RecommendedSide == SideNo {
		priceSide = 1 - k.MarketPrice
	}
	if priceSide <= 0 {
		return 0
	}
	return k.RecommendedSize * (1/priceSide - 1)
}

// SizePosition calcula el sizing Kelly fraccional de una apuesta binaria.
//
// El lado sale de comparar la probabilidad del modelo (acotada a [0.05,0.95]
// contra error de estimación) con el precio: si el modelo supera el precio
// se apuesta YES; si no, NO con p y precio complementarios.
//
// Fórmula: b = 1/precio - 1; kelly = (b·p - q) / b con q = 1-p.
// Luego kelly_final = min(kelly × fraction, 0.10), y bajo 0.01 se anula.
// Edges menores a 2pp devuelven un resultado en cero (sin señal).
func SizePosition(modelProb, marketPrice, bankroll, fraction float64) (*KellyResult, error) {
	if marketPrice <= 0 || marketPrice > 1 {
		return nil, fmt.Errorf("domain.SizePosition: market price %.4f out of (0,1]: %w", marketPrice, ErrInvalidInput)
	}
	if bankroll <= 0 {
		return nil, fmt.Errorf("domain.SizePosition: bankroll %.2f must be positive: %w", bankroll, ErrInvalidInput)
	}
	if fraction <= 0 {
		fraction = DefaultKellyFraction
	}

	safeProb := math.Min(math.Max(modelProb, 0.05), 0.95)

	side := SideYes
	p, price := safeProb, marketPrice
	if safeProb <= marketPrice {
		side = SideNo
		p = 1 - safeProb
		price = 1 - marketPrice
	}

	result := &KellyResult{
		ModelProbability: modelProb,
		MarketPrice:      marketPrice,
		Bankroll:         bankroll,
		Fraction:         fraction,
		FractionName:     fractionName(fraction),
		RecommendedSide:  side,
		Edge:             p - price,
		EdgePct:          EdgePercent(p, price),
	}

	if result.Edge < minKellyEdge {
		return result, nil
	}
	result.HasEdge = true
	result.IsSignificant = true

	if price <= 0 || price >= 1 {
		return result, nil
	}
	b := 1/price - 1
	if b <= 0 {
		return result, nil
	}
	q := 1 - p
	kellyFull := (b*p - q) / b
	if kellyFull <= 0 {
		return result, nil
	}
	result.KellyFull = kellyFull

	final := math.Min(kellyFull*fraction, MaxPositionPct)
	if final < MinKellyThreshold {
		return result, nil
	}
	result.KellyFraction = final
	result.RecommendedSize = math.Round(final * bankroll)
	return result, nil
}

// fractionName etiqueta la fracción Kelly para display.
func fractionName(fraction float64) string {
	switch {
	case fraction <= 0.15:
		return "Eighth Kelly"
	case fraction <= 0.30:
		return "Quarter Kelly"
	case fraction <= 0.55:
		return "Half Kelly"
	default:
		return "Full Kelly"
	}
}
