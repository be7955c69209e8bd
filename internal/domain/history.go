package domain

import (
	"math"
	"time"
)

// tradingDaysPerYear anualiza retornos diarios de mercados cripto (24/7).
const tradingDaysPerYear = 365.0

// PricePoint es una muestra puntual de precio del CLOB.
type PricePoint struct {
	Timestamp int64 // unix segundos
	Price     float64
}

// PriceHistory es la serie temporal de precios de un token, ordenada
// ascendente. Tolera muestreo irregular; ningún cálculo asume gaps fijos.
type PriceHistory struct {
	Points []PricePoint
}

// Last devuelve el último precio de la serie, o 0 si está vacía.
func (h PriceHistory) Last() float64 {
	if len(h.Points) == 0 {
		return 0
	}
	return h.Points[len(h.Points)-1].Price
}

// Change devuelve el cambio relativo del precio sobre la ventana dada,
// medido hacia atrás desde la última muestra: (último - base) / base.
// La base es la muestra más reciente fuera de la ventana; con serie más
// corta que la ventana se usa la primera muestra. Devuelve 0 sin base
// positiva.
func (h PriceHistory) Change(window time.Duration) float64 {
	if len(h.Points) < 2 {
		return 0
	}
	last := h.Points[len(h.Points)-1]
	cutoff := last.Timestamp - int64(window.Seconds())

	base := h.Points[0].Price
	for i := len(h.Points) - 2; i >= 0; i-- {
		if h.Points[i].Timestamp <= cutoff {
			base = h.Points[i].Price
			break
		}
	}
	if base <= 0 {
		return 0
	}
	return (last.Price - base) / base
}

// LogReturns devuelve los retornos logarítmicos entre muestras consecutivas.
// Precios no positivos se saltan para no romper el log.
func (h PriceHistory) LogReturns() []float64 {
	if len(h.Points) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(h.Points)-1)
	for i := 1; i < len(h.Points); i++ {
		prev, cur := h.Points[i-1].Price, h.Points[i].Price
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	return returns
}

// Volatility devuelve la volatilidad anualizada de la serie completa.
// Fórmula: stdev muestral de los log-returns × √365.
// Devuelve 0 con menos de 2 retornos.
func (h PriceHistory) Volatility() float64 {
	return annualizedVol(h.LogReturns())
}

// RecentVolatility devuelve la volatilidad anualizada de los últimos n
// retornos. Con serie corta cae a Volatility().
func (h PriceHistory) RecentVolatility(n int) float64 {
	if n < 2 || len(h.Points) < n+1 {
		return h.Volatility()
	}
	returns := h.LogReturns()
	if len(returns) > n {
		returns = returns[len(returns)-n:]
	}
	return annualizedVol(returns)
}

func annualizedVol(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return sampleStdev(returns) * math.Sqrt(tradingDaysPerYear)
}

// sampleStdev calcula la desviación estándar muestral (denominador n-1).
func sampleStdev(xs []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / n

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / (n - 1))
}

// CryptoData resume la serie spot de 30 días de un activo cripto.
type CryptoData struct {
	CoinID       string
	CurrentPrice float64
	Prices30d    []float64
	Mu           float64 // drift anualizado (media de log-returns × 365)
	Sigma        float64 // volatilidad anualizada (stdev × √365)
}

// IsValid devuelve true si hay precio actual y serie suficiente para simular.
func (c CryptoData) IsValid() bool {
	return c.CurrentPrice > 0 && len(c.Prices30d) >= 7
}

// NewCryptoData construye CryptoData calculando drift y volatilidad
// anualizados desde los cierres diarios. Con menos de 2 retornos usa
// sigma 0.5 y drift 0 como fallback conservador.
func NewCryptoData(coinID string, currentPrice float64, closes []float64) CryptoData {
	data := CryptoData{
		CoinID:       coinID,
		CurrentPrice: currentPrice,
		Prices30d:    closes,
		Sigma:        0.5,
	}

	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < 2 {
		return data
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	data.Mu = sum / float64(len(returns)) * tradingDaysPerYear
	data.Sigma = sampleStdev(returns) * math.Sqrt(tradingDaysPerYear)
	return data
}
