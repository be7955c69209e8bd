package scanner

import (
	"github.com/alejandrodnm/polysignal/internal/domain"
)

// FilterConfig contiene los parámetros de filtrado de mercados pre-análisis.
type FilterConfig struct {
	// MinVolume24h descarta mercados sin actividad reciente suficiente.
	MinVolume24h float64
	// MinLiquidity descarta mercados donde entrar y salir sería caro.
	MinLiquidity float64
	// MinDays descarta mercados que resuelven demasiado pronto.
	MinDays float64
	// MaxDays descarta mercados de horizonte tan largo que el capital
	// quedaría atrapado sin catalizador cercano.
	MaxDays float64
}

// DefaultFilterConfig devuelve los umbrales de filtrado por defecto.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinVolume24h: 10_000,
		MinLiquidity: 1_000,
		MinDays:      0,
		MaxDays:      35,
	}
}

// Filter aplica los filtros configurados sobre los mercados fetcheados.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve los mercados que pasan todos los filtros.
func (f *Filter) Apply(markets []domain.MarketSnapshot) []domain.MarketSnapshot {
	result := make([]domain.MarketSnapshot, 0, len(markets))
	for _, m := range markets {
		if f.passes(m) {
			result = append(result, m)
		}
	}
	return result
}

// passes devuelve true si el mercado supera todos los criterios.
func (f *Filter) passes(m domain.MarketSnapshot) bool {
	if f.cfg.MinVolume24h > 0 && m.Volume24h < f.cfg.MinVolume24h {
		return false
	}
	if f.cfg.MinLiquidity > 0 && m.Liquidity < f.cfg.MinLiquidity {
		return false
	}
	days := m.DaysToClose()
	if f.cfg.MinDays > 0 && days < f.cfg.MinDays {
		return false
	}
	if f.cfg.MaxDays > 0 && days > f.cfg.MaxDays {
		return false
	}
	return true
}
