package ports

import (
	"context"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// MarketProvider obtiene mercados activos desde la Gamma API.
type MarketProvider interface {
	// FetchActiveMarkets devuelve hasta limit mercados binarios activos
	// ordenados por volumen 24h descendente.
	FetchActiveMarkets(ctx context.Context, limit int) ([]domain.MarketSnapshot, error)

	// FetchMarket devuelve un mercado concreto por su slug.
	FetchMarket(ctx context.Context, slug string) (domain.MarketSnapshot, error)
}
