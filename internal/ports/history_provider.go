package ports

import (
	"context"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// HistoryProvider obtiene la serie de precios de un token desde el CLOB.
type HistoryProvider interface {
	// FetchPriceHistory devuelve la serie horaria de la última semana,
	// ordenada ascendente por timestamp.
	FetchPriceHistory(ctx context.Context, tokenID string) (domain.PriceHistory, error)
}
