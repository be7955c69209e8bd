package ports

import (
	"context"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// TradeProvider obtiene trades públicos recientes de un mercado.
type TradeProvider interface {
	// FetchTrades devuelve hasta limit trades del mercado, más
	// recientes primero.
	FetchTrades(ctx context.Context, conditionID string, limit int) ([]domain.Trade, error)
}
