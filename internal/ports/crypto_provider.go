package ports

import (
	"context"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// CryptoProvider obtiene datos spot de activos cripto para los mercados
// de umbral de precio.
type CryptoProvider interface {
	// FetchCryptoData devuelve el precio actual y los cierres diarios de
	// los últimos 30 días del activo.
	FetchCryptoData(ctx context.Context, coinID string) (domain.CryptoData, error)
}
