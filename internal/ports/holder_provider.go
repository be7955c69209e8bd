package ports

import (
	"context"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// HolderProvider obtiene los top holders de ambos lados de un mercado.
type HolderProvider interface {
	// FetchHolders devuelve las posiciones de los mayores holders YES y
	// NO del mercado en una sola lista.
	FetchHolders(ctx context.Context, conditionID string) ([]domain.HolderPosition, error)
}
