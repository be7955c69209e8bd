package ports

import (
	"context"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// Notifier presenta los resultados de análisis al usuario.
type Notifier interface {
	// Notify muestra los resultados ordenados por atractivo.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, results []domain.DeepAnalysisResult) error
}
