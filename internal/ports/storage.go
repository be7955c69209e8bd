package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// Storage persiste los resultados de cada ciclo de análisis.
type Storage interface {
	// SaveAnalyses persiste los resultados de un ciclo bajo un run id.
	SaveAnalyses(ctx context.Context, runID string, results []domain.DeepAnalysisResult) error

	// FilterRelevant devuelve los resultados que cambiaron desde el último
	// ciclo: mercados nuevos, lado recomendado distinto o edge movido de
	// forma material. Evita notificar lo mismo cada ciclo.
	FilterRelevant(results []domain.DeepAnalysisResult) []domain.DeepAnalysisResult

	// PruneBefore borra análisis anteriores al corte dado.
	PruneBefore(ctx context.Context, cutoff time.Time) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
