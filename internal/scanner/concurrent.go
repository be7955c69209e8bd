package scanner

// concurrent.go — worker pool para análisis paralelo de mercados.
//
// El análisis profundo de un mercado encadena varios fetches con rate limit;
// en serie un ciclo de 50 mercados tardaría minutos. Un pool acotado los
// solapa sin soltar una goroutine por mercado contra las APIs.

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// analyzeConcurrent analiza los mercados filtrados usando un worker pool.
// Los fallos por mercado se loguean y se saltan; el ciclo nunca aborta por
// un mercado roto.
func (s *Scanner) analyzeConcurrent(ctx context.Context, markets []domain.MarketSnapshot, smart map[string]bool) []domain.DeepAnalysisResult {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	workCh := make(chan domain.MarketSnapshot, len(markets))
	resultCh := make(chan domain.DeepAnalysisResult, len(markets))

	// Worker pool: cada worker toma mercados de workCh y envía resultados.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range workCh {
				result, err := s.analyzeMarket(ctx, m, smart)
				if err != nil {
					slog.Debug("analyze failed",
						"condition_id", m.ConditionID,
						"err", err,
					)
					continue
				}
				resultCh <- result
			}
		}()
	}

	for _, m := range markets {
		workCh <- m
	}
	close(workCh)

	// Cerrar resultCh cuando todos los workers terminen.
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]domain.DeepAnalysisResult, 0, len(markets))
	for r := range resultCh {
		results = append(results, r)
	}

	slog.Debug("concurrent analysis complete",
		"markets_queued", len(markets),
		"results", len(results),
		"workers", workers,
	)
	return results
}
