package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

const (
	pricesHistoryPath = "/prices-history"
	historyInterval   = "1w"
	historyFidelity   = 60 // minutos por muestra → serie horaria
)

// FetchPriceHistory obtiene la serie horaria de la última semana para un
// token CLOB. Solo conserva muestras con timestamp positivo y precio en
// (0,1]; el resto es ruido del endpoint. La serie sale ordenada ascendente
// y se cachea 5 minutos.
func (c *Client) FetchPriceHistory(ctx context.Context, tokenID string) (domain.PriceHistory, error) {
	cacheKey := fmt.Sprintf("ph:%s:%s:%d", tokenID, historyInterval, historyFidelity)
	if cached, ok := c.historyCache.get(cacheKey); ok {
		return cached, nil
	}

	u := fmt.Sprintf("%s%s?market=%s&interval=%s&fidelity=%d",
		c.clobBase, pricesHistoryPath, tokenID, historyInterval, historyFidelity)

	var raw json.RawMessage
	if err := c.get(ctx, c.clobLimiter, u, &raw); err != nil {
		return domain.PriceHistory{}, fmt.Errorf("clob.FetchPriceHistory: %w", err)
	}

	points := parseHistoryPoints(raw)
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	history := domain.PriceHistory{Points: points}
	c.historyCache.set(cacheKey, history)

	slog.Debug("price history fetched", "token", shortID(tokenID), "points", len(points))
	return history, nil
}

// parseHistoryPoints acepta las dos formas de respuesta de /prices-history:
// {"history": [...]} o el array pelado.
func parseHistoryPoints(raw json.RawMessage) []domain.PricePoint {
	var envelope historyEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.History == nil {
		var bare []historyPoint
		if err := json.Unmarshal(raw, &bare); err != nil {
			return nil
		}
		envelope.History = bare
	}

	points := make([]domain.PricePoint, 0, len(envelope.History))
	for _, pt := range envelope.History {
		t, err := pt.T.Float64()
		if err != nil {
			continue
		}
		p, err := pt.P.Float64()
		if err != nil || t <= 0 || p <= 0 || p > 1 {
			continue
		}
		points = append(points, domain.PricePoint{Timestamp: int64(t), Price: p})
	}
	return points
}
