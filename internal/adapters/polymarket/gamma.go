package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

const (
	gammaMarketsPath    = "/markets"
	defaultMarketsLimit = 200
)

// FetchActiveMarkets devuelve los mercados activos ordenados por volumen
// 24h descendente, hasta limit. Mercados sin condition id, sin fecha de
// cierre parseable o ya vencidos se descartan.
func (c *Client) FetchActiveMarkets(ctx context.Context, limit int) ([]domain.MarketSnapshot, error) {
	if limit <= 0 {
		limit = defaultMarketsLimit
	}
	u := fmt.Sprintf("%s%s?active=true&closed=false&order=volume24hr&ascending=false&limit=%d",
		c.gammaBase, gammaMarketsPath, limit)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("gamma.FetchActiveMarkets: %w", err)
	}

	now := time.Now()
	markets := make([]domain.MarketSnapshot, 0, len(resp))
	skipped := 0
	for _, gm := range resp {
		m, ok := mapGammaMarket(gm)
		if !ok || m.ConditionID == "" || m.EndDate.Before(now) {
			skipped++
			continue
		}
		markets = append(markets, m)
	}

	slog.Debug("active markets fetched",
		"returned", len(resp),
		"usable", len(markets),
		"skipped", skipped,
	)
	return markets, nil
}

// FetchMarket busca un mercado por su slug exacto.
func (c *Client) FetchMarket(ctx context.Context, slug string) (domain.MarketSnapshot, error) {
	u := fmt.Sprintf("%s%s?slug=%s", c.gammaBase, gammaMarketsPath, url.QueryEscape(slug))

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("gamma.FetchMarket: %w", err)
	}
	if len(resp) == 0 {
		return domain.MarketSnapshot{}, fmt.Errorf("gamma.FetchMarket: market %q not found", slug)
	}

	m, ok := mapGammaMarket(resp[0])
	if !ok {
		return domain.MarketSnapshot{}, fmt.Errorf("gamma.FetchMarket: market %q has no usable end date", slug)
	}
	return m, nil
}
