package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

const (
	tradesPath  = "/trades"
	holdersPath = "/holders"

	defaultTradesLimit = 500
	holdersPerSide     = 20
)

// FetchTrades obtiene los trades públicos recientes de un mercado por
// condition id, más recientes primero. Cachea 10 minutos.
func (c *Client) FetchTrades(ctx context.Context, conditionID string, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = defaultTradesLimit
	}
	cacheKey := fmt.Sprintf("tr:%s:%d", conditionID, limit)
	if cached, ok := c.tradeCache.get(cacheKey); ok {
		return cached, nil
	}

	u := fmt.Sprintf("%s%s?market=%s&limit=%d", c.dataBase, tradesPath, conditionID, limit)

	var resp []dataTrade
	if err := c.get(ctx, c.clobLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("data-api.FetchTrades: %w", err)
	}

	trades := make([]domain.Trade, 0, len(resp))
	for _, rt := range resp {
		trades = append(trades, mapTrade(rt))
	}

	c.tradeCache.set(cacheKey, trades)
	slog.Debug("trades fetched", "market", shortID(conditionID), "count", len(trades))
	return trades, nil
}

// FetchHolders obtiene los top holders de ambos lados de un mercado, hasta
// 20 por lado, y los devuelve como posiciones etiquetadas con su outcome.
// Cachea 10 minutos.
func (c *Client) FetchHolders(ctx context.Context, conditionID string) ([]domain.HolderPosition, error) {
	cacheKey := "hold:" + conditionID
	if cached, ok := c.holderCache.get(cacheKey); ok {
		return cached, nil
	}

	var all []domain.HolderPosition
	for idx, side := range []string{domain.SideYes, domain.SideNo} {
		holders, err := c.fetchHoldersSide(ctx, conditionID, idx)
		if err != nil {
			return nil, err
		}
		for _, h := range holders {
			all = append(all, mapHolder(h, side))
		}
	}

	c.holderCache.set(cacheKey, all)
	slog.Debug("holders fetched", "market", shortID(conditionID), "count", len(all))
	return all, nil
}

// fetchHoldersSide pide los holders de un outcome (0=YES, 1=NO) y corta al
// top 20 que es lo que el scoring usa.
func (c *Client) fetchHoldersSide(ctx context.Context, conditionID string, outcomeIndex int) ([]dataHolder, error) {
	u := fmt.Sprintf("%s%s?conditionId=%s&outcomeIndex=%d",
		c.dataBase, holdersPath, conditionID, outcomeIndex)

	var resp []dataHolder
	if err := c.get(ctx, c.clobLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("data-api.FetchHolders outcome %d: %w", outcomeIndex, err)
	}
	if len(resp) > holdersPerSide {
		resp = resp[:holdersPerSide]
	}
	return resp, nil
}
