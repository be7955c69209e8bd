// Package coingecko implementa ports.CryptoProvider contra la API pública
// de CoinGecko. Solo usa el endpoint market_chart: 30 días de cierres
// diarios alcanzan para estimar drift y volatilidad anualizados.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"

	// Free tier: 30 req/min. Dejamos margen.
	requestsPerMin = 25

	cacheTTL = 10 * time.Minute

	// Menos de una semana de cierres no da para estimar sigma.
	minDailyCloses = 7
)

// Client es el cliente read-only de CoinGecko con rate limiting y cache.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter

	mu    sync.Mutex
	cache map[string]cachedCrypto
}

type cachedCrypto struct {
	data    domain.CryptoData
	expires time.Time
}

// marketChartResponse es la respuesta de GET /coins/{id}/market_chart.
// Cada precio es un par [timestamp_ms, precio].
type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// NewClient crea un Client. baseURL vacío usa la API pública.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMin)/60, requestsPerMin),
		cache:   make(map[string]cachedCrypto),
	}
}

// FetchCryptoData obtiene los cierres diarios de 30 días de un asset y
// construye el CryptoData con drift y volatilidad anualizados. Cachea 10
// minutos por coin; los precios no positivos se descartan y con menos de
// 7 cierres útiles devuelve error.
func (c *Client) FetchCryptoData(ctx context.Context, coinID string) (domain.CryptoData, error) {
	if data, ok := c.cached(coinID); ok {
		return data, nil
	}

	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=30&interval=daily",
		c.baseURL, url.PathEscape(coinID))

	var resp marketChartResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return domain.CryptoData{}, fmt.Errorf("coingecko.FetchCryptoData: %w", err)
	}

	closes := make([]float64, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		if len(p) == 2 && p[1] > 0 {
			closes = append(closes, p[1])
		}
	}
	if len(closes) < minDailyCloses {
		return domain.CryptoData{}, fmt.Errorf(
			"coingecko.FetchCryptoData: %s: %d daily closes, need %d",
			coinID, len(closes), minDailyCloses)
	}

	data := domain.NewCryptoData(coinID, closes[len(closes)-1], closes)

	c.mu.Lock()
	c.cache[coinID] = cachedCrypto{data: data, expires: time.Now().Add(cacheTTL)}
	c.mu.Unlock()

	slog.Debug("crypto data fetched",
		"coin", coinID,
		"price", data.CurrentPrice,
		"sigma", data.Sigma,
	)
	return data, nil
}

func (c *Client) cached(coinID string) (domain.CryptoData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[coinID]
	if !ok || time.Now().After(e.expires) {
		delete(c.cache, coinID)
		return domain.CryptoData{}, false
	}
	return e.data, true
}

// get hace un GET con rate limiting y una sola tentativa, igual que el
// cliente de Polymarket: un fallo puntual se reintenta en el próximo ciclo.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limited by API (429)")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
