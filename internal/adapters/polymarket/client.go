package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

const (
	defaultCLOBBase  = "https://clob.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"
	defaultDataBase  = "https://data-api.polymarket.com"

	// Rate limits de las APIs públicas sin API key. CLOB y Data-API
	// comparten bucket porque en la práctica ratelimitean juntas.
	// Gamma /markets: 300/10s → al 60% → 18/s
	clobRequestsPerMin = 30
	gammaRatePerSec    = 18

	historyCacheTTL = 5 * time.Minute
	dataCacheTTL    = 10 * time.Minute
)

// Client es el cliente read-only de las tres APIs públicas de Polymarket
// (Gamma, CLOB y Data-API) con rate limiting y cache TTL por endpoint.
// El scanner lo comparte entre goroutines; limiters y caches son seguros
// para uso concurrente.
type Client struct {
	http         *http.Client
	clobBase     string
	gammaBase    string
	dataBase     string
	clobLimiter  *rate.Limiter // compartido entre CLOB y Data-API
	gammaLimiter *rate.Limiter

	historyCache *ttlCache[domain.PriceHistory]
	tradeCache   *ttlCache[[]domain.Trade]
	holderCache  *ttlCache[[]domain.HolderPosition]
}

// NewClient crea un Client con los base URLs dados.
// Los URLs vacíos caen a los endpoints de producción.
func NewClient(clobBase, gammaBase, dataBase string) *Client {
	if clobBase == "" {
		clobBase = defaultCLOBBase
	}
	if gammaBase == "" {
		gammaBase = defaultGammaBase
	}
	if dataBase == "" {
		dataBase = defaultDataBase
	}
	return &Client{
		http:         &http.Client{Timeout: 15 * time.Second},
		clobBase:     clobBase,
		gammaBase:    gammaBase,
		dataBase:     dataBase,
		clobLimiter:  rate.NewLimiter(rate.Limit(clobRequestsPerMin)/60, clobRequestsPerMin),
		gammaLimiter: rate.NewLimiter(gammaRatePerSec, 10),
		historyCache: newTTLCache[domain.PriceHistory](historyCacheTTL),
		tradeCache:   newTTLCache[[]domain.Trade](dataCacheTTL),
		holderCache:  newTTLCache[[]domain.HolderPosition](dataCacheTTL),
	}
}

// get hace un GET con rate limiting y una sola tentativa. El scanner corre
// en ciclos: ante un fallo puntual prefiere perder ese dato y reintentar en
// el próximo ciclo antes que bloquear el ciclo actual con retries.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	if err := limiter.Wait(ctx); err != nil {
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

// shortID acorta ids largos (tokens, condition ids) para los logs.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}
