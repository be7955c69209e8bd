package coingecko_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alejandrodnm/polysignal/internal/adapters/coingecko"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCryptoData_Success(t *testing.T) {
	// 10 cierres diarios con uno en cero que debe filtrarse.
	var prices []string
	base := 100000.0
	for i := 0; i < 10; i++ {
		prices = append(prices, fmt.Sprintf("[%d, %.2f]", 1700000000000+int64(i)*86400000, base+float64(i)*500))
	}
	prices = append(prices, "[1700900000000, 0]")
	fixture := fmt.Sprintf(`{"prices": [%s]}`, strings.Join(prices, ","))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "usd", q.Get("vs_currency"))
		assert.Equal(t, "30", q.Get("days"))
		assert.Equal(t, "daily", q.Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := coingecko.NewClient(srv.URL)
	data, err := client.FetchCryptoData(context.Background(), "bitcoin")

	require.NoError(t, err)
	assert.Equal(t, "bitcoin", data.CoinID)
	assert.Len(t, data.Prices30d, 10, "el cierre en cero se filtra")
	assert.InDelta(t, 104500.0, data.CurrentPrice, 0.01, "precio actual = último cierre válido")
	assert.True(t, data.IsValid())
	assert.Greater(t, data.Mu, 0.0, "serie creciente → drift positivo")
	assert.Greater(t, data.Sigma, 0.0)
}

func TestFetchCryptoData_TooFewCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prices": [[1700000000000, 50000], [1700086400000, 50100]]}`))
	}))
	defer srv.Close()

	client := coingecko.NewClient(srv.URL)
	_, err := client.FetchCryptoData(context.Background(), "obscurecoin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily closes")
}

func TestFetchCryptoData_CachesPerCoin(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		var prices []string
		for i := 0; i < 8; i++ {
			prices = append(prices, fmt.Sprintf("[%d, %d]", int64(i), 3000+i*10))
		}
		fmt.Fprintf(w, `{"prices": [%s]}`, strings.Join(prices, ","))
	}))
	defer srv.Close()

	client := coingecko.NewClient(srv.URL)
	ctx := context.Background()

	_, err := client.FetchCryptoData(ctx, "ethereum")
	require.NoError(t, err)
	_, err = client.FetchCryptoData(ctx, "ethereum")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.FetchCryptoData(ctx, "solana")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchCryptoData_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := coingecko.NewClient(srv.URL)
	_, err := client.FetchCryptoData(context.Background(), "bitcoin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
