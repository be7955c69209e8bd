package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCryptoMarket_BitcoinAbove(t *testing.T) {
	info := DetectCryptoMarket("Will Bitcoin hit $100k by March 31?")
	require.NotNil(t, info)
	assert.Equal(t, "bitcoin", info.CoinID)
	assert.Equal(t, 100_000.0, info.Threshold)
	assert.Equal(t, "above", info.Direction)
}

func TestDetectCryptoMarket_BelowKeywords(t *testing.T) {
	info := DetectCryptoMarket("Will Ethereum drop below $2,000 in May?")
	require.NotNil(t, info)
	assert.Equal(t, "ethereum", info.CoinID)
	assert.Equal(t, 2000.0, info.Threshold)
	assert.Equal(t, "below", info.Direction)
}

func TestDetectCryptoMarket_TickerAliases(t *testing.T) {
	info := DetectCryptoMarket("WILL BTC HIT $95,000 THIS WEEK?")
	require.NotNil(t, info)
	assert.Equal(t, "bitcoin", info.CoinID)
	assert.Equal(t, 95_000.0, info.Threshold)

	info = DetectCryptoMarket("Will SOL hit $1.5k?")
	require.NotNil(t, info)
	assert.Equal(t, "solana", info.CoinID)
	assert.Equal(t, 1500.0, info.Threshold)

	info = DetectCryptoMarket("Will XRP crash under $0.40?")
	require.NotNil(t, info)
	assert.Equal(t, "ripple", info.CoinID)
	assert.Equal(t, "below", info.Direction)
}

func TestDetectCryptoMarket_SuffixMultipliers(t *testing.T) {
	info := DetectCryptoMarket("Will Dogecoin market cap pass $2b?")
	require.NotNil(t, info)
	assert.Equal(t, 2_000_000_000.0, info.Threshold)

	info = DetectCryptoMarket("Will Ethereum reach $1.5m... just kidding, $5k?")
	require.NotNil(t, info)
	// Toma el primer monto que aparece en la pregunta.
	assert.Equal(t, 1_500_000.0, info.Threshold)
}

func TestDetectCryptoMarket_NoAsset(t *testing.T) {
	assert.Nil(t, DetectCryptoMarket("Will the Fed cut rates in September?"))
	assert.Nil(t, DetectCryptoMarket("Will Trump win Pennsylvania?"))
	// "whether" no debe matchear el ticker "eth".
	assert.Nil(t, DetectCryptoMarket("Market on whether it rains $1k bets"))
}

func TestDetectCryptoMarket_NoThreshold(t *testing.T) {
	assert.Nil(t, DetectCryptoMarket("Will a Bitcoin ETF be approved this year?"))
}

func TestParseThreshold_Formats(t *testing.T) {
	assert.Equal(t, 95_000.0, parseThreshold("btc to $95,000"))
	assert.Equal(t, 1500.0, parseThreshold("up to $ 1.5K"))
	assert.Equal(t, 3_000_000.0, parseThreshold("cap $3M"))
	assert.Equal(t, 0.0, parseThreshold("no dollar signs here"))
}
