package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// CryptoMarketInfo describe un mercado de umbral de precio cripto detectado
// en la pregunta ("Will Bitcoin hit $100k by..."). Permite simular el activo
// subyacente en vez del precio del mercado de predicción.
type CryptoMarketInfo struct {
	CoinID    string  // id de CoinGecko
	Threshold float64 // precio objetivo en USD
	Direction string  // "above" | "below"
}

// cryptoPatterns mapea substrings de la pregunta al coin id de CoinGecko.
// Los tickers cortos llevan espacio final para no matchear dentro de palabras
// ("eth " no matchea "whether").
var cryptoPatterns = []struct {
	pattern string
	coinID  string
}{
	{"bitcoin", "bitcoin"},
	{"btc", "bitcoin"},
	{"ethereum", "ethereum"},
	{"eth ", "ethereum"},
	{"solana", "solana"},
	{"sol ", "solana"},
	{"dogecoin", "dogecoin"},
	{"doge", "dogecoin"},
	{"xrp", "ripple"},
	{"ripple", "ripple"},
	{"cardano", "cardano"},
	{"ada ", "cardano"},
	{"polygon", "matic-network"},
	{"matic", "matic-network"},
	{"avalanche", "avalanche-2"},
	{"avax", "avalanche-2"},
	{"chainlink", "chainlink"},
	{"link ", "chainlink"},
	{"polkadot", "polkadot"},
	{"dot ", "polkadot"},
	{"sui ", "sui"},
	{"aptos", "aptos"},
	{"apt ", "aptos"},
	{"near", "near"},
	{"toncoin", "the-open-network"},
	{"ton ", "the-open-network"},
}

// thresholdRe captura "$95,000", "$ 1.5k", "$100K", "$2m"...
var thresholdRe = regexp.MustCompile(`\$\s*([0-9,]+(?:\.[0-9]+)?)\s*([kKmMbB])?`)

// belowKeywords indican que el mercado resuelve YES si el precio CAE bajo
// el umbral. Sin keyword se asume "above".
var belowKeywords = []string{"below", "under", "fall", "drop", "dip", "crash"}

// DetectCryptoMarket clasifica la pregunta de un mercado como mercado de
// umbral cripto. Devuelve nil si no reconoce el activo o no hay umbral.
func DetectCryptoMarket(question string) *CryptoMarketInfo {
	q := strings.ToLower(question)

	coinID := ""
	for _, p := range cryptoPatterns {
		if strings.Contains(q, p.pattern) {
			coinID = p.coinID
			break
		}
	}
	if coinID == "" {
		return nil
	}

	threshold := parseThreshold(q)
	if threshold <= 0 {
		return nil
	}

	direction := "above"
	for _, kw := range belowKeywords {
		if strings.Contains(q, kw) {
			direction = "below"
			break
		}
	}

	return &CryptoMarketInfo{CoinID: coinID, Threshold: threshold, Direction: direction}
}

// parseThreshold extrae el primer precio "$N[k|m|b]" de la pregunta.
func parseThreshold(q string) float64 {
	m := thresholdRe.FindStringSubmatch(q)
	if m == nil {
		return 0
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	case "b":
		value *= 1_000_000_000
	}
	return value
}
