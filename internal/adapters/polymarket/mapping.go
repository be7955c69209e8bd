package polymarket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// mapGammaMarket convierte un gammaMarket DTO a domain.MarketSnapshot.
// Devuelve false si el mercado no trae fecha de cierre parseable: sin
// horizonte temporal no hay theta ni Monte Carlo que valgan.
func mapGammaMarket(gm gammaMarket) (domain.MarketSnapshot, bool) {
	endDate, ok := parseEndDate(firstNonEmpty(gm.EndDate, gm.EndDateISO))
	if !ok {
		return domain.MarketSnapshot{}, false
	}

	m := domain.MarketSnapshot{
		ConditionID:  gm.ConditionID,
		Question:     gm.Question,
		Slug:         gm.Slug,
		EventSlug:    firstNonEmpty(gm.EventSlug, gm.Slug),
		EndDate:      endDate,
		ClobTokenIDs: parseStringArray(gm.ClobTokenIDs),
		YesPrice:     0.5,
		NoPrice:      0.5,
	}

	if prices := parseFloatArray(gm.OutcomePrices); len(prices) >= 2 {
		m.YesPrice = prices[0]
		m.NoPrice = prices[1]
	}
	if v, err := gm.Volume24h.Float64(); err == nil {
		m.Volume24h = v
	}
	if v, err := gm.Volume.Float64(); err == nil {
		m.VolumeTotal = v
	}
	if v, err := gm.Liquidity.Float64(); err == nil {
		m.Liquidity = v
	}
	return m, true
}

// parseEndDate intenta los formatos de fecha que usa Polymarket.
func parseEndDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseStringArray decodifica un array JSON de strings que Gamma a veces
// entrega doblemente codificado: ["a","b"] o "[\"a\",\"b\"]".
func parseStringArray(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err == nil {
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// parseFloatArray es el equivalente numérico de parseStringArray. Acepta
// números pelados o como strings ("0.72"), que es como los entrega Gamma.
func parseFloatArray(raw json.RawMessage) []float64 {
	if len(raw) == 0 {
		return nil
	}
	var nums []json.Number
	if err := json.Unmarshal(raw, &nums); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if err := json.Unmarshal([]byte(s), &nums); err != nil {
			return nil
		}
	}
	out := make([]float64, 0, len(nums))
	for _, n := range nums {
		if f, err := n.Float64(); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// mapTrade convierte un dataTrade a domain.Trade. El side se normaliza a
// mayúsculas porque la API mezcla "BUY" y "buy".
func mapTrade(rt dataTrade) domain.Trade {
	size, _ := rt.Size.Float64()
	usdc, _ := rt.USDCSize.Float64()
	price, _ := rt.Price.Float64()
	ts, _ := rt.Timestamp.Float64()
	idx, _ := rt.OutcomeIndex.Int64()

	return domain.Trade{
		ProxyWallet:     rt.ProxyWallet,
		Side:            strings.ToUpper(rt.Side),
		Size:            size,
		USDCSize:        usdc,
		Price:           price,
		Timestamp:       int64(ts),
		ConditionID:     rt.ConditionID,
		Title:           rt.Title,
		Slug:            rt.Slug,
		Outcome:         rt.Outcome,
		OutcomeIndex:    int(idx),
		TransactionHash: rt.TransactionHash,
	}
}

// mapHolder convierte un dataHolder a domain.HolderPosition para el lado
// dado. Algunas respuestas traen el wallet en "address" en vez de
// "proxyWallet".
func mapHolder(h dataHolder, side string) domain.HolderPosition {
	size, _ := h.Size.Float64()
	value, _ := h.CurrentValue.Float64()
	pnl, _ := h.CashPnL.Float64()
	pct, _ := h.PercentPnL.Float64()

	wallet := h.ProxyWallet
	if wallet == "" {
		wallet = h.Address
	}
	return domain.HolderPosition{
		Wallet:       wallet,
		Outcome:      side,
		Size:         size,
		CurrentValue: value,
		CashPnL:      pnl,
		PercentPnL:   pct,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
