package polymarket

import "encoding/json"

// DTOs raw de las APIs públicas de Polymarket. Solo se usan dentro de este
// paquete; la conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaMarket es la metadata de un mercado en GET /markets de Gamma.
// Gamma devuelve varios campos numéricos como strings JSON (json.Number) y
// los arrays outcomePrices/clobTokenIds a veces doblemente codificados:
// un string JSON que contiene el array.
type gammaMarket struct {
	ConditionID   string          `json:"conditionId"`
	Question      string          `json:"question"`
	Slug          string          `json:"slug"`
	EventSlug     string          `json:"eventSlug"`
	EndDate       string          `json:"endDate"`
	EndDateISO    string          `json:"endDateIso"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	ClobTokenIDs  json.RawMessage `json:"clobTokenIds"`
	Volume        json.Number     `json:"volume"`
	Volume24h     json.Number     `json:"volume24hr"`
	Liquidity     json.Number     `json:"liquidity"`
	Active        bool            `json:"active"`
	Closed        bool            `json:"closed"`
}

// --- CLOB API ---

// historyPoint es una muestra de GET /prices-history: t unix segundos,
// p precio del token en (0,1).
type historyPoint struct {
	T json.Number `json:"t"`
	P json.Number `json:"p"`
}

// historyEnvelope es la forma usual de la respuesta de /prices-history.
// El endpoint a veces devuelve el array pelado en vez del objeto.
type historyEnvelope struct {
	History []historyPoint `json:"history"`
}

// --- Data-API ---

// dataTrade es un trade público de GET /trades.
type dataTrade struct {
	ProxyWallet     string      `json:"proxyWallet"`
	Side            string      `json:"side"`
	Size            json.Number `json:"size"`
	USDCSize        json.Number `json:"usdcSize"`
	Price           json.Number `json:"price"`
	Timestamp       json.Number `json:"timestamp"`
	ConditionID     string      `json:"conditionId"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Outcome         string      `json:"outcome"`
	OutcomeIndex    json.Number `json:"outcomeIndex"`
	TransactionHash string      `json:"transactionHash"`
}

// dataHolder es una posición de GET /holders. Los campos de PnL siguen el
// esquema de positions de la Data-API; cuando la respuesta no los trae
// quedan en cero y el scoring de holders degrada solo.
type dataHolder struct {
	ProxyWallet  string      `json:"proxyWallet"`
	Address      string      `json:"address"`
	Size         json.Number `json:"size"`
	CurrentValue json.Number `json:"currentValue"`
	CashPnL      json.Number `json:"cashPnl"`
	PercentPnL   json.Number `json:"percentPnl"`
}
