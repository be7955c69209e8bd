package domain

// Trade representa un trade público de la Data-API de Polymarket.
type Trade struct {
	ProxyWallet     string
	Side            string // "BUY" o "SELL"
	Size            float64
	USDCSize        float64
	Price           float64
	Timestamp       int64 // unix segundos
	ConditionID     string
	Title           string
	Slug            string
	Outcome         string // "Yes" | "No"
	OutcomeIndex    int
	TransactionHash string
}

// Amount devuelve el tamaño del trade en USDC.
// Prefiere USDCSize; si la API no lo trae, lo deriva de size × price.
func (t Trade) Amount() float64 {
	if t.USDCSize > 0 {
		return t.USDCSize
	}
	return t.Size * t.Price
}

// IsYes devuelve true si el trade apuesta a favor de YES:
// compra del token 0 o venta del token 1.
func (t Trade) IsYes() bool {
	if t.Side == "BUY" {
		return t.OutcomeIndex == 0
	}
	return t.OutcomeIndex == 1
}

// HolderPosition es la posición abierta de un wallet en un lado del mercado.
type HolderPosition struct {
	Wallet       string
	Outcome      string // SideYes o SideNo; el match es case-insensitive
	Size         float64
	CurrentValue float64
	CashPnL      float64 // PnL no realizado en USDC
	PercentPnL   float64
}
