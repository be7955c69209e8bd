package ports

import (
	"context"
	"time"
)

// WalletBook acumula actividad whale por wallet a través de los ciclos.
// Es la memoria con la que el scanner aprende qué wallets son smart money.
type WalletBook interface {
	// RecordWhaleTrade suma un trade whale al historial del wallet.
	RecordWhaleTrade(ctx context.Context, wallet string, amount float64, seen time.Time) error

	// MarkProfitable registra que el wallet fue visto con una posición
	// grande en verde.
	MarkProfitable(ctx context.Context, wallet string) error

	// SmartWallets devuelve los wallets con volumen acumulado sobre el
	// mínimo y al menos una posición rentable observada.
	SmartWallets(ctx context.Context, minVolume float64) (map[string]bool, error)
}
