package storage

// sqlite.go — persistencia de análisis y memoria de wallets.
//
// Estrategia:
//   - `analyses`: una fila por resultado del top-N de cada ciclo, agrupadas
//     por run_id. Es el histórico completo; el prune lo mantiene acotado.
//   - `wallet_stats`: una fila por wallet whale vista, con volumen
//     acumulado y cuántas veces se la vio en verde. Es la base del
//     smart money ratio.
//   - Cache en memoria para FilterRelevant: compara contra el último estado
//     notificado y deja pasar solo mercados nuevos, lados que flipean o
//     edges que se movieron de verdad. Se precarga desde la DB al arrancar
//     para no respamear todo tras un reinicio.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

const schema = `
-- Resultados del top-N de cada ciclo de análisis
CREATE TABLE IF NOT EXISTS analyses (
    id           TEXT PRIMARY KEY,
    run_id       TEXT     NOT NULL,
    condition_id TEXT     NOT NULL,
    question     TEXT,
    side         TEXT     NOT NULL,
    edge         REAL     NOT NULL DEFAULT 0,
    model_prob   REAL     NOT NULL DEFAULT 0,
    market_price REAL     NOT NULL DEFAULT 0,
    confidence   INTEGER  NOT NULL DEFAULT 0,
    kelly_pct    REAL     NOT NULL DEFAULT 0,
    signal_score INTEGER  NOT NULL DEFAULT 0,
    positive     INTEGER  NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL
);

-- Memoria acumulada de wallets whale
CREATE TABLE IF NOT EXISTS wallet_stats (
    wallet          TEXT PRIMARY KEY,
    trade_count     INTEGER  NOT NULL DEFAULT 0,
    total_volume    REAL     NOT NULL DEFAULT 0,
    profitable_hits INTEGER  NOT NULL DEFAULT 0,
    last_seen       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_run     ON analyses(run_id);
CREATE INDEX IF NOT EXISTS idx_analyses_cond    ON analyses(condition_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
CREATE INDEX IF NOT EXISTS idx_wallets_volume   ON wallet_stats(total_volume DESC);
`

// notifyEdgeDelta es el movimiento absoluto de edge (2pp) que convierte un
// mercado ya notificado en noticia otra vez. Alineado con el umbral de
// edge del análisis: por debajo de eso el cambio es ruido.
const notifyEdgeDelta = 0.02

// notifiedState es el último estado por el que se notificó un mercado.
type notifiedState struct {
	side string
	edge float64
}

// SQLiteStorage implementa ports.Storage y ports.WalletBook usando SQLite
// (driver pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[string]notifiedState // conditionID → último estado notificado
	mu    sync.Mutex
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, activa WAL y precarga la cache de notificaciones.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: make(map[string]notifiedState),
	}
	s.warmCache(context.Background())
	return s, nil
}

// SaveAnalyses persiste todos los resultados de un ciclo bajo el run id
// dado. Cada fila lleva su propio uuid.
func (s *SQLiteStorage) SaveAnalyses(ctx context.Context, runID string, results []domain.DeepAnalysisResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveAnalyses: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analyses
			(id, run_id, condition_id, question, side, edge, model_prob,
			 market_price, confidence, kelly_pct, signal_score, positive, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveAnalyses: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range results {
		positive := 0
		if r.IsPositiveSetup {
			positive = 1
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(),
			runID,
			r.Market.ConditionID,
			r.Market.Question,
			r.RecommendedSide,
			r.Edge,
			r.ModelProbability,
			r.MarketPrice,
			r.Confidence,
			r.KellyPct,
			r.Market.SignalScore,
			positive,
			now,
		); err != nil {
			return fmt.Errorf("storage.SaveAnalyses: insert %s: %w", r.Market.ConditionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveAnalyses: commit: %w", err)
	}
	return nil
}

// FilterRelevant devuelve los resultados que son noticia respecto al último
// estado notificado: mercados nuevos, lado recomendado distinto o edge
// movido al menos 2pp en absoluto. Actualiza la cache solo para los que
// pasan el filtro — lo no notificado sigue comparándose contra la última
// notificación real.
func (s *SQLiteStorage) FilterRelevant(results []domain.DeepAnalysisResult) []domain.DeepAnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var relevant []domain.DeepAnalysisResult
	for _, r := range results {
		cid := r.Market.ConditionID
		prev, seen := s.cache[cid]

		unchanged := seen &&
			prev.side == r.RecommendedSide &&
			math.Abs(r.Edge-prev.edge) < notifyEdgeDelta
		if unchanged {
			continue
		}

		relevant = append(relevant, r)
		s.cache[cid] = notifiedState{side: r.RecommendedSide, edge: r.Edge}
	}
	return relevant
}

// PruneBefore borra los análisis anteriores al corte dado.
func (s *SQLiteStorage) PruneBefore(ctx context.Context, cutoff time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM analyses WHERE created_at < ?`, cutoff.UTC(),
	); err != nil {
		return fmt.Errorf("storage.PruneBefore: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- ports.WalletBook ---

// RecordWhaleTrade acumula un trade whale en el historial del wallet.
func (s *SQLiteStorage) RecordWhaleTrade(ctx context.Context, wallet string, amount float64, seen time.Time) error {
	if wallet == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO wallet_stats (wallet, trade_count, total_volume, profitable_hits, last_seen)
		VALUES (?, 1, ?, 0, ?)
		ON CONFLICT(wallet) DO UPDATE SET
			trade_count  = trade_count + 1,
			total_volume = total_volume + excluded.total_volume,
			last_seen    = excluded.last_seen
	`, wallet, amount, seen.UTC()); err != nil {
		return fmt.Errorf("storage.RecordWhaleTrade: %w", err)
	}
	return nil
}

// MarkProfitable registra que el wallet fue visto con una posición grande
// en verde.
func (s *SQLiteStorage) MarkProfitable(ctx context.Context, wallet string) error {
	if wallet == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO wallet_stats (wallet, trade_count, total_volume, profitable_hits, last_seen)
		VALUES (?, 0, 0, 1, ?)
		ON CONFLICT(wallet) DO UPDATE SET
			profitable_hits = profitable_hits + 1,
			last_seen       = excluded.last_seen
	`, wallet, time.Now().UTC()); err != nil {
		return fmt.Errorf("storage.MarkProfitable: %w", err)
	}
	return nil
}

// SmartWallets devuelve los wallets con volumen whale acumulado sobre el
// mínimo y al menos una posición rentable observada.
func (s *SQLiteStorage) SmartWallets(ctx context.Context, minVolume float64) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wallet FROM wallet_stats
		WHERE total_volume >= ? AND profitable_hits > 0
	`, minVolume)
	if err != nil {
		return nil, fmt.Errorf("storage.SmartWallets: query: %w", err)
	}
	defer rows.Close()

	smart := make(map[string]bool)
	for rows.Next() {
		var wallet string
		if err := rows.Scan(&wallet); err != nil {
			return nil, fmt.Errorf("storage.SmartWallets: scan: %w", err)
		}
		smart[wallet] = true
	}
	return smart, rows.Err()
}

// --- helpers internos ---

// warmCache precarga la cache de notificaciones con el último análisis
// guardado de cada mercado. Tras un reinicio, solo lo que cambió desde
// entonces vuelve a ser noticia.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.condition_id, a.side, a.edge
		FROM analyses a
		JOIN (
			SELECT condition_id, MAX(created_at) AS latest
			FROM analyses GROUP BY condition_id
		) b ON a.condition_id = b.condition_id AND a.created_at = b.latest
	`)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var cid, side string
		var edge float64
		if rows.Scan(&cid, &side, &edge) == nil {
			s.cache[cid] = notifiedState{side: side, edge: edge}
		}
	}
}
