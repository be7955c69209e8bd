package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del analizador.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Scan     ScanConfig     `yaml:"scan"`
	Filter   FilterConfig   `yaml:"filter"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
	APIs     APIConfig      `yaml:"apis"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ScanConfig controla el loop de escaneo.
type ScanConfig struct {
	Interval   string `yaml:"interval"` // duración Go: "10m", "1h"
	TopN       int    `yaml:"top_n"`
	Workers    int    `yaml:"workers"`
	MaxMarkets int    `yaml:"max_markets"`
}

// FilterConfig define los umbrales de relevancia de mercados.
type FilterConfig struct {
	MinVolume24h float64 `yaml:"min_volume_24h"`
	MinLiquidity float64 `yaml:"min_liquidity"`
	MinDays      float64 `yaml:"min_days"`
	MaxDays      float64 `yaml:"max_days"`
}

// AnalysisConfig parametriza los modelos y el sizing.
type AnalysisConfig struct {
	Bankroll       float64 `yaml:"bankroll"`
	KellyFraction  float64 `yaml:"kelly_fraction"`
	MinWhaleVolume float64 `yaml:"min_whale_volume"`
	WhaleTradeMin  float64 `yaml:"whale_trade_min"`
	MCRuns         int     `yaml:"mc_runs"`
}

// StorageConfig controla dónde y cuánto tiempo se persisten los análisis.
type StorageConfig struct {
	Path          string `yaml:"path"` // ruta al archivo SQLite, o ":memory:"
	RetentionDays int    `yaml:"retention_days"`
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	GammaURL     string `yaml:"gamma_url"`
	CLOBURL      string `yaml:"clob_url"`
	DataAPIURL   string `yaml:"data_api_url"`
	CoingeckoURL string `yaml:"coingecko_url"`
}

// Load carga la configuración: .env si existe, después el YAML, después
// overrides por variables POLYSIGNAL_* y por último defaults para todo lo
// que quedó vacío. Un archivo YAML inexistente no es error: se corre con
// defaults puros.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Sin archivo: defaults + env.
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
// Validate ya garantizó que parsea.
func (c *Config) ScanInterval() time.Duration {
	d, err := time.ParseDuration(c.Scan.Interval)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// Retention devuelve la ventana de retención de análisis persistidos.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}

// Validate rechaza configuraciones sin sentido antes de arrancar.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Scan.Interval); err != nil {
		return fmt.Errorf("scan.interval %q: %w", c.Scan.Interval, err)
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers %d: debe ser >= 1", c.Scan.Workers)
	}
	if c.Analysis.Bankroll <= 0 {
		return fmt.Errorf("analysis.bankroll %.2f: debe ser positivo", c.Analysis.Bankroll)
	}
	if f := c.Analysis.KellyFraction; f <= 0 || f > 1 {
		return fmt.Errorf("analysis.kelly_fraction %.2f: debe estar en (0,1]", f)
	}
	if c.Filter.MaxDays > 0 && c.Filter.MaxDays < c.Filter.MinDays {
		return fmt.Errorf("filter.max_days %.0f menor que min_days %.0f",
			c.Filter.MaxDays, c.Filter.MinDays)
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("storage.retention_days %d: no puede ser negativo", c.Storage.RetentionDays)
	}
	return nil
}

// applyEnvOverrides pisa valores con variables POLYSIGNAL_* si están
// presentes. Cubre lo que tiene sentido cambiar por despliegue sin tocar
// el YAML.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYSIGNAL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("POLYSIGNAL_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYSIGNAL_SCAN_INTERVAL"); v != "" {
		cfg.Scan.Interval = v
	}
	if v := os.Getenv("POLYSIGNAL_BANKROLL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.Bankroll = f
		}
	}
	if v := os.Getenv("POLYSIGNAL_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("POLYSIGNAL_COINGECKO_URL"); v != "" {
		cfg.APIs.CoingeckoURL = v
	}
}

// setDefaults asegura valores sensatos para todo campo vacío.
func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Scan.Interval == "" {
		cfg.Scan.Interval = "10m"
	}
	if cfg.Scan.TopN <= 0 {
		cfg.Scan.TopN = 10
	}
	// Solo el cero (no seteado) recibe default; un negativo explícito debe
	// llegar a Validate y fallar.
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = 4
	}
	if cfg.Scan.MaxMarkets <= 0 {
		cfg.Scan.MaxMarkets = 200
	}
	if cfg.Filter.MinVolume24h <= 0 {
		cfg.Filter.MinVolume24h = 10_000
	}
	if cfg.Filter.MinLiquidity <= 0 {
		cfg.Filter.MinLiquidity = 1_000
	}
	if cfg.Filter.MaxDays <= 0 {
		cfg.Filter.MaxDays = 35
	}
	if cfg.Analysis.Bankroll == 0 {
		cfg.Analysis.Bankroll = 1_000
	}
	if cfg.Analysis.KellyFraction == 0 {
		cfg.Analysis.KellyFraction = 0.25
	}
	if cfg.Analysis.MinWhaleVolume <= 0 {
		cfg.Analysis.MinWhaleVolume = 10_000
	}
	if cfg.Analysis.WhaleTradeMin <= 0 {
		cfg.Analysis.WhaleTradeMin = 5_000
	}
	if cfg.Analysis.MCRuns <= 0 {
		cfg.Analysis.MCRuns = 10_000
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "polysignal.db"
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = 7
	}
	if cfg.APIs.GammaURL == "" {
		cfg.APIs.GammaURL = "https://gamma-api.polymarket.com"
	}
	if cfg.APIs.CLOBURL == "" {
		cfg.APIs.CLOBURL = "https://clob.polymarket.com"
	}
	if cfg.APIs.DataAPIURL == "" {
		cfg.APIs.DataAPIURL = "https://data-api.polymarket.com"
	}
	if cfg.APIs.CoingeckoURL == "" {
		cfg.APIs.CoingeckoURL = "https://api.coingecko.com/api/v3"
	}
}
