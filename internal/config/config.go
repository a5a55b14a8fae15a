package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     LoggingConfig `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	State   StateConfig   `yaml:"state"`
	Trading TradingConfig `yaml:"trading"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type TradingConfig struct {
	DefaultChain        string                 `yaml:"default_chain"`
	DebugMode           *bool                  `yaml:"debug_mode"`
	MaxLeverageLabel    string                 `yaml:"max_leverage_label"`
	RecommendedLeverage string                 `yaml:"recommended_leverage_label"`
	Chains              map[string]ChainConfig `yaml:"chains"`
}

type ChainConfig struct {
	ChainID    int64   `yaml:"chain_id"`
	RPC        string  `yaml:"rpc"`
	GasCostUSD float64 `yaml:"gas_cost_usd"`
}

// WalletConfig seeds the wallet manager at startup. The private key is only
// ever read from the environment, never from the YAML file.
type WalletConfig struct {
	Address    string `yaml:"address"`
	PrivateKey string `yaml:"-"`
}

type JournalConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	QueueSize       int           `yaml:"queue_size"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func (m MetricsConfig) EnabledValue() bool {
	return m.Enabled == nil || *m.Enabled
}

// DebugDefault reports the desk-wide debug mode. Orders are never handed to
// the submitter unless debug has been explicitly switched off.
func (t TradingConfig) DebugDefault() bool {
	return t.DebugMode == nil || *t.DebugMode
}

// Gas estimate for chains outside the configured set; matches the low-fee
// assumption used for avalanche.
const fallbackGasCostUSD = 2

func (t TradingConfig) GasCostUSD(chain string) float64 {
	if c, ok := t.Chains[strings.ToLower(strings.TrimSpace(chain))]; ok {
		return c.GasCostUSD
	}
	return fallbackGasCostUSD
}

// Default returns the built-in configuration with environment overrides
// applied, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = "127.0.0.1:8787"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/gmx-trade-desk.db"
	}
	if cfg.Trading.DefaultChain == "" {
		cfg.Trading.DefaultChain = "arbitrum"
	}
	if cfg.Trading.MaxLeverageLabel == "" {
		cfg.Trading.MaxLeverageLabel = "100x"
	}
	if cfg.Trading.RecommendedLeverage == "" {
		cfg.Trading.RecommendedLeverage = "10x"
	}
	if cfg.Trading.Chains == nil {
		cfg.Trading.Chains = map[string]ChainConfig{}
	}
	if _, ok := cfg.Trading.Chains["arbitrum"]; !ok {
		cfg.Trading.Chains["arbitrum"] = ChainConfig{
			ChainID:    42161,
			RPC:        "https://arbitrum.meowrpc.com",
			GasCostUSD: 15,
		}
	}
	if _, ok := cfg.Trading.Chains["avalanche"]; !ok {
		cfg.Trading.Chains["avalanche"] = ChainConfig{
			ChainID:    43114,
			RPC:        "https://api.avax.network/ext/bc/C/rpc",
			GasCostUSD: 2,
		}
	}
	if cfg.Journal.Schema == "" {
		cfg.Journal.Schema = "public"
	}
	if cfg.Journal.QueueSize == 0 {
		cfg.Journal.QueueSize = 256
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("GMX_WALLET_ADDRESS")); v != "" {
		cfg.Wallet.Address = v
	}
	if v := strings.TrimSpace(os.Getenv("GMX_PRIVATE_KEY")); v != "" {
		cfg.Wallet.PrivateKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GMX_JOURNAL_DSN")); v != "" {
		cfg.Journal.DSN = v
	}
	for name, chain := range cfg.Trading.Chains {
		key := "GMX_" + strings.ToUpper(name) + "_RPC"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			chain.RPC = v
			cfg.Trading.Chains[name] = chain
		}
	}
}

func validate(cfg *Config) error {
	if _, ok := cfg.Trading.Chains[cfg.Trading.DefaultChain]; !ok {
		return fmt.Errorf("trading.default_chain %q is not a configured chain", cfg.Trading.DefaultChain)
	}
	for name, chain := range cfg.Trading.Chains {
		if chain.GasCostUSD < 0 {
			return fmt.Errorf("trading.chains.%s.gas_cost_usd must be >= 0", name)
		}
	}
	if cfg.Journal.Enabled && strings.TrimSpace(cfg.Journal.DSN) == "" {
		return errors.New("journal.dsn is required when journal.enabled")
	}
	if cfg.Journal.QueueSize < 0 {
		return errors.New("journal.queue_size must be >= 0")
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 {
		return errors.New("server timeouts must be >= 0")
	}
	return nil
}
