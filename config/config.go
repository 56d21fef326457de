// Package config loads the cycler configuration from YAML, .env and CYCLER_ environment variables.
package config

import (
	"time"
)

// Config is the top-level configuration file. Slippage is nil when unset so an explicit 0 survives defaults.
type Config struct {
	Log                LogConfig      `yaml:"log"`
	WalletsFile        string         `yaml:"wallets_file"`
	Amount             string         `yaml:"amount"`
	Slippage           *float64       `yaml:"slippage"`
	Cycles             int            `yaml:"cycles"`
	MaxParallelWallets int            `yaml:"max_parallel_wallets"`
	StartDelay         RangeConfig    `yaml:"start_delay"`
	Gate               GateConfig     `yaml:"gate"`
	Settlement         PollConfig     `yaml:"settlement"`
	Approval           ApprovalConfig `yaml:"approval"`
	Chains             []ChainConfig  `yaml:"chains"`
	Itinerary          []HopConfig    `yaml:"itinerary"`
	Postgres           PostgresConfig `yaml:"postgres"`
	Redis              RedisConfig    `yaml:"redis"`
	Metrics            MetricsConfig  `yaml:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RangeConfig is an inclusive duration range.
type RangeConfig struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// PollConfig bounds a balance wait.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxWait  time.Duration `yaml:"max_wait"`
}

// GateConfig is the minimum operating balance wait.
type GateConfig struct {
	Units    string        `yaml:"units"`
	Interval time.Duration `yaml:"interval"`
	MaxWait  time.Duration `yaml:"max_wait"`
}

// ApprovalConfig controls the wait after an approval.
type ApprovalConfig struct {
	SettleDelay  time.Duration `yaml:"settle_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ChainConfig holds settings for one chain endpoint.
type ChainConfig struct {
	Name          string            `yaml:"name"`
	Type          string            `yaml:"type"`
	ChainID       uint64            `yaml:"chain_id"`
	BridgeChainID uint16            `yaml:"bridge_chain_id"`
	RpcUrl        string            `yaml:"rpc_url"`
	TxType        uint64            `yaml:"tx_type"`
	Router        string            `yaml:"router"`
	Explorer      string            `yaml:"explorer"`
	GasMultiplier float64           `yaml:"gas_multiplier"`
	Tokens        map[string]string `yaml:"tokens"`
}

// HopConfig is one itinerary entry. Token sets both sides unless FromToken or ToToken is given.
type HopConfig struct {
	From      string      `yaml:"from"`
	To        string      `yaml:"to"`
	Token     string      `yaml:"token"`
	FromToken string      `yaml:"from_token"`
	ToToken   string      `yaml:"to_token"`
	SrcPool   uint64      `yaml:"src_pool"`
	DstPool   uint64      `yaml:"dst_pool"`
	Amount    string      `yaml:"amount"`
	Cooldown  RangeConfig `yaml:"cooldown"`
	FromLabel string      `yaml:"from_label"`
	ToLabel   string      `yaml:"to_label"`
}

// PostgresConfig enables the hop journal when DSN is set.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the redis status sets when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MetricsConfig enables the metrics and health server when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Env holds the CYCLER_ prefixed overrides.
type Env struct {
	WalletsFile string `envconfig:"WALLETS_FILE"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}
