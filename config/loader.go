package config

import (
	"os"
	"strings"
	"time"

	"github.com/ClipFinance/relay-cycler/allowance"
	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/ClipFinance/relay-cycler/worker"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CYCLER"

	defaultSlippage      = 0.005
	defaultCycles        = 1
	defaultStartDelayMin = time.Second
	defaultStartDelayMax = 200 * time.Second
)

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads the configuration at path, expands ${VAR} references, applies CYCLER_ overrides
// and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML after expanding environment variables. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.UnmarshalStrict([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	return &cfg, nil
}

// ApplyEnv overrides file values with non-empty CYCLER_ environment variables.
func (c *Config) ApplyEnv() error {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(err, "failed to read environment")
	}

	if env.WalletsFile != "" {
		c.WalletsFile = env.WalletsFile
	}
	if env.PostgresDSN != "" {
		c.Postgres.DSN = env.PostgresDSN
	}
	if env.RedisAddr != "" {
		c.Redis.Addr = env.RedisAddr
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.MetricsAddr != "" {
		c.Metrics.Addr = env.MetricsAddr
	}
	return nil
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.WalletsFile == "" {
		c.WalletsFile = "wallets.txt"
	}
	if c.Slippage == nil {
		slippage := defaultSlippage
		c.Slippage = &slippage
	}
	if c.Cycles == 0 {
		c.Cycles = defaultCycles
	}
	if c.StartDelay.Min == 0 && c.StartDelay.Max == 0 {
		c.StartDelay = RangeConfig{Min: defaultStartDelayMin, Max: defaultStartDelayMax}
	}

	if c.Gate.Units == "" {
		c.Gate.Units = worker.DefaultGateUnits
	}
	if c.Gate.Interval == 0 {
		c.Gate.Interval = watcher.DefaultInterval
	}
	if c.Gate.MaxWait == 0 {
		c.Gate.MaxWait = watcher.DefaultMaxWait
	}
	if c.Settlement.Interval == 0 {
		c.Settlement.Interval = watcher.DefaultInterval
	}
	if c.Settlement.MaxWait == 0 {
		c.Settlement.MaxWait = watcher.DefaultMaxWait
	}

	if c.Approval.SettleDelay == 0 {
		c.Approval.SettleDelay = allowance.DefaultSettleDelay
	}
	if c.Approval.PollInterval == 0 {
		c.Approval.PollInterval = allowance.DefaultPollInterval
	}
	if c.Approval.Timeout == 0 {
		c.Approval.Timeout = allowance.DefaultTimeout
	}

	for i := range c.Chains {
		if c.Chains[i].Type == "" {
			c.Chains[i].Type = "EVM"
		}
	}
	for i := range c.Itinerary {
		hop := &c.Itinerary[i]
		if hop.FromToken == "" {
			hop.FromToken = hop.Token
		}
		if hop.ToToken == "" {
			hop.ToToken = hop.FromToken
		}
		if hop.Amount == "" {
			hop.Amount = c.Amount
		}
		if hop.FromLabel == "" {
			hop.FromLabel = strings.ToUpper(hop.From)
		}
		if hop.ToLabel == "" {
			hop.ToLabel = strings.ToUpper(hop.To)
		}
	}
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(commonerrors.ErrInvalidConfig, format, args...)
}
