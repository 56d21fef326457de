package main

import (
	"os"

	"github.com/ClipFinance/relay-cycler/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	ConfigFlag   = "config"
	WalletsFlag  = "wallets"
	LogLevelFlag = "log-level"
	LogJSONFlag  = "log-json"
	EnvFileFlag  = "env-file"
)

func main() {
	app := &cli.App{
		Name:  "relay-cycler",
		Usage: "Cycle stable tokens across bridge chains for a set of wallets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    ConfigFlag,
				Aliases: []string{"c"},
				Value:   "cycler.yml",
				Usage:   "Path to the YAML configuration",
				EnvVars: []string{"CYCLER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    WalletsFlag,
				Aliases: []string{"w"},
				Usage:   "Path to the wallets file, overrides wallets_file",
			},
			&cli.StringFlag{
				Name:  LogLevelFlag,
				Usage: "Log level (debug, info, warn, error), overrides log.level",
			},
			&cli.BoolFlag{
				Name:  LogJSONFlag,
				Usage: "Log as JSON",
			},
			&cli.StringSliceFlag{
				Name:  EnvFileFlag,
				Value: cli.NewStringSlice(".env"),
				Usage: "Dotenv files loaded before the configuration",
			},
		},
		Commands: []*cli.Command{
			runCommand,
			checkCommand,
			historyCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("relay-cycler failed")
		os.Exit(1)
	}
}

// loadConfig reads the configuration with flag overrides applied on top.
func loadConfig(cCtx *cli.Context) (*config.Config, error) {
	config.LoadDotEnv(cCtx.StringSlice(EnvFileFlag)...)

	cfg, err := config.Load(cCtx.String(ConfigFlag))
	if err != nil {
		return nil, err
	}

	if wallets := cCtx.String(WalletsFlag); wallets != "" {
		cfg.WalletsFile = wallets
	}
	if level := cCtx.String(LogLevelFlag); level != "" {
		cfg.Log.Level = level
	}
	if cCtx.Bool(LogJSONFlag) {
		cfg.Log.Format = "json"
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
