package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ClipFinance/relay-cycler/allowance"
	"github.com/ClipFinance/relay-cycler/bridge"
	"github.com/ClipFinance/relay-cycler/chainmanager"
	"github.com/ClipFinance/relay-cycler/chains"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/config"
	"github.com/ClipFinance/relay-cycler/dbconfig"
	"github.com/ClipFinance/relay-cycler/metrics"
	"github.com/ClipFinance/relay-cycler/orchestrator"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/ClipFinance/relay-cycler/worker"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const MetricsAddrFlag = "metrics-addr"

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Run the itinerary for every wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  MetricsAddrFlag,
			Usage: "Listen address for /metrics and /health, overrides metrics.addr",
		},
	},
	Action: run,
}

func run(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	if addr := cCtx.String(MetricsAddrFlag); addr != "" {
		cfg.Metrics.Addr = addr
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	wallets, err := config.LoadWallets(cfg.WalletsFile)
	if err != nil {
		return err
	}
	logger.WithField("wallets", len(wallets)).Info("Wallets loaded")

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	registry, err := newRegistry(ctx, cfg, m.ObserveConnection, logger)
	if err != nil {
		return err
	}
	defer registry.Close()

	rep, err := newReporter(ctx, cfg, m, logger)
	if err != nil {
		return err
	}
	defer rep.Close()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, metrics.NewRouter(m, reg), logger); err != nil {
				logger.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	orchCfg, err := cfg.OrchestratorConfig()
	if err != nil {
		return err
	}

	quoter := bridge.NewFeeQuoter(logger)
	deps := worker.Deps{
		Registry:  registry,
		Allowance: allowance.NewManager(logger, cfg.AllowanceOptions()),
		Executor:  bridge.NewExecutor(logger, quoter),
		Watcher:   watcher.NewBalanceWatcher(logger),
		Reporter:  rep,
		Logger:    logger,
	}

	summaries, err := orchestrator.New(orchCfg, deps, m.WalletsActive).Run(ctx, wallets, cfg.Hops())
	if err != nil {
		return err
	}
	logSummaries(logger, summaries)
	return nil
}

// newRegistry connects every configured chain. A chain that cannot be reached aborts startup.
func newRegistry(ctx context.Context, cfg *config.Config, observer func(string, bool), logger *logrus.Logger) (types.ChainRegistry, error) {
	registry := chainmanager.NewChainRegistry(chains.NewChainFactory(observer), logger)
	for _, chainConfig := range cfg.ChainConfigs() {
		if err := registry.Add(ctx, chainConfig); err != nil {
			registry.Close()
			return nil, errors.Wrapf(err, "failed to connect chain %s", chainConfig.Name)
		}
	}
	return registry, nil
}

// sinks is the fan-out reporter together with the store connections it owns.
type sinks struct {
	reporter.Reporter
	closers []io.Closer
	logger  *logrus.Logger
}

// Close releases every store connection.
func (s *sinks) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close reporter connection")
		}
	}
}

// newReporter fans results out to the log, metrics and whichever stores are configured.
func newReporter(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *logrus.Logger) (*sinks, error) {
	reporters := []reporter.Reporter{
		reporter.NewLogReporter(logger),
		m,
	}
	var closers []io.Closer

	if cfg.Postgres.DSN != "" {
		db, err := dbconfig.NewDBConfig(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		reporters = append(reporters, reporter.NewJournalReporter(db))
		logger.Info("Hop journal enabled")
	}

	if cfg.Redis.Addr != "" {
		pool := reporter.NewRedisPool(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		reporters = append(reporters, reporter.NewRedisReporter(pool))
		closers = append(closers, pool)
		logger.WithField("addr", cfg.Redis.Addr).Info("Redis status sets enabled")
	}

	return &sinks{
		Reporter: reporter.NewMulti(logger, reporters...),
		closers:  closers,
		logger:   logger,
	}, nil
}

func logSummaries(logger *logrus.Logger, summaries []*types.Summary) {
	var succeeded, failed int
	for _, s := range summaries {
		if s == nil {
			continue
		}
		succeeded += s.Succeeded
		failed += s.Failed
		logger.WithFields(logrus.Fields{
			"wallet":    s.Wallet,
			"succeeded": s.Succeeded,
			"failed":    s.Failed,
			"done":      s.Done,
		}).Info("Wallet summary")
	}
	logger.WithFields(logrus.Fields{
		"wallets":   len(summaries),
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("Run summary")
}
