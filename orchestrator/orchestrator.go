// Package orchestrator runs one worker per wallet over a shared itinerary.
package orchestrator

import (
	"context"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/worker"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config controls a run.
type Config struct {
	// MaxParallelWallets caps concurrently running workers. Zero runs every wallet at once.
	MaxParallelWallets int
	Worker             worker.Options
}

// Orchestrator starts and awaits wallet workers.
type Orchestrator struct {
	config Config
	deps   worker.Deps
	active prometheus.Gauge
	logger *logrus.Logger
}

// New creates a new Orchestrator.
//
// Parameters:
// - config: parallelism cap and the options shared by every worker.
// - deps: collaborators shared by every worker.
// - active: tracks running workers, may be nil.
//
// Returns:
// - *Orchestrator: the new orchestrator.
func New(config Config, deps worker.Deps, active prometheus.Gauge) *Orchestrator {
	return &Orchestrator{
		config: config,
		deps:   deps,
		active: active,
		logger: deps.Logger,
	}
}

// Validate checks that a run can start: at least one wallet and one hop, and every hop's
// chains registered.
func (o *Orchestrator) Validate(wallets []*types.Wallet, itinerary []types.Hop) error {
	if len(wallets) == 0 {
		return errors.Wrap(commonerrors.ErrInvalidWallet, "no wallets")
	}
	if len(itinerary) == 0 {
		return errors.Wrap(commonerrors.ErrInvalidConfig, "empty itinerary")
	}

	for i, hop := range itinerary {
		for _, name := range []string{hop.From, hop.To} {
			if _, err := o.deps.Registry.Get(name); err != nil {
				return errors.Wrapf(err, "hop %d (%s)", i, hop.String())
			}
		}
	}
	return nil
}

// Run executes itinerary for every wallet concurrently and waits for all of them.
// Hop failures are reported inside the summaries; an error is returned only when the run
// cannot start.
//
// Parameters:
// - ctx: cancelling it stops every worker at its next suspension point.
// - wallets: the wallets to cycle.
// - itinerary: the hops every wallet follows.
//
// Returns:
// - []*types.Summary: one summary per wallet, in wallet order.
// - error: a validation error.
func (o *Orchestrator) Run(ctx context.Context, wallets []*types.Wallet, itinerary []types.Hop) ([]*types.Summary, error) {
	if err := o.Validate(wallets, itinerary); err != nil {
		return nil, err
	}

	opts := o.config.Worker
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}

	o.logger.WithFields(logrus.Fields{
		"run":     opts.RunID,
		"wallets": len(wallets),
		"hops":    len(itinerary),
		"cycles":  opts.Cycles,
	}).Info("Starting run")

	summaries := make([]*types.Summary, len(wallets))

	g, gctx := errgroup.WithContext(ctx)
	if o.config.MaxParallelWallets > 0 {
		g.SetLimit(o.config.MaxParallelWallets)
	}

	for i, wallet := range wallets {
		i := i
		w := worker.New(wallet, itinerary, opts, o.deps)
		g.Go(func() error {
			o.trackActive(1)
			defer o.trackActive(-1)

			summaries[i] = w.Run(gctx)
			return nil
		})
	}

	_ = g.Wait()

	o.logger.WithField("run", opts.RunID).Info("*** FINISHED ***")
	return summaries, nil
}

func (o *Orchestrator) trackActive(delta float64) {
	if o.active != nil {
		o.active.Add(delta)
	}
}
