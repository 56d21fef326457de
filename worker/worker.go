// Package worker runs one wallet's itinerary of bridge hops.
package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/ClipFinance/relay-cycler/allowance"
	"github.com/ClipFinance/relay-cycler/bridge"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/sirupsen/logrus"
)

// DefaultGateUnits is the minimum source balance, in whole token units, a hop waits for.
const DefaultGateUnits = "3"

// reportTimeout bounds sink writes, which still run after the run context is cancelled.
const reportTimeout = 10 * time.Second

// Options are the per-run pacing and tolerance settings shared by every worker.
// GateUnits is the minimum operating balance, in whole token units, a hop waits for on its source chain.
type Options struct {
	RunID       string
	Cycles      int
	StartDelay  types.DelayRange
	SlippageBps uint64
	GateUnits   string
	Gate        watcher.Options
	Settlement  watcher.Options
}

// Deps are the collaborators a worker drives. Reporter logs its own delivery failures, as reporter.NewMulti does.
type Deps struct {
	Registry  types.ChainRegistry
	Allowance *allowance.Manager
	Executor  *bridge.Executor
	Watcher   *watcher.BalanceWatcher
	Reporter  reporter.Reporter
	Logger    *logrus.Logger
}

// Worker executes an itinerary for one wallet. Hops run strictly in order.
type Worker struct {
	wallet    *types.Wallet
	itinerary []types.Hop
	opts      Options
	deps      Deps

	sleep  func(ctx context.Context, d time.Duration) error
	randN  func(n int64) int64
	now    func() time.Time
	logger *logrus.Entry
}

// New creates a worker for wallet.
//
// Parameters:
// - wallet: the wallet whose funds are cycled.
// - itinerary: the ordered hops, repeated opts.Cycles times.
// - opts: pacing and tolerance settings.
// - deps: chain registry, workflow components and sinks.
//
// Returns:
// - *Worker: the new worker.
func New(wallet *types.Wallet, itinerary []types.Hop, opts Options, deps Deps) *Worker {
	if opts.Cycles <= 0 {
		opts.Cycles = 1
	}
	if opts.GateUnits == "" {
		opts.GateUnits = DefaultGateUnits
	}

	return &Worker{
		wallet:    wallet,
		itinerary: itinerary,
		opts:      opts,
		deps:      deps,
		sleep:     watcher.Sleep,
		randN:     rand.Int63n,
		now:       time.Now,
		logger: deps.Logger.WithFields(logrus.Fields{
			"run":    opts.RunID,
			"wallet": wallet.Address(),
		}),
	}
}

// Run executes the whole itinerary and returns its summary. Hop failures are recorded in the
// summary and never abort the run; only ctx cancellation stops it early.
func (w *Worker) Run(ctx context.Context) *types.Summary {
	summary := &types.Summary{Wallet: w.wallet.Address()}

	delay := w.randomDelay(w.opts.StartDelay)
	w.logger.WithField("delay", delay.String()).Info("Waiting before first hop")
	if err := w.sleep(ctx, delay); err != nil {
		w.logger.WithError(err).Warn("Stopped before first hop")
		return summary
	}

	total := w.opts.Cycles * len(w.itinerary)
	step := 0
	for cycle := 0; cycle < w.opts.Cycles; cycle++ {
		for index, hop := range w.itinerary {
			step++

			result := w.runHop(ctx, cycle, index, hop)
			summary.Results = append(summary.Results, result)
			if result.Failed() {
				summary.Failed++
			} else {
				summary.Succeeded++
			}

			if result.Status == types.HopCancelled {
				w.logger.Warn("Run cancelled")
				return summary
			}

			if step == total {
				break
			}

			cooldown := w.randomDelay(hop.Cooldown)
			w.logger.WithFields(logrus.Fields{
				"hop":      hop.String(),
				"cooldown": cooldown.String(),
			}).Info("Cooling down before next hop")
			if err := w.sleep(ctx, cooldown); err != nil {
				w.logger.WithError(err).Warn("Run cancelled during cooldown")
				return summary
			}
		}
	}

	summary.Done = true
	w.deps.Logger.Infof("Wallet: %s | DONE", w.wallet.Address())
	return summary
}

func (w *Worker) runHop(ctx context.Context, cycle, index int, hop types.Hop) *types.HopResult {
	result := &types.HopResult{
		RunID:     w.opts.RunID,
		Wallet:    w.wallet.Address(),
		Cycle:     cycle,
		Index:     index,
		Hop:       hop,
		StartedAt: w.now(),
	}

	hint, err := w.executeHop(ctx, hop, result)
	result.FinishedAt = w.now()

	if err != nil {
		result.Status, result.Kind = classify(ctx, err, hint)
		result.Err = err.Error()
	} else {
		result.Status = types.HopDone
	}

	w.report(ctx, func(ctx context.Context) error {
		return w.deps.Reporter.ReportHop(ctx, result)
	})
	return result
}

// report delivers an event even when ctx is already cancelled.
// Delivery errors are logged by the reporter itself.
func (w *Worker) report(ctx context.Context, send func(ctx context.Context) error) {
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	_ = send(reportCtx)
}

func (w *Worker) randomDelay(r types.DelayRange) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(w.randN(int64(r.Max-r.Min)+1))
}
