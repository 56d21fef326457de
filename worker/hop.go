package worker

import (
	"context"
	"math/big"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/planner"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// hopContext is everything resolved from configuration before a hop touches the chain state.
type hopContext struct {
	src, dst           types.Chain
	srcToken, dstToken string
	srcDec, dstDec     uint8
	router             string
}

// executeHop runs CheckGate, Approve, Plan, Swap and AwaitDestination for one hop.
// The returned kind is a fallback classification for errors the caller cannot classify by cause.
func (w *Worker) executeHop(ctx context.Context, hop types.Hop, result *types.HopResult) (types.FailureKind, error) {
	addr := w.wallet.Address()
	log := w.logger.WithField("hop", hop.String())

	hc, err := w.resolve(ctx, hop)
	if err != nil {
		return types.RPCError, err
	}

	requested, err := planner.ToRaw(hop.Amount, hc.srcDec)
	if err != nil {
		return types.ConfigError, errors.Wrap(commonerrors.ErrInvalidConfig, err.Error())
	}
	gate, err := planner.ToRaw(w.opts.GateUnits, hc.srcDec)
	if err != nil {
		return types.ConfigError, errors.Wrap(commonerrors.ErrInvalidConfig, err.Error())
	}

	// CheckGate
	log.WithField("threshold", gate.String()).Debug("Waiting for source balance")
	if _, err := w.deps.Watcher.AwaitGate(ctx, hc.src, hc.srcToken, addr, gate, w.opts.Gate); err != nil {
		return types.GateTimeout, err
	}

	// Approve
	approveTx, err := w.deps.Allowance.EnsureAllowance(ctx, hc.src, w.wallet.Signer, hc.srcToken, hc.router, requested)
	if approveTx != nil {
		result.ApproveTx = approveTx
		w.reportTx(ctx, reporter.TxApproval, hop, approveTx)
	}
	if err != nil {
		return types.ApprovalFailed, err
	}

	// Plan
	balance, err := hc.src.GetTokenBalance(ctx, addr, hc.srcToken)
	if err != nil {
		return types.RPCError, errors.Wrap(err, "failed to read source balance")
	}
	intent, err := planner.Plan(requested, balance, w.opts.SlippageBps)
	if err != nil {
		return types.ZeroAmount, err
	}
	result.Intent = intent
	if intent.Fallback {
		log.WithFields(logrus.Fields{
			"balance":   balance.String(),
			"requested": requested.String(),
		}).Info("Balance below requested amount, sending whole balance")
	}

	before, err := hc.dst.GetTokenBalance(ctx, addr, hc.dstToken)
	if err != nil {
		return types.RPCError, errors.Wrap(err, "failed to read destination balance")
	}

	// Swap
	swapTx, err := w.deps.Executor.Execute(ctx, hc.src, hc.dst.GetConfig(), w.wallet, intent, hop)
	if err != nil {
		return types.RPCError, err
	}
	result.SwapTx = swapTx
	w.reportTx(ctx, reporter.TxSwap, hop, swapTx)

	// AwaitDestination
	threshold := new(big.Int).Add(before, planner.Rescale(intent.MinAmountOut, hc.srcDec, hc.dstDec))
	settled, err := w.deps.Watcher.AwaitSettlement(ctx, hc.dst, hc.dstToken, addr, threshold, w.opts.Settlement)
	if err != nil {
		return types.SettlementTimeout, err
	}

	log.WithField("balance", settled.String()).Debug("Destination settled")
	return "", nil
}

func (w *Worker) resolve(ctx context.Context, hop types.Hop) (*hopContext, error) {
	src, err := w.deps.Registry.Get(hop.From)
	if err != nil {
		return nil, err
	}
	dst, err := w.deps.Registry.Get(hop.To)
	if err != nil {
		return nil, err
	}

	srcToken, ok := src.GetConfig().TokenAddress(hop.FromToken)
	if !ok {
		return nil, errors.Wrapf(commonerrors.ErrTokenNotSupported, "%s on %s", hop.FromToken, hop.From)
	}
	dstToken, ok := dst.GetConfig().TokenAddress(hop.ToToken)
	if !ok {
		return nil, errors.Wrapf(commonerrors.ErrTokenNotSupported, "%s on %s", hop.ToToken, hop.To)
	}

	router := src.GetConfig().RouterAddress
	if router == "" {
		return nil, errors.Wrapf(commonerrors.ErrInvalidConfig, "no router on %s", hop.From)
	}

	srcDec, err := src.Decimals(ctx, srcToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source token decimals")
	}
	dstDec, err := dst.Decimals(ctx, dstToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read destination token decimals")
	}

	return &hopContext{
		src:      src,
		dst:      dst,
		srcToken: srcToken,
		dstToken: dstToken,
		srcDec:   srcDec,
		dstDec:   dstDec,
		router:   router,
	}, nil
}

func (w *Worker) reportTx(ctx context.Context, kind reporter.TxKind, hop types.Hop, tx *types.Transaction) {
	event := reporter.TxEvent{
		Kind:   kind,
		Hop:    hop,
		Wallet: w.wallet.Address(),
		Tx:     tx,
	}
	w.report(ctx, func(ctx context.Context) error {
		return w.deps.Reporter.ReportTx(ctx, event)
	})
}
