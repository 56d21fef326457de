package watcher

import (
	"context"
	"math/big"
	"time"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/sirupsen/logrus"
)

// BalanceWatcher waits for token balances to reach a threshold.
type BalanceWatcher struct {
	logger *logrus.Logger
}

// NewBalanceWatcher creates a new BalanceWatcher.
func NewBalanceWatcher(logger *logrus.Logger) *BalanceWatcher {
	return &BalanceWatcher{logger: logger}
}

// AwaitSettlement waits until the destination balance of address reaches threshold.
//
// Parameters:
// - ctx: the context for the wait.
// - chain: the destination chain.
// - tokenAddress: the destination token contract.
// - address: the wallet address.
// - threshold: the balance that marks the transfer as settled.
// - opts: polling options.
//
// Returns:
// - *big.Int: the first observed balance at or above threshold.
// - error: ErrSettlementTimeout when MaxWait elapses, or ctx.Err().
func (w *BalanceWatcher) AwaitSettlement(
	ctx context.Context,
	chain types.BalanceProvider,
	tokenAddress, address string,
	threshold *big.Int,
	opts Options,
) (*big.Int, error) {
	return w.await(ctx, chain, tokenAddress, address, threshold, opts, commonerrors.ErrSettlementTimeout)
}

// AwaitGate waits until the source balance of address reaches the minimum operating balance.
func (w *BalanceWatcher) AwaitGate(
	ctx context.Context,
	chain types.BalanceProvider,
	tokenAddress, address string,
	threshold *big.Int,
	opts Options,
) (*big.Int, error) {
	return w.await(ctx, chain, tokenAddress, address, threshold, opts, commonerrors.ErrGateTimeout)
}

func (w *BalanceWatcher) await(
	ctx context.Context,
	chain types.BalanceProvider,
	tokenAddress, address string,
	threshold *big.Int,
	opts Options,
	timeoutErr error,
) (*big.Int, error) {
	log := w.logger.WithFields(logrus.Fields{
		"wallet":    address,
		"token":     tokenAddress,
		"threshold": threshold.String(),
	})

	var observed *big.Int
	check := func(ctx context.Context) (bool, error) {
		balance, err := chain.GetTokenBalance(ctx, address, tokenAddress)
		if err != nil {
			return false, err
		}
		observed = balance
		return balance.Cmp(threshold) >= 0, nil
	}

	notify := func(err error, next time.Duration) {
		if err != nil {
			log.WithError(err).Warn("Balance read failed, retrying")
			return
		}
		log.WithField("balance", observed.String()).Debugf("Balance below threshold, next check in %s", next)
	}

	if err := Poll(ctx, opts, timeoutErr, check, notify); err != nil {
		return nil, err
	}
	return observed, nil
}
