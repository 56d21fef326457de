// Package allowance makes sure the bridge router may move a wallet's tokens.
package allowance

import (
	"context"
	"math/big"
	"time"

	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultSettleDelay is waited after submitting an approval before the first re-check.
	DefaultSettleDelay = 30 * time.Second
	// DefaultPollInterval is the pause between allowance re-checks.
	DefaultPollInterval = 5 * time.Second
	// DefaultTimeout bounds the re-check loop.
	DefaultTimeout = 5 * time.Minute
)

// Chain is the subset of a chain endpoint needed to manage allowances.
type Chain interface {
	types.TokenReader
	types.TokenApprover
}

// Options controls the wait after an approval.
type Options struct {
	SettleDelay  time.Duration
	PollInterval time.Duration
	Timeout      time.Duration
}

// DefaultOptions returns the default approval wait options.
func DefaultOptions() Options {
	return Options{
		SettleDelay:  DefaultSettleDelay,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
	}
}

// Manager checks and grants token allowances.
type Manager struct {
	logger *logrus.Logger
	opts   Options
}

// NewManager creates a new allowance Manager.
func NewManager(logger *logrus.Logger, opts Options) *Manager {
	return &Manager{logger: logger, opts: opts}
}

// EnsureAllowance guarantees that spender may move at least required of tokenAddress from the signer's wallet.
// When the current allowance is sufficient nothing is written and a nil transaction is returned.
// Otherwise an unlimited approval is submitted and the allowance is re-read until it covers required.
//
// Parameters:
// - ctx: the context for the operation.
// - chain: the source chain endpoint.
// - s: the wallet signer; its address is the token owner.
// - tokenAddress: the token contract.
// - spender: the router address.
// - required: the amount the next transfer needs.
//
// Returns:
// - *types.Transaction: the approval transaction, or nil when none was needed.
// - error: an error if reading fails, the approval cannot be submitted, or ErrApprovalTimeout.
func (m *Manager) EnsureAllowance(
	ctx context.Context,
	chain Chain,
	s signer.Signer,
	tokenAddress, spender string,
	required *big.Int,
) (*types.Transaction, error) {
	owner := s.Address().Hex()

	current, err := chain.Allowance(ctx, tokenAddress, owner, spender)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read allowance")
	}
	if current.Cmp(required) >= 0 {
		return nil, nil
	}

	log := m.logger.WithFields(logrus.Fields{
		"wallet":  owner,
		"token":   tokenAddress,
		"spender": spender,
	})
	log.WithField("allowance", current.String()).Info("Allowance below required amount, approving")

	tx, err := chain.Approve(ctx, s, tokenAddress, spender, math.MaxBig256)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit approval")
	}

	opts := watcher.Options{
		Interval:     m.opts.PollInterval,
		MaxWait:      m.opts.Timeout,
		InitialDelay: m.opts.SettleDelay,
	}
	check := func(ctx context.Context) (bool, error) {
		allowance, err := chain.Allowance(ctx, tokenAddress, owner, spender)
		if err != nil {
			return false, err
		}
		return allowance.Cmp(required) >= 0, nil
	}
	notify := func(err error, next time.Duration) {
		if err != nil {
			log.WithError(err).Warn("Allowance read failed, retrying")
		}
	}

	if err := watcher.Poll(ctx, opts, commonerrors.ErrApprovalTimeout, check, notify); err != nil {
		return tx, err
	}
	return tx, nil
}
