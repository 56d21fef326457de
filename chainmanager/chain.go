package chainmanager

import (
	"context"
	"math/big"
	"sync"

	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
)

// ErrNotImplemented is returned when a capability was not attached to the chain.
var ErrNotImplemented = commonerrors.ErrNotImplemented

// Chain implements types.Chain interface with thread-safe access to dependencies.
// Each capability is optional; calling a missing one returns ErrNotImplemented.
type Chain struct {
	config   *types.ChainConfig  // Chain configuration.
	reader   types.TokenReader   // Token reader implementation.
	approver types.TokenApprover // Token approver implementation.
	quoter   types.FeeQuoter     // Fee quoter implementation.
	sender   types.BridgeSender  // Bridge sender implementation.
	closer   func()              // Releases the endpoint.

	mutex     sync.RWMutex // Guards the capability fields.
	closeOnce sync.Once
}

// NewChain creates a new Chain instance.
//
// Parameters:
// - config: the chain configuration.
// - reader: the token reader implementation.
// - approver: the token approver implementation.
// - quoter: the fee quoter implementation.
// - sender: the bridge sender implementation.
// - closer: releases the endpoint, may be nil.
//
// Returns:
// - *Chain: a new Chain instance.
func NewChain(
	config *types.ChainConfig,
	reader types.TokenReader,
	approver types.TokenApprover,
	quoter types.FeeQuoter,
	sender types.BridgeSender,
	closer func(),
) *Chain {
	return &Chain{
		config:   config,
		reader:   reader,
		approver: approver,
		quoter:   quoter,
		sender:   sender,
		closer:   closer,
	}
}

// GetTokenBalance reads a token or native balance.
func (c *Chain) GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	reader := c.getReader()
	if reader == nil {
		return nil, ErrNotImplemented
	}
	return reader.GetTokenBalance(ctx, address, tokenAddress)
}

// Allowance reads a token allowance.
func (c *Chain) Allowance(ctx context.Context, tokenAddress, owner, spender string) (*big.Int, error) {
	reader := c.getReader()
	if reader == nil {
		return nil, ErrNotImplemented
	}
	return reader.Allowance(ctx, tokenAddress, owner, spender)
}

// Decimals reads token decimals.
func (c *Chain) Decimals(ctx context.Context, tokenAddress string) (uint8, error) {
	reader := c.getReader()
	if reader == nil {
		return 0, ErrNotImplemented
	}
	return reader.Decimals(ctx, tokenAddress)
}

// Approve submits a token approval.
func (c *Chain) Approve(ctx context.Context, s signer.Signer, tokenAddress, spender string, amount *big.Int) (*types.Transaction, error) {
	c.mutex.RLock()
	approver := c.approver
	c.mutex.RUnlock()

	if approver == nil {
		return nil, ErrNotImplemented
	}
	return approver.Approve(ctx, s, tokenAddress, spender, amount)
}

// QuoteLayerZeroFee quotes the bridge fee.
func (c *Chain) QuoteLayerZeroFee(ctx context.Context, req *types.SwapRequest) (*big.Int, error) {
	c.mutex.RLock()
	quoter := c.quoter
	c.mutex.RUnlock()

	if quoter == nil {
		return nil, ErrNotImplemented
	}
	return quoter.QuoteLayerZeroFee(ctx, req)
}

// Swap submits a bridge transfer.
func (c *Chain) Swap(ctx context.Context, s signer.Signer, req *types.SwapRequest, fee *big.Int) (*types.Transaction, error) {
	c.mutex.RLock()
	sender := c.sender
	c.mutex.RUnlock()

	if sender == nil {
		return nil, ErrNotImplemented
	}
	return sender.Swap(ctx, s, req, fee)
}

// GetConfig returns chain configuration.
func (c *Chain) GetConfig() *types.ChainConfig {
	return c.config
}

// Close releases the endpoint once.
func (c *Chain) Close() {
	c.closeOnce.Do(func() {
		if c.closer != nil {
			c.closer()
		}
	})
}

func (c *Chain) getReader() types.TokenReader {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.reader
}
