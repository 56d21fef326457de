package memchain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
)

// Chain is one simulated chain endpoint of a Ledger.
type Chain struct {
	ledger *Ledger
	config *types.ChainConfig

	hookMu sync.Mutex
	// Fee is returned by QuoteLayerZeroFee.
	Fee *big.Int
	// SwapHook, when set, is called before each swap; a non-nil error fails the swap.
	SwapHook func(req *types.SwapRequest) error
	// ApproveErr fails every approval when set.
	ApproveErr error
	// ReadErr fails every balance read when set.
	ReadErr error

	swaps     []*types.SwapRequest
	approvals int
	closed    bool
}

// GetConfig returns the chain configuration.
func (c *Chain) GetConfig() *types.ChainConfig {
	return c.config
}

// GetTokenBalance returns the simulated balance. An empty tokenAddress reads the native balance.
func (c *Chain) GetTokenBalance(_ context.Context, address, tokenAddress string) (*big.Int, error) {
	c.hookMu.Lock()
	readErr := c.ReadErr
	c.hookMu.Unlock()
	if readErr != nil {
		return nil, readErr
	}
	return c.ledger.Balance(c.config.Name, tokenAddress, address), nil
}

// Allowance returns the simulated allowance.
func (c *Chain) Allowance(_ context.Context, tokenAddress, owner, spender string) (*big.Int, error) {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	k := key{chain: c.config.Name, token: norm(tokenAddress), owner: norm(owner), extra: norm(spender)}
	if a, ok := c.ledger.allowances[k]; ok {
		return new(big.Int).Set(a), nil
	}
	return big.NewInt(0), nil
}

// Decimals returns the token decimals.
func (c *Chain) Decimals(_ context.Context, tokenAddress string) (uint8, error) {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()
	return c.ledger.decimalsLocked(c.config.Name, tokenAddress), nil
}

// QuoteLayerZeroFee returns Fee.
func (c *Chain) QuoteLayerZeroFee(context.Context, *types.SwapRequest) (*big.Int, error) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	return new(big.Int).Set(c.Fee), nil
}

// Approve sets the allowance immediately.
func (c *Chain) Approve(_ context.Context, s signer.Signer, tokenAddress, spender string, amount *big.Int) (*types.Transaction, error) {
	c.hookMu.Lock()
	approveErr := c.ApproveErr
	c.approvals++
	c.hookMu.Unlock()
	if approveErr != nil {
		return nil, approveErr
	}

	owner := s.Address().Hex()

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()
	k := key{chain: c.config.Name, token: norm(tokenAddress), owner: norm(owner), extra: norm(spender)}
	c.ledger.allowances[k] = new(big.Int).Set(amount)

	return c.txLocked(owner, tokenAddress, big.NewInt(0)), nil
}

// Swap debits the source balance and credits the destination chain, after charging fee in native currency.
func (c *Chain) Swap(_ context.Context, s signer.Signer, req *types.SwapRequest, fee *big.Int) (*types.Transaction, error) {
	c.hookMu.Lock()
	hook := c.SwapHook
	c.hookMu.Unlock()
	if hook != nil {
		if err := hook(req); err != nil {
			return nil, err
		}
	}

	owner := s.Address().Hex()

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	nativeKey := balanceKey(c.config.Name, "", owner)
	native := c.ledger.balanceLocked(nativeKey)
	if native.Cmp(fee) < 0 {
		return nil, errors.New("insufficient funds for gas * price + value")
	}
	if err := c.ledger.transferLocked(c, owner, req); err != nil {
		return nil, err
	}
	c.ledger.balances[nativeKey] = native.Sub(native, fee)

	c.hookMu.Lock()
	c.swaps = append(c.swaps, req)
	c.hookMu.Unlock()

	return c.txLocked(owner, c.config.RouterAddress, fee), nil
}

// Swaps returns the swap requests accepted so far.
func (c *Chain) Swaps() []*types.SwapRequest {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	return append([]*types.SwapRequest(nil), c.swaps...)
}

// Approvals returns the number of approval attempts.
func (c *Chain) Approvals() int {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	return c.approvals
}

// Close marks the endpoint closed.
func (c *Chain) Close() {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.closed = true
}

// Closed reports whether Close was called.
func (c *Chain) Closed() bool {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	return c.closed
}

func (c *Chain) txLocked(from, to string, value *big.Int) *types.Transaction {
	hash := c.ledger.nextHashLocked()
	return &types.Transaction{
		Hash:  hash,
		From:  from,
		To:    to,
		Value: value,
		Nonce: c.ledger.txCount - 1,
		Chain: c.config.Name,
		URL:   c.config.TxURL(hash),
	}
}
