// Package memchain is an in-memory multi-chain ledger implementing the chain endpoint interfaces.
// Swaps move funds between chains of the same ledger immediately, so workflows can be exercised
// without a node.
package memchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultDecimals is used for tokens without explicit decimals.
const DefaultDecimals = 6

type key struct {
	chain string
	token string
	owner string
	extra string
}

// Ledger holds balances and allowances of every simulated chain.
type Ledger struct {
	mu         sync.Mutex
	chains     map[string]*Chain
	byBridgeID map[uint16]*Chain
	balances   map[key]*big.Int
	allowances map[key]*big.Int
	decimals   map[key]uint8
	txCount    uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		chains:     make(map[string]*Chain),
		byBridgeID: make(map[uint16]*Chain),
		balances:   make(map[key]*big.Int),
		allowances: make(map[key]*big.Int),
		decimals:   make(map[key]uint8),
	}
}

// CreateChain implements chainmanager.ChainFactory.
func (l *Ledger) CreateChain(_ context.Context, config *types.ChainConfig, _ *logrus.Logger) (types.Chain, error) {
	return l.AddChain(config), nil
}

// AddChain registers config and returns its endpoint. Adding a name twice returns the existing endpoint.
func (l *Ledger) AddChain(config *types.ChainConfig) *Chain {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.chains[config.Name]; ok {
		return c
	}
	c := &Chain{ledger: l, config: config, Fee: big.NewInt(0)}
	l.chains[config.Name] = c
	l.byBridgeID[config.BridgeChainID] = c
	return c
}

// Chain returns a registered endpoint by name.
func (l *Ledger) Chain(name string) (*Chain, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.chains[name]
	return c, ok
}

// SetBalance sets owner's balance of token on chain. An empty token sets the native balance.
func (l *Ledger) SetBalance(chain, token, owner string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey(chain, token, owner)] = new(big.Int).Set(amount)
}

// Balance returns owner's balance of token on chain.
func (l *Ledger) Balance(chain, token, owner string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(balanceKey(chain, token, owner))
}

// SetDecimals overrides a token's decimals.
func (l *Ledger) SetDecimals(chain, token string, decimals uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decimals[key{chain: chain, token: norm(token)}] = decimals
}

func (l *Ledger) balanceLocked(k key) *big.Int {
	if b, ok := l.balances[k]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

func (l *Ledger) decimalsLocked(chain, token string) uint8 {
	if d, ok := l.decimals[key{chain: chain, token: norm(token)}]; ok {
		return d
	}
	return DefaultDecimals
}

func (l *Ledger) nextHashLocked() string {
	l.txCount++
	return fmt.Sprintf("0x%064x", l.txCount)
}

// transferLocked debits the source and credits the destination chain resolved by the request.
func (l *Ledger) transferLocked(src *Chain, owner string, req *types.SwapRequest) error {
	dst, ok := l.byBridgeID[req.DstBridgeChainID]
	if !ok {
		return errors.Wrapf(commonerrors.ErrChainNotFound, "bridge chain id %d", req.DstBridgeChainID)
	}

	srcKind, ok := kindForPool(req.SrcPoolID)
	if !ok {
		return errors.Errorf("execution reverted: unknown source pool %d", req.SrcPoolID)
	}
	dstKind, ok := kindForPool(req.DstPoolID)
	if !ok {
		return errors.Errorf("execution reverted: unknown destination pool %d", req.DstPoolID)
	}
	srcToken, _ := src.config.TokenAddress(srcKind)
	dstToken, _ := dst.config.TokenAddress(dstKind)

	srcKey := balanceKey(src.config.Name, srcToken, owner)
	balance := l.balanceLocked(srcKey)
	if balance.Cmp(req.AmountIn) < 0 {
		return errors.New("execution reverted: transfer amount exceeds balance")
	}

	allowanceKey := key{chain: src.config.Name, token: norm(srcToken), owner: norm(owner), extra: norm(src.config.RouterAddress)}
	allowance, ok := l.allowances[allowanceKey]
	if !ok || allowance.Cmp(req.AmountIn) < 0 {
		return errors.New("execution reverted: transfer amount exceeds allowance")
	}

	l.balances[srcKey] = balance.Sub(balance, req.AmountIn)

	received := rescale(req.AmountIn, l.decimalsLocked(src.config.Name, srcToken), l.decimalsLocked(dst.config.Name, dstToken))
	dstKey := balanceKey(dst.config.Name, dstToken, req.Recipient)
	l.balances[dstKey] = new(big.Int).Add(l.balanceLocked(dstKey), received)
	return nil
}

func kindForPool(id uint64) (types.TokenKind, bool) {
	for kind, pool := range types.DefaultPoolIDs {
		if pool == id {
			return kind, true
		}
	}
	return "", false
}

func rescale(amount *big.Int, from, to uint8) *big.Int {
	out := new(big.Int).Set(amount)
	if to > from {
		return out.Mul(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(to-from)), nil))
	}
	if from > to {
		return out.Quo(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(from-to)), nil))
	}
	return out
}

func balanceKey(chain, token, owner string) key {
	return key{chain: chain, token: norm(token), owner: norm(owner)}
}

func norm(addr string) string {
	return strings.ToLower(addr)
}
