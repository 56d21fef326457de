package types

import (
	"context"
	"math/big"
	"strings"

	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
)

// TokenKind identifies a stable token independently of its per-chain contract address.
type TokenKind string

const (
	USDC TokenKind = "USDC"
	USDT TokenKind = "USDT"
)

// String converts TokenKind to string representation.
func (k TokenKind) String() string {
	return string(k)
}

// ChainConfig holds the configuration for a specific chain endpoint.
//
// Fields:
// - Name: the name of the chain, used as its key in the registry.
// - ChainType: the type of the chain.
// - ChainID: the public chain id used for transaction signing.
// - BridgeChainID: the chain id used by the bridge messaging protocol.
// - RpcUrl: the URL for the chain's RPC endpoint.
// - TxType: the type of transactions supported by the chain.
// - RouterAddress: the address of the bridge router contract.
// - Tokens: token contract addresses by kind; a chain may lack some kinds.
// - ExplorerURL: the block explorer base URL.
// - GasMultiplier: the factor applied to estimated gas limits.
type ChainConfig struct {
	Name          string
	ChainType     ChainType
	ChainID       uint64
	BridgeChainID uint16
	RpcUrl        string
	TxType        uint64
	RouterAddress string
	Tokens        map[TokenKind]string
	ExplorerURL   string
	GasMultiplier float64
}

// TokenAddress returns the token contract address for the given kind.
func (c *ChainConfig) TokenAddress(kind TokenKind) (string, bool) {
	addr, ok := c.Tokens[kind]
	return addr, ok && addr != ""
}

// TxURL builds the block explorer link for a transaction hash.
func (c *ChainConfig) TxURL(hash string) string {
	if c.ExplorerURL == "" {
		return hash
	}
	return strings.TrimRight(c.ExplorerURL, "/") + "/tx/" + hash
}

// BalanceProvider provides native and token balance reads.
type BalanceProvider interface {
	// GetTokenBalance returns the balance of address for tokenAddress.
	// An empty tokenAddress or the zero address requests the native balance.
	GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error)
}

// TokenReader provides read-only token contract calls.
type TokenReader interface {
	BalanceProvider

	// Allowance returns how much spender may move from owner's tokenAddress balance.
	Allowance(ctx context.Context, tokenAddress, owner, spender string) (*big.Int, error)

	// Decimals returns the token's decimals.
	Decimals(ctx context.Context, tokenAddress string) (uint8, error)
}

// FeeQuoter asks the bridge router for the native fee of a cross-chain message.
type FeeQuoter interface {
	// QuoteLayerZeroFee returns the native fee required to relay req to its destination.
	QuoteLayerZeroFee(ctx context.Context, req *SwapRequest) (*big.Int, error)
}

// TokenApprover submits token approvals.
type TokenApprover interface {
	// Approve submits approve(spender, amount) signed by s and returns without waiting for a receipt.
	Approve(ctx context.Context, s signer.Signer, tokenAddress, spender string, amount *big.Int) (*Transaction, error)
}

// BridgeSender submits bridge transfers.
type BridgeSender interface {
	// Swap submits a router swap signed by s with fee attached as value.
	// It returns as soon as the transaction is accepted by the node.
	Swap(ctx context.Context, s signer.Signer, req *SwapRequest, fee *big.Int) (*Transaction, error)
}

// Chain combines all chain-specific functionality.
type Chain interface {
	TokenReader
	FeeQuoter
	TokenApprover
	BridgeSender

	// GetConfig returns the chain configuration.
	GetConfig() *ChainConfig

	// Close releases the underlying connection.
	Close()
}

// ChainRegistry manages chain endpoints by name.
type ChainRegistry interface {
	// Add creates and registers an endpoint for config.
	Add(ctx context.Context, config *ChainConfig) error

	// Get retrieves an endpoint by its name.
	Get(name string) (Chain, error)

	// Names returns the registered chain names.
	Names() []string

	// Close releases every endpoint.
	Close()
}
