package chainmanager

import (
	"github.com/ClipFinance/relay-cycler/common/types"
)

// ChainBuilder is a builder pattern implementation for chain configuration.
// It allows setting the capabilities a chain endpoint can serve: token reads,
// approvals, fee quotes and bridge transfers.
type ChainBuilder struct {
	config   *types.ChainConfig  // Chain configuration.
	reader   types.TokenReader   // Token reader implementation.
	approver types.TokenApprover // Token approver implementation.
	quoter   types.FeeQuoter     // Fee quoter implementation.
	sender   types.BridgeSender  // Bridge sender implementation.
	closer   func()              // Releases the endpoint.
}

// NewChainBuilder creates a new chain builder instance.
//
// Parameters:
// - config: the chain configuration.
//
// Returns:
// - *ChainBuilder: a new ChainBuilder instance.
func NewChainBuilder(config *types.ChainConfig) *ChainBuilder {
	return &ChainBuilder{
		config: config,
	}
}

// WithTokenReader sets token reader implementation.
func (b *ChainBuilder) WithTokenReader(reader types.TokenReader) *ChainBuilder {
	b.reader = reader
	return b
}

// WithTokenApprover sets token approver implementation.
func (b *ChainBuilder) WithTokenApprover(approver types.TokenApprover) *ChainBuilder {
	b.approver = approver
	return b
}

// WithFeeQuoter sets fee quoter implementation.
func (b *ChainBuilder) WithFeeQuoter(quoter types.FeeQuoter) *ChainBuilder {
	b.quoter = quoter
	return b
}

// WithBridgeSender sets bridge sender implementation.
func (b *ChainBuilder) WithBridgeSender(sender types.BridgeSender) *ChainBuilder {
	b.sender = sender
	return b
}

// WithCloser sets the function releasing the endpoint.
func (b *ChainBuilder) WithCloser(closer func()) *ChainBuilder {
	b.closer = closer
	return b
}

// Build creates a new chain instance with configured implementations.
//
// Returns:
// - *Chain: a new Chain instance with the configured implementations.
func (b *ChainBuilder) Build() *Chain {
	return NewChain(b.config, b.reader, b.approver, b.quoter, b.sender, b.closer)
}
