// Package bridge quotes and submits router swaps.
package bridge

import (
	"context"
	"math/big"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FeeQuoter asks a source router for the native messaging fee of a swap.
type FeeQuoter struct {
	logger *logrus.Logger
}

// NewFeeQuoter creates a new FeeQuoter.
func NewFeeQuoter(logger *logrus.Logger) *FeeQuoter {
	return &FeeQuoter{logger: logger}
}

// Quote returns the fee the source router charges to relay req.
// The call is read-only and not retried.
//
// Parameters:
// - ctx: the context for the call.
// - source: the router on the chain the swap is sent from.
// - req: the swap being priced.
//
// Returns:
// - *big.Int: the native fee in wei.
// - error: the transport or contract error, wrapped with context.
func (q *FeeQuoter) Quote(ctx context.Context, source types.FeeQuoter, req *types.SwapRequest) (*big.Int, error) {
	fee, err := source.QuoteLayerZeroFee(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to quote bridge fee")
	}

	q.logger.WithFields(logrus.Fields{
		"dst_chain_id": req.DstBridgeChainID,
		"fee":          fee.String(),
	}).Debug("Quoted bridge fee")
	return fee, nil
}
