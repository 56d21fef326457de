package bridge

import (
	"context"
	"math/big"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Source is the subset of a chain endpoint a swap is sent from.
type Source interface {
	types.BalanceProvider
	types.FeeQuoter
	types.BridgeSender
}

// Executor submits bridge transfers.
type Executor struct {
	logger *logrus.Logger
	quoter *FeeQuoter
}

// NewExecutor creates a new Executor.
func NewExecutor(logger *logrus.Logger, quoter *FeeQuoter) *Executor {
	return &Executor{logger: logger, quoter: quoter}
}

// NewSwapRequest builds the router parameters for moving intent from wallet on hop's source to
// the same wallet on destination.
func NewSwapRequest(destination *types.ChainConfig, hop types.Hop, wallet string, intent *types.TransferIntent) *types.SwapRequest {
	srcPool, dstPool := hop.Pools()
	return &types.SwapRequest{
		DstBridgeChainID: destination.BridgeChainID,
		SrcPoolID:        srcPool,
		DstPoolID:        dstPool,
		RefundAddress:    wallet,
		Recipient:        wallet,
		AmountIn:         intent.Amount,
		MinAmountOut:     intent.MinAmountOut,
		LzTxParams:       types.DefaultLzTxParams(),
		Payload:          []byte{},
	}
}

// Execute quotes the fee and submits the swap for intent. It returns once the node accepts
// the transaction; settlement is observed separately on the destination chain.
//
// Parameters:
// - ctx: the context for the operation.
// - source: the endpoint the swap is sent from.
// - destination: the configuration of the receiving chain.
// - wallet: the sending and receiving wallet.
// - intent: the amount decision.
// - hop: the hop being executed, for pool ids.
//
// Returns:
// - *types.Transaction: the submitted swap.
// - error: ErrInsufficientNativeFee, or a quoting, estimation, signing or sending error.
func (x *Executor) Execute(
	ctx context.Context,
	source Source,
	destination *types.ChainConfig,
	wallet *types.Wallet,
	intent *types.TransferIntent,
	hop types.Hop,
) (*types.Transaction, error) {
	req := NewSwapRequest(destination, hop, wallet.Address(), intent)

	fee, err := x.quoter.Quote(ctx, source, req)
	if err != nil {
		return nil, err
	}

	native, err := source.GetTokenBalance(ctx, wallet.Address(), "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read native balance")
	}
	if native.Cmp(fee) < 0 {
		return nil, errors.Wrapf(commonerrors.ErrInsufficientNativeFee, "balance %s, fee %s", native, fee)
	}

	tx, err := source.Swap(ctx, wallet.Signer, req, new(big.Int).Set(fee))
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit swap")
	}

	x.logger.WithFields(logrus.Fields{
		"hop":    hop.String(),
		"wallet": wallet.Address(),
		"amount": intent.Amount.String(),
		"fee":    fee.String(),
		"tx":     tx.Hash,
	}).Debug("Swap submitted")
	return tx, nil
}
