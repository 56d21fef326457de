package worker

import (
	"context"
	"strings"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
)

// classify maps a hop error to its status and failure kind.
// Known causes win over the stage fallback; node messages are inspected last.
func classify(ctx context.Context, err error, fallback types.FailureKind) (types.HopStatus, types.FailureKind) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return types.HopCancelled, types.Cancelled
	}

	switch errors.Cause(err) {
	case commonerrors.ErrGateTimeout:
		return types.HopFailed, types.GateTimeout
	case commonerrors.ErrApprovalTimeout:
		return types.HopFailed, types.ApprovalTimeout
	case commonerrors.ErrZeroAmount:
		return types.HopFailed, types.ZeroAmount
	case commonerrors.ErrInsufficientNativeFee:
		return types.HopFailed, types.InsufficientFunds
	case commonerrors.ErrSettlementTimeout:
		return types.HopFailed, types.SettlementTimeout
	case commonerrors.ErrChainNotFound,
		commonerrors.ErrTokenNotSupported,
		commonerrors.ErrInvalidConfig,
		commonerrors.ErrNotImplemented:
		return types.HopFailed, types.ConfigError
	}

	if fallback == types.ApprovalFailed {
		return types.HopFailed, types.ApprovalFailed
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return types.HopFailed, types.InsufficientFunds
	case strings.Contains(msg, "execution reverted"):
		return types.HopFailed, types.Reverted
	}

	if fallback == "" {
		fallback = types.RPCError
	}
	return types.HopFailed, fallback
}
