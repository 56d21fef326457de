package worker

import (
	"context"
	"testing"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		fallback types.FailureKind
		kind     types.FailureKind
	}{
		{"gate", errors.Wrap(commonerrors.ErrGateTimeout, "x"), types.GateTimeout, types.GateTimeout},
		{"approval timeout", errors.Wrap(commonerrors.ErrApprovalTimeout, "x"), types.ApprovalFailed, types.ApprovalTimeout},
		{"approval submit", errors.New("execution reverted"), types.ApprovalFailed, types.ApprovalFailed},
		{"zero", errors.Wrap(commonerrors.ErrZeroAmount, "x"), types.ZeroAmount, types.ZeroAmount},
		{"native fee", errors.Wrap(commonerrors.ErrInsufficientNativeFee, "x"), types.RPCError, types.InsufficientFunds},
		{"gas funds", errors.New("insufficient funds for gas * price + value"), types.RPCError, types.InsufficientFunds},
		{"revert", errors.Wrap(errors.New("execution reverted: boom"), "failed to estimate gas"), types.RPCError, types.Reverted},
		{"settlement", errors.Wrap(commonerrors.ErrSettlementTimeout, "x"), types.SettlementTimeout, types.SettlementTimeout},
		{"config", errors.Wrap(commonerrors.ErrChainNotFound, "bsc"), types.RPCError, types.ConfigError},
		{"token", errors.Wrap(commonerrors.ErrTokenNotSupported, "USDT"), types.RPCError, types.ConfigError},
		{"transport", errors.New("dial tcp: i/o timeout"), types.RPCError, types.RPCError},
		{"no fallback", errors.New("boom"), "", types.RPCError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, kind := classify(context.Background(), tc.err, tc.fallback)
			assert.Equal(t, types.HopFailed, status)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestClassifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, kind := classify(ctx, errors.New("anything"), types.RPCError)
	assert.Equal(t, types.HopCancelled, status)
	assert.Equal(t, types.Cancelled, kind)

	status, _ = classify(context.Background(), errors.Wrap(context.Canceled, "read"), types.RPCError)
	assert.Equal(t, types.HopCancelled, status)
}
