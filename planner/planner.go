// Package planner decides how much a hop sends and the minimum it accepts on arrival.
package planner

import (
	"math"
	"math/big"
	"strings"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
)

// BpsDenominator is the number of basis points in one whole.
const BpsDenominator = 10000

// Plan returns the amount to send and the minimum accepted amount for a hop.
// The wallet never sends more than balance: when balance is below requested the whole
// balance is sent and the minimum is recomputed from it.
// A non-positive amount returns ErrZeroAmount.
func Plan(requested, balance *big.Int, slippageBps uint64) (*types.TransferIntent, error) {
	if requested == nil || balance == nil {
		return nil, errors.New("requested amount and balance are required")
	}
	if slippageBps >= BpsDenominator {
		return nil, errors.Wrapf(commonerrors.ErrInvalidConfig, "slippage %d bps", slippageBps)
	}

	amount := new(big.Int).Set(requested)
	fallback := false
	if balance.Cmp(requested) < 0 {
		amount.Set(balance)
		fallback = true
	}

	if amount.Sign() <= 0 {
		return nil, errors.Wrapf(commonerrors.ErrZeroAmount, "balance %s, requested %s", balance, requested)
	}

	return &types.TransferIntent{
		Amount:       amount,
		MinAmountOut: MinAmountOut(amount, slippageBps),
		Fallback:     fallback,
	}, nil
}

// MinAmountOut returns amount reduced by slippageBps, rounded down.
func MinAmountOut(amount *big.Int, slippageBps uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(BpsDenominator-slippageBps))
	return out.Quo(out, big.NewInt(BpsDenominator))
}

// SlippageToBps converts a fraction such as 0.005 into basis points.
// The fraction must be a whole number of basis points.
func SlippageToBps(fraction float64) (uint64, error) {
	if fraction < 0 || fraction >= 1 || math.IsNaN(fraction) {
		return 0, errors.Wrapf(commonerrors.ErrInvalidConfig, "slippage %v must be in [0, 1)", fraction)
	}
	bps := uint64(math.Round(fraction * BpsDenominator))
	if float64(bps)/BpsDenominator != fraction {
		return 0, errors.Wrapf(commonerrors.ErrInvalidConfig, "slippage %v is not a whole number of basis points", fraction)
	}
	return bps, nil
}

// ToRaw converts a decimal amount in whole token units ("300", "12.5") to raw units.
// Digits beyond the token's precision are truncated.
func ToRaw(units string, decimals uint8) (*big.Int, error) {
	units = strings.TrimSpace(units)
	r, ok := new(big.Rat).SetString(units)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", units)
	}
	if r.Sign() < 0 {
		return nil, errors.Errorf("negative amount %q", units)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	return new(big.Int).Quo(r.Num(), r.Denom()), nil
}

// FromRaw formats a raw token amount in whole units with trailing zeros trimmed.
func FromRaw(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	s := new(big.Rat).SetFrac(raw, pow10(decimals)).FloatString(int(decimals))
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// Rescale converts a raw amount between token precisions, rounding down.
func Rescale(raw *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	out := new(big.Int).Set(raw)
	switch {
	case toDecimals > fromDecimals:
		out.Mul(out, pow10(toDecimals-fromDecimals))
	case fromDecimals > toDecimals:
		out.Quo(out, pow10(fromDecimals-toDecimals))
	}
	return out
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
