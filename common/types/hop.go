package types

import (
	"fmt"
	"math/big"
	"time"
)

// DefaultPoolIDs holds the router pool id for each token kind.
var DefaultPoolIDs = map[TokenKind]uint64{
	USDC: 1,
	USDT: 2,
}

// DelayRange is an inclusive range for randomized pacing.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// Hop is one source-chain to destination-chain transfer leg.
// Amount is the requested transfer in whole token units, e.g. "300".
type Hop struct {
	From      string
	To        string
	FromToken TokenKind
	ToToken   TokenKind
	SrcPoolID uint64
	DstPoolID uint64
	Amount    string
	Cooldown  DelayRange
	FromLabel string
	ToLabel   string
}

// String renders the hop's direction labels.
func (h Hop) String() string {
	token := h.FromToken.String()
	if h.ToToken != h.FromToken {
		token = fmt.Sprintf("%s->%s", h.FromToken, h.ToToken)
	}
	return fmt.Sprintf("%s -> %s | %s", h.FromLabel, h.ToLabel, token)
}

// Pools returns the source and destination pool ids, falling back to the token kind defaults.
func (h Hop) Pools() (uint64, uint64) {
	src, dst := h.SrcPoolID, h.DstPoolID
	if src == 0 {
		src = DefaultPoolIDs[h.FromToken]
	}
	if dst == 0 {
		dst = DefaultPoolIDs[h.ToToken]
	}
	return src, dst
}

// TransferIntent is the amount decision for one hop attempt.
type TransferIntent struct {
	Amount       *big.Int
	MinAmountOut *big.Int
	// Fallback is set when the live balance was below the requested amount.
	Fallback bool
}
