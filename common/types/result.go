package types

import (
	"time"
)

// HopResult is the outcome of one hop attempt for one wallet.
type HopResult struct {
	RunID      string
	Wallet     string
	Cycle      int
	Index      int
	Hop        Hop
	Status     HopStatus
	Kind       FailureKind
	Err        string
	Intent     *TransferIntent
	ApproveTx  *Transaction
	SwapTx     *Transaction
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the hop was abandoned.
func (r *HopResult) Failed() bool {
	return r.Status != HopDone
}

// Summary aggregates the hop results of one wallet.
type Summary struct {
	Wallet    string
	Done      bool
	Succeeded int
	Failed    int
	Results   []*HopResult
}
