package models

import (
	"time"
)

type HopRecord struct {
	ID           int64     `json:"id,omitempty"`
	RunID        string    `json:"run_id"`
	Wallet       string    `json:"wallet"`
	Cycle        int       `json:"cycle"`
	HopIndex     int       `json:"hop_index"`
	FromChain    string    `json:"from_chain"`
	ToChain      string    `json:"to_chain"`
	FromToken    string    `json:"from_token"`
	ToToken      string    `json:"to_token"`
	Status       string    `json:"status"`
	FailureKind  string    `json:"failure_kind,omitempty"`
	Error        string    `json:"error,omitempty"`
	Amount       string    `json:"amount,omitempty"`
	MinAmountOut string    `json:"min_amount_out,omitempty"`
	ApproveTx    string    `json:"approve_tx,omitempty"`
	SwapTx       string    `json:"swap_tx,omitempty"`
	SwapTxURL    string    `json:"swap_tx_url,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}
