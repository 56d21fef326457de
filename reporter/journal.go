package reporter

import (
	"context"

	"github.com/ClipFinance/relay-cycler/common/types"
)

// HopJournal persists hop outcomes.
type HopJournal interface {
	InsertHop(ctx context.Context, result *types.HopResult) error
}

// JournalReporter writes each hop outcome to a journal. Transactions are recorded with their hop.
type JournalReporter struct {
	journal HopJournal
}

// NewJournalReporter creates a new JournalReporter.
func NewJournalReporter(journal HopJournal) *JournalReporter {
	return &JournalReporter{journal: journal}
}

func (r *JournalReporter) ReportTx(context.Context, TxEvent) error {
	return nil
}

func (r *JournalReporter) ReportHop(ctx context.Context, result *types.HopResult) error {
	return r.journal.InsertHop(ctx, result)
}
