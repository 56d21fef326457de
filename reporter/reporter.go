// Package reporter publishes transaction and hop outcomes to the console and optional sinks.
package reporter

import (
	"context"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/sirupsen/logrus"
)

// TxKind distinguishes the transactions a hop submits.
type TxKind string

const (
	TxApproval TxKind = "APPROVAL"
	TxSwap     TxKind = "SWAP"
)

// TxEvent describes one submitted transaction.
type TxEvent struct {
	Kind   TxKind
	Hop    types.Hop
	Wallet string
	Tx     *types.Transaction
}

// Reporter receives workflow events. Implementations must be safe for concurrent use.
type Reporter interface {
	// ReportTx is called once per submitted transaction.
	ReportTx(ctx context.Context, event TxEvent) error
	// ReportHop is called once per finished hop attempt.
	ReportHop(ctx context.Context, result *types.HopResult) error
}

type multi struct {
	reporters []Reporter
	logger    *logrus.Logger
}

// NewMulti fans events out to every reporter. A failing sink is logged and does not stop the others.
func NewMulti(logger *logrus.Logger, reporters ...Reporter) Reporter {
	return &multi{reporters: reporters, logger: logger}
}

func (m *multi) ReportTx(ctx context.Context, event TxEvent) error {
	var first error
	for _, r := range m.reporters {
		if err := r.ReportTx(ctx, event); err != nil {
			m.logger.WithError(err).WithField("tx", event.Tx.Hash).Warn("Failed to report transaction")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (m *multi) ReportHop(ctx context.Context, result *types.HopResult) error {
	var first error
	for _, r := range m.reporters {
		if err := r.ReportHop(ctx, result); err != nil {
			m.logger.WithError(err).WithField("hop", result.Hop.String()).Warn("Failed to report hop")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
