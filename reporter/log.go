package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/sirupsen/logrus"
)

// LogReporter writes one console line per transaction and per hop outcome.
type LogReporter struct {
	logger *logrus.Logger
}

// NewLogReporter creates a new LogReporter.
func NewLogReporter(logger *logrus.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// FormatTx renders the console line of a transaction.
//
//	swap:     "<FROM> -> <TO> | <TOKEN> | <wallet> | <explorer>/tx/<hash>"
//	approval: "<CHAIN> | <TOKEN> APPROVED | <explorer>/tx/<hash>"
func FormatTx(event TxEvent) string {
	url := event.Tx.URL
	if url == "" {
		url = event.Tx.Hash
	}
	if event.Kind == TxApproval {
		return fmt.Sprintf("%s | %s APPROVED | %s", event.Hop.FromLabel, event.Hop.FromToken, url)
	}
	return fmt.Sprintf("%s | %s | %s", event.Hop.String(), event.Wallet, url)
}

func (r *LogReporter) ReportTx(_ context.Context, event TxEvent) error {
	r.logger.Info(FormatTx(event))
	return nil
}

func (r *LogReporter) ReportHop(_ context.Context, result *types.HopResult) error {
	log := r.logger.WithFields(logrus.Fields{
		"wallet": result.Wallet,
		"cycle":  result.Cycle,
		"hop":    result.Index,
		"status": result.Status,
	})

	if !result.Failed() {
		log.Infof("%s | %s | settled in %s", result.Hop.String(), result.Wallet, result.FinishedAt.Sub(result.StartedAt).Round(time.Second))
		return nil
	}

	log.WithField("kind", result.Kind).Warnf("%s | %s | %s", result.Hop.String(), result.Wallet, result.Err)
	return nil
}
