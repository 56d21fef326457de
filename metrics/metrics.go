// Package metrics exposes prometheus collectors for the cycler and records workflow events in them.
package metrics

import (
	"context"
	"sort"
	"sync"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the cycler collectors registered on one registry.
type Metrics struct {
	// HopsTotal counts finished hops per status and failure kind
	HopsTotal *prometheus.CounterVec
	// TxsTotal counts submitted transactions per chain and kind
	TxsTotal *prometheus.CounterVec
	// HopDuration tracks how long settled hops took end to end
	HopDuration *prometheus.HistogramVec
	// ChainUp reports the last health check result per chain
	ChainUp *prometheus.GaugeVec
	// WalletsActive tracks wallets whose worker is still running
	WalletsActive prometheus.Gauge

	mu     sync.RWMutex
	chains map[string]bool
}

// New registers the cycler collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HopsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cycler_hops_total",
				Help: "Total number of finished hops",
			},
			[]string{"from", "to", "status", "kind"},
		),
		TxsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cycler_transactions_total",
				Help: "Total number of submitted transactions",
			},
			[]string{"chain", "kind"},
		),
		HopDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cycler_hop_duration_seconds",
				Help:    "Time from hop start until destination settlement",
				Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600, 7200},
			},
			[]string{"from", "to"},
		),
		ChainUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cycler_chain_up",
				Help: "Whether the chain RPC endpoint answered the last health check",
			},
			[]string{"chain"},
		),
		WalletsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cycler_wallets_active",
				Help: "Number of wallets currently cycling",
			},
		),
		chains: make(map[string]bool),
	}
}

// ObserveConnection records a chain health check result. It matches connectionmonitor.StatusObserver.
func (m *Metrics) ObserveConnection(chain string, up bool) {
	m.mu.Lock()
	m.chains[chain] = up
	m.mu.Unlock()

	value := 0.0
	if up {
		value = 1
	}
	m.ChainUp.WithLabelValues(chain).Set(value)
}

// ChainStatus returns the last known health of every observed chain, sorted by name.
func (m *Metrics) ChainStatus() []ChainHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ChainHealth, 0, len(m.chains))
	for name, up := range m.chains {
		out = append(out, ChainHealth{Chain: name, Up: up})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chain < out[j].Chain })
	return out
}

// ChainHealth is the health of one chain endpoint.
type ChainHealth struct {
	Chain string `json:"chain"`
	Up    bool   `json:"up"`
}

// ReportTx implements reporter.Reporter.
func (m *Metrics) ReportTx(_ context.Context, event reporter.TxEvent) error {
	m.TxsTotal.WithLabelValues(event.Tx.Chain, string(event.Kind)).Inc()
	return nil
}

// ReportHop implements reporter.Reporter.
func (m *Metrics) ReportHop(_ context.Context, result *types.HopResult) error {
	m.HopsTotal.WithLabelValues(result.Hop.From, result.Hop.To, string(result.Status), string(result.Kind)).Inc()
	if result.Status == types.HopDone {
		m.HopDuration.WithLabelValues(result.Hop.From, result.Hop.To).Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}
	return nil
}
