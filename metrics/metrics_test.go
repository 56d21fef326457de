package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	hop := types.Hop{From: "polygon", To: "fantom"}
	start := time.Now()

	require.NoError(t, m.ReportTx(context.Background(), reporter.TxEvent{Kind: reporter.TxSwap, Hop: hop, Tx: &types.Transaction{Chain: "polygon"}}))
	require.NoError(t, m.ReportHop(context.Background(), &types.HopResult{Hop: hop, Status: types.HopDone, StartedAt: start, FinishedAt: start.Add(time.Minute)}))
	require.NoError(t, m.ReportHop(context.Background(), &types.HopResult{Hop: hop, Status: types.HopFailed, Kind: types.Reverted}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxsTotal.WithLabelValues("polygon", "SWAP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HopsTotal.WithLabelValues("polygon", "fantom", "DONE", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HopsTotal.WithLabelValues("polygon", "fantom", "FAILED", "REVERTED")))
}

func TestHealthEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	router := NewRouter(m, reg)

	m.ObserveConnection("polygon", true)
	m.ObserveConnection("fantom", true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, []ChainHealth{{Chain: "fantom", Up: true}, {Chain: "polygon", Up: true}}, body.Chains)

	m.ObserveConnection("fantom", false)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ChainUp.WithLabelValues("fantom")))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.WalletsActive.Set(3)

	rec := httptest.NewRecorder()
	NewRouter(m, reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cycler_wallets_active 3"))
}
