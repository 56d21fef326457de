package worker

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ClipFinance/relay-cycler/allowance"
	"github.com/ClipFinance/relay-cycler/bridge"
	"github.com/ClipFinance/relay-cycler/chainmanager"
	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/internal/memchain"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	polygonUSDC = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	fantomUSDC  = "0x04068DA6C83AFCFA0e13ba15A6696662335D5B75"
)

var (
	polygon = &types.ChainConfig{
		Name:          "polygon",
		ChainType:     types.EVM,
		ChainID:       137,
		BridgeChainID: 109,
		RouterAddress: "0x45A01E4e04F14f7A4a6702c74187c5F6222033cd",
		Tokens:        map[types.TokenKind]string{types.USDC: polygonUSDC},
		ExplorerURL:   "https://polygonscan.com",
	}
	fantom = &types.ChainConfig{
		Name:          "fantom",
		ChainType:     types.EVM,
		ChainID:       250,
		BridgeChainID: 112,
		RouterAddress: "0xAf5191B0De278C7286d6C7CC6ab6BB8A73bA2Cd6",
		Tokens:        map[types.TokenKind]string{types.USDC: fantomUSDC},
		ExplorerURL:   "https://ftmscan.com",
	}

	toFantom = types.Hop{
		From:      "polygon",
		To:        "fantom",
		FromToken: types.USDC,
		ToToken:   types.USDC,
		Amount:    "300",
		Cooldown:  types.DelayRange{Min: 1200 * time.Second, Max: 1500 * time.Second},
		FromLabel: "POLYGON",
		ToLabel:   "FANTOM",
	}
	toPolygon = types.Hop{
		From:      "fantom",
		To:        "polygon",
		FromToken: types.USDC,
		ToToken:   types.USDC,
		Amount:    "300",
		Cooldown:  types.DelayRange{Min: 100 * time.Second, Max: 300 * time.Second},
		FromLabel: "FANTOM",
		ToLabel:   "POLYGON",
	}
)

type recorder struct {
	mu   sync.Mutex
	txs  []reporter.TxEvent
	hops []*types.HopResult
}

func (r *recorder) ReportTx(_ context.Context, event reporter.TxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, event)
	return nil
}

func (r *recorder) ReportHop(_ context.Context, result *types.HopResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hops = append(r.hops, result)
	return nil
}

type fixture struct {
	ledger   *memchain.Ledger
	registry types.ChainRegistry
	wallet   *types.Wallet
	rec      *recorder
	sleeps   []time.Duration
}

func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000))
}

func newFixture(t *testing.T) *fixture {
	logger, _ := test.NewNullLogger()
	ledger := memchain.NewLedger()
	registry := chainmanager.NewChainRegistry(ledger, logger)
	require.NoError(t, registry.Add(context.Background(), polygon))
	require.NoError(t, registry.Add(context.Background(), fantom))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := signer.NewSigner(key)
	require.NoError(t, err)
	wallet := types.NewWallet(s)

	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	ledger.SetBalance("polygon", "", wallet.Address(), oneEther)
	ledger.SetBalance("fantom", "", wallet.Address(), oneEther)
	for _, name := range []string{"polygon", "fantom"} {
		c, _ := ledger.Chain(name)
		c.Fee = big.NewInt(1_000)
	}

	return &fixture{ledger: ledger, registry: registry, wallet: wallet, rec: &recorder{}}
}

func (f *fixture) chain(name string) *memchain.Chain {
	c, _ := f.ledger.Chain(name)
	return c
}

func (f *fixture) worker(itinerary []types.Hop, cycles int) *Worker {
	logger, _ := test.NewNullLogger()
	fast := watcher.Options{Interval: time.Millisecond, MaxWait: 30 * time.Millisecond}

	w := New(f.wallet, itinerary, Options{
		RunID:       "test-run",
		Cycles:      cycles,
		StartDelay:  types.DelayRange{Min: time.Second, Max: 200 * time.Second},
		SlippageBps: 50,
		Gate:        fast,
		Settlement:  fast,
	}, Deps{
		Registry: f.registry,
		Allowance: allowance.NewManager(logger, allowance.Options{
			SettleDelay:  time.Millisecond,
			PollInterval: time.Millisecond,
			Timeout:      30 * time.Millisecond,
		}),
		Executor: bridge.NewExecutor(logger, bridge.NewFeeQuoter(logger)),
		Watcher:  watcher.NewBalanceWatcher(logger),
		Reporter: f.rec,
		Logger:   logger,
	})

	w.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	w.randN = func(n int64) int64 { return n - 1 }
	return w
}

func TestRunRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))

	summary := f.worker([]types.Hop{toFantom, toPolygon}, 1).Run(context.Background())

	require.True(t, summary.Done)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 2)

	first := summary.Results[0]
	assert.Equal(t, types.HopDone, first.Status)
	assert.Equal(t, "300000000", first.Intent.Amount.String())
	assert.Equal(t, "298500000", first.Intent.MinAmountOut.String())
	assert.False(t, first.Intent.Fallback)
	require.NotNil(t, first.ApproveTx)
	require.NotNil(t, first.SwapTx)
	assert.Contains(t, first.SwapTx.URL, "https://polygonscan.com/tx/0x")

	assert.Equal(t, "1000000000", f.ledger.Balance("polygon", polygonUSDC, f.wallet.Address()).String())
	assert.Equal(t, "0", f.ledger.Balance("fantom", fantomUSDC, f.wallet.Address()).String())

	assert.Equal(t, []time.Duration{200 * time.Second, 1500 * time.Second}, f.sleeps)

	require.Len(t, f.rec.txs, 4)
	assert.Equal(t, reporter.TxApproval, f.rec.txs[0].Kind)
	assert.Equal(t, reporter.TxSwap, f.rec.txs[1].Kind)
	assert.Equal(t, "polygon", f.rec.txs[1].Tx.Chain)
	assert.Len(t, f.rec.hops, 2)
}

type failingSink struct{}

func (failingSink) ReportTx(context.Context, reporter.TxEvent) error {
	return errors.New("sink down")
}

func (failingSink) ReportHop(context.Context, *types.HopResult) error {
	return errors.New("sink down")
}

func TestRunLogsSinkFailureOnce(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))

	logger, hook := test.NewNullLogger()
	w := f.worker([]types.Hop{toFantom}, 1)
	w.deps.Reporter = reporter.NewMulti(logger, failingSink{})
	w.logger = logger.WithField("wallet", f.wallet.Address())

	summary := w.Run(context.Background())
	require.True(t, summary.Done)
	assert.Equal(t, 1, summary.Succeeded)

	var failures []string
	for _, entry := range hook.AllEntries() {
		if strings.HasPrefix(entry.Message, "Failed to report") {
			failures = append(failures, entry.Message)
		}
	}
	assert.Equal(t, []string{
		"Failed to report transaction",
		"Failed to report transaction",
		"Failed to report hop",
	}, failures)
}

func TestRunFallbackAmount(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(150))

	summary := f.worker([]types.Hop{toFantom}, 1).Run(context.Background())

	require.Len(t, summary.Results, 1)
	result := summary.Results[0]
	require.Equal(t, types.HopDone, result.Status)
	assert.Equal(t, "150000000", result.Intent.Amount.String())
	assert.Equal(t, "149250000", result.Intent.MinAmountOut.String())
	assert.True(t, result.Intent.Fallback)
	assert.Equal(t, []time.Duration{200 * time.Second}, f.sleeps)
}

func TestRunContinuesAfterSwapFailure(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))
	f.ledger.SetBalance("fantom", fantomUSDC, f.wallet.Address(), units(50))
	f.chain("polygon").SwapHook = func(*types.SwapRequest) error {
		return errors.New("execution reverted: Stargate: slippage too high")
	}

	summary := f.worker([]types.Hop{toFantom, toPolygon}, 1).Run(context.Background())

	require.True(t, summary.Done)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)

	first := summary.Results[0]
	assert.Equal(t, types.HopFailed, first.Status)
	assert.Equal(t, types.Reverted, first.Kind)
	assert.Contains(t, first.Err, "execution reverted")
	assert.Nil(t, first.SwapTx)

	second := summary.Results[1]
	assert.Equal(t, types.HopDone, second.Status)
	assert.Equal(t, "50000000", second.Intent.Amount.String())
	assert.Len(t, f.chain("fantom").Swaps(), 1)

	assert.Equal(t, []time.Duration{200 * time.Second, 1500 * time.Second}, f.sleeps)
}

func TestRunGateTimeout(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), big.NewInt(2_999_999))

	summary := f.worker([]types.Hop{toFantom}, 1).Run(context.Background())

	require.Len(t, summary.Results, 1)
	assert.Equal(t, types.GateTimeout, summary.Results[0].Kind)
	assert.Equal(t, 0, f.chain("polygon").Approvals())
	assert.True(t, summary.Done)
}

func TestRunInsufficientNativeFee(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))
	f.chain("polygon").Fee = new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)

	summary := f.worker([]types.Hop{toFantom}, 1).Run(context.Background())

	require.Len(t, summary.Results, 1)
	assert.Equal(t, types.InsufficientFunds, summary.Results[0].Kind)
	assert.Empty(t, f.chain("polygon").Swaps())
}

func TestRunApprovalFailure(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))
	f.chain("polygon").ApproveErr = errors.New("nonce too low")

	summary := f.worker([]types.Hop{toFantom}, 1).Run(context.Background())

	require.Len(t, summary.Results, 1)
	assert.Equal(t, types.ApprovalFailed, summary.Results[0].Kind)
	assert.Empty(t, f.chain("polygon").Swaps())
}

func TestRunUnknownChain(t *testing.T) {
	f := newFixture(t)
	hop := toFantom
	hop.To = "bsc"

	summary := f.worker([]types.Hop{hop}, 1).Run(context.Background())

	require.Len(t, summary.Results, 1)
	assert.Equal(t, types.ConfigError, summary.Results[0].Kind)
}

func TestRunCycles(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))

	summary := f.worker([]types.Hop{toFantom, toPolygon}, 2).Run(context.Background())

	require.True(t, summary.Done)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Results[2].Cycle)
	assert.Equal(t, 0, summary.Results[2].Index)
	assert.Equal(t, 1, f.chain("polygon").Approvals())
	assert.Equal(t, 1, f.chain("fantom").Approvals())
	assert.Len(t, f.sleeps, 4)
}

func TestRunCancelledMidHop(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetBalance("polygon", polygonUSDC, f.wallet.Address(), units(1000))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.chain("polygon").SwapHook = func(*types.SwapRequest) error {
		cancel()
		return context.Canceled
	}

	summary := f.worker([]types.Hop{toFantom, toPolygon}, 1).Run(ctx)

	assert.False(t, summary.Done)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, types.HopCancelled, summary.Results[0].Status)
	assert.Equal(t, types.Cancelled, summary.Results[0].Kind)
	assert.Len(t, f.rec.hops, 1)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := f.worker([]types.Hop{toFantom}, 1).Run(ctx)
	assert.False(t, summary.Done)
	assert.Empty(t, summary.Results)
}
