package orchestrator

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ClipFinance/relay-cycler/allowance"
	"github.com/ClipFinance/relay-cycler/bridge"
	"github.com/ClipFinance/relay-cycler/chainmanager"
	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/internal/memchain"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/ClipFinance/relay-cycler/worker"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	arbitrum = &types.ChainConfig{
		Name:          "arbitrum",
		ChainType:     types.EVM,
		BridgeChainID: 110,
		RouterAddress: "0x53Bf833A5d6c4ddA888F69c22C88C9f356a41614",
		Tokens:        map[types.TokenKind]string{types.USDT: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"},
	}
	optimism = &types.ChainConfig{
		Name:          "optimism",
		ChainType:     types.EVM,
		BridgeChainID: 111,
		RouterAddress: "0xB0D502E938ed5f4df2E681fE6E419ff29631d62b",
		Tokens:        map[types.TokenKind]string{types.USDC: "0x7F5c764cBc14f9669B88837ca1490cCa17c31607"},
	}
	hop = types.Hop{
		From:      "arbitrum",
		To:        "optimism",
		FromToken: types.USDT,
		ToToken:   types.USDC,
		Amount:    "100",
		FromLabel: "ARBITRUM",
		ToLabel:   "OPTIMISM",
	}
)

func setup(t *testing.T, n int) (*memchain.Ledger, worker.Deps, []*types.Wallet) {
	logger, _ := test.NewNullLogger()
	ledger := memchain.NewLedger()
	registry := chainmanager.NewChainRegistry(ledger, logger)
	require.NoError(t, registry.Add(context.Background(), arbitrum))
	require.NoError(t, registry.Add(context.Background(), optimism))

	wallets := make([]*types.Wallet, n)
	for i := range wallets {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		s, err := signer.NewSigner(key)
		require.NoError(t, err)
		wallets[i] = types.NewWallet(s)

		ledger.SetBalance("arbitrum", "", wallets[i].Address(), big.NewInt(1_000_000))
		ledger.SetBalance("arbitrum", arbitrum.Tokens[types.USDT], wallets[i].Address(), big.NewInt(500_000_000))
	}

	deps := worker.Deps{
		Registry: registry,
		Allowance: allowance.NewManager(logger, allowance.Options{
			SettleDelay:  time.Millisecond,
			PollInterval: time.Millisecond,
			Timeout:      50 * time.Millisecond,
		}),
		Executor: bridge.NewExecutor(logger, bridge.NewFeeQuoter(logger)),
		Watcher:  watcher.NewBalanceWatcher(logger),
		Reporter: reporter.NewLogReporter(logger),
		Logger:   logger,
	}
	return ledger, deps, wallets
}

func fastConfig(parallel int) Config {
	fast := watcher.Options{Interval: time.Millisecond, MaxWait: 50 * time.Millisecond}
	return Config{
		MaxParallelWallets: parallel,
		Worker: worker.Options{
			Cycles:      1,
			SlippageBps: 50,
			Gate:        fast,
			Settlement:  fast,
		},
	}
}

func TestRunAllWalletsConcurrently(t *testing.T) {
	ledger, deps, wallets := setup(t, 6)
	active := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_active"})

	summaries, err := New(fastConfig(0), deps, active).Run(context.Background(), wallets, []types.Hop{hop})
	require.NoError(t, err)
	require.Len(t, summaries, len(wallets))

	for i, summary := range summaries {
		require.NotNil(t, summary)
		assert.Equal(t, wallets[i].Address(), summary.Wallet)
		assert.True(t, summary.Done)
		assert.Equal(t, 1, summary.Succeeded)
		assert.Equal(t, types.HopDone, summary.Results[0].Status)
		assert.NotEmpty(t, summary.Results[0].RunID)
		assert.Equal(t, "100000000", ledger.Balance("optimism", optimism.Tokens[types.USDC], wallets[i].Address()).String())
	}

	runID := summaries[0].Results[0].RunID
	for _, summary := range summaries {
		assert.Equal(t, runID, summary.Results[0].RunID)
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(active))
}

func TestRunWithParallelismCap(t *testing.T) {
	_, deps, wallets := setup(t, 4)

	summaries, err := New(fastConfig(2), deps, nil).Run(context.Background(), wallets, []types.Hop{hop})
	require.NoError(t, err)
	for _, summary := range summaries {
		assert.True(t, summary.Done)
	}
}

func TestRunFailuresDoNotFailRun(t *testing.T) {
	ledger, deps, wallets := setup(t, 2)
	ledger.SetBalance("arbitrum", arbitrum.Tokens[types.USDT], wallets[1].Address(), big.NewInt(0))

	summaries, err := New(fastConfig(0), deps, nil).Run(context.Background(), wallets, []types.Hop{hop})
	require.NoError(t, err)

	assert.Equal(t, 1, summaries[0].Succeeded)
	assert.Equal(t, 1, summaries[1].Failed)
	assert.Equal(t, types.GateTimeout, summaries[1].Results[0].Kind)
	assert.True(t, summaries[1].Done)
}

func TestRunValidation(t *testing.T) {
	_, deps, wallets := setup(t, 1)
	o := New(fastConfig(0), deps, nil)

	_, err := o.Run(context.Background(), nil, []types.Hop{hop})
	assert.Equal(t, commonerrors.ErrInvalidWallet, errors.Cause(err))

	_, err = o.Run(context.Background(), wallets, nil)
	assert.Equal(t, commonerrors.ErrInvalidConfig, errors.Cause(err))

	bad := hop
	bad.To = "bsc"
	_, err = o.Run(context.Background(), wallets, []types.Hop{bad})
	assert.Equal(t, commonerrors.ErrChainNotFound, errors.Cause(err))
}
