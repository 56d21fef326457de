package evm

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ClipFinance/relay-cycler/chains/evm/generated"
	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usdc   = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	router = "0x45A01E4e04F14f7A4a6702c74187c5F6222033cd"
	holder = "0x1111111111111111111111111111111111111111"
)

// fakeClient answers contract calls by method name and records sent transactions.
type fakeClient struct {
	mu       sync.Mutex
	native   *big.Int
	outputs  map[string][]interface{}
	nonce    uint64
	gas      uint64
	gasPrice *big.Int
	tip      *big.Int
	baseFee  *big.Int
	sendErr  error
	sent     []*ethtypes.Transaction
	closed   bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		native:   big.NewInt(0),
		outputs:  make(map[string][]interface{}),
		gas:      100_000,
		gasPrice: big.NewInt(30_000_000_000),
		tip:      big.NewInt(2_000_000_000),
		baseFee:  big.NewInt(10_000_000_000),
	}
}

func (f *fakeClient) BlockNumber(context.Context) (uint64, error) { return 1, nil }

func (f *fakeClient) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.native, nil
}

func (f *fakeClient) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := lookupMethod(msg.Data)
	if err != nil {
		return nil, err
	}
	values, ok := f.outputs[method.Name]
	if !ok {
		return nil, nil
	}
	return method.Outputs.Pack(values...)
}

func (f *fakeClient) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeClient) SuggestGasPrice(context.Context) (*big.Int, error) { return f.gasPrice, nil }

func (f *fakeClient) SuggestGasTipCap(context.Context) (*big.Int, error) { return f.tip, nil }

func (f *fakeClient) HeaderByNumber(context.Context, *big.Int) (*ethtypes.Header, error) {
	return &ethtypes.Header{BaseFee: f.baseFee}, nil
}

func (f *fakeClient) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return f.gas, nil }

func (f *fakeClient) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func lookupMethod(data []byte) (*abi.Method, error) {
	tokenAbi, err := generated.ERC20()
	if err != nil {
		return nil, err
	}
	if m, err := tokenAbi.MethodById(data); err == nil {
		return m, nil
	}
	routerAbi, err := generated.Router()
	if err != nil {
		return nil, err
	}
	return routerAbi.MethodById(data)
}

func newTestChain(t *testing.T, txType uint64, routerAddress string) (*evm, *fakeClient) {
	logger, _ := test.NewNullLogger()
	client := newFakeClient()
	config := &types.ChainConfig{
		Name:          "polygon",
		ChainID:       137,
		BridgeChainID: 109,
		TxType:        txType,
		RouterAddress: routerAddress,
		Tokens:        map[types.TokenKind]string{types.USDC: usdc},
		ExplorerURL:   "https://polygonscan.com",
	}
	return newEvm(config, logger, client), client
}

func newTestSigner(t *testing.T) signer.Signer {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := signer.NewSigner(key)
	require.NoError(t, err)
	return s
}

func TestTokenReads(t *testing.T) {
	chain, client := newTestChain(t, TxTypeLegacy, router)
	client.native = big.NewInt(5)
	client.outputs["balanceOf"] = []interface{}{big.NewInt(300_000_000)}
	client.outputs["allowance"] = []interface{}{big.NewInt(42)}
	client.outputs["decimals"] = []interface{}{uint8(6)}
	ctx := context.Background()

	native, err := chain.GetTokenBalance(ctx, holder, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), native.Int64())

	native, err = chain.GetTokenBalance(ctx, holder, common.Address{}.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(5), native.Int64())

	balance, err := chain.GetTokenBalance(ctx, holder, usdc)
	require.NoError(t, err)
	assert.Equal(t, int64(300_000_000), balance.Int64())

	allowance, err := chain.Allowance(ctx, usdc, holder, router)
	require.NoError(t, err)
	assert.Equal(t, int64(42), allowance.Int64())

	decimals, err := chain.Decimals(ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)
}

func TestTokenReadEmptyResult(t *testing.T) {
	chain, _ := newTestChain(t, TxTypeLegacy, router)

	_, err := chain.GetTokenBalance(context.Background(), holder, usdc)
	assert.ErrorContains(t, err, "empty result from balanceOf call")
}

func TestQuoteLayerZeroFee(t *testing.T) {
	chain, client := newTestChain(t, TxTypeLegacy, router)
	client.outputs["quoteLayerZeroFee"] = []interface{}{big.NewInt(1_500_000), big.NewInt(0)}

	fee, err := chain.QuoteLayerZeroFee(context.Background(), &types.SwapRequest{
		DstBridgeChainID: 112,
		Recipient:        holder,
		LzTxParams:       types.DefaultLzTxParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), fee.Int64())
}

func TestApproveLegacy(t *testing.T) {
	chain, client := newTestChain(t, TxTypeLegacy, router)
	client.nonce = 7
	s := newTestSigner(t)

	tx, err := chain.Approve(context.Background(), s, usdc, router, big.NewInt(1000))
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	sent := client.sent[0]
	assert.Equal(t, uint8(ethtypes.LegacyTxType), sent.Type())
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, uint64(110_000), sent.Gas())
	assert.Equal(t, client.gasPrice, sent.GasPrice())
	assert.Equal(t, common.HexToAddress(usdc), *sent.To())

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(big.NewInt(137)), sent)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), from)

	assert.Equal(t, sent.Hash().Hex(), tx.Hash)
	assert.Equal(t, s.Address().Hex(), tx.From)
	assert.Equal(t, "polygon", tx.Chain)
	assert.Equal(t, "https://polygonscan.com/tx/"+tx.Hash, tx.URL)
	assert.Equal(t, uint64(7), tx.Nonce)
}

func TestSwapEIP1559(t *testing.T) {
	chain, client := newTestChain(t, TxTypeEIP1559, router)
	chain.config.GasMultiplier = 1.5
	s := newTestSigner(t)
	fee := big.NewInt(1_500_000)

	req := &types.SwapRequest{
		DstBridgeChainID: 112,
		SrcPoolID:        1,
		DstPoolID:        1,
		RefundAddress:    s.Address().Hex(),
		Recipient:        s.Address().Hex(),
		AmountIn:         big.NewInt(300_000_000),
		MinAmountOut:     big.NewInt(298_500_000),
		LzTxParams:       types.DefaultLzTxParams(),
	}
	tx, err := chain.Swap(context.Background(), s, req, fee)
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	sent := client.sent[0]
	assert.Equal(t, uint8(ethtypes.DynamicFeeTxType), sent.Type())
	assert.Equal(t, uint64(150_000), sent.Gas())
	assert.Equal(t, fee, sent.Value())
	assert.Equal(t, common.HexToAddress(router), *sent.To())
	assert.Equal(t, client.tip, sent.GasTipCap())
	// 130% of the base fee plus the tip
	assert.Equal(t, big.NewInt(15_000_000_000), sent.GasFeeCap())

	method, err := lookupMethod(sent.Data())
	require.NoError(t, err)
	assert.Equal(t, "swap", method.Name)
	assert.Equal(t, fee, tx.Value)
}

func TestSendFailure(t *testing.T) {
	chain, client := newTestChain(t, TxTypeLegacy, router)
	client.sendErr = errors.New("insufficient funds for gas * price + value")

	_, err := chain.Approve(context.Background(), newTestSigner(t), usdc, router, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestBuildWithoutRouterIsReadOnly(t *testing.T) {
	chain, client := newTestChain(t, TxTypeLegacy, "")
	client.outputs["decimals"] = []interface{}{uint8(6)}
	built := chain.build()

	decimals, err := built.Decimals(context.Background(), usdc)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	_, err = built.QuoteLayerZeroFee(context.Background(), &types.SwapRequest{})
	assert.True(t, errors.Is(err, commonerrors.ErrNotImplemented))
	_, err = built.Swap(context.Background(), newTestSigner(t), &types.SwapRequest{}, big.NewInt(0))
	assert.True(t, errors.Is(err, commonerrors.ErrNotImplemented))
}

func TestCloseReleasesClient(t *testing.T) {
	chain, client := newTestChain(t, TxTypeLegacy, router)
	built := chain.build()

	built.Close()
	assert.True(t, client.closed)

	_, err := chain.GetTokenBalance(context.Background(), holder, "")
	assert.ErrorContains(t, err, "client not initialized")
}
