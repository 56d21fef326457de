package evm

import (
	"context"
	"math/big"
	"sync"

	"github.com/ClipFinance/relay-cycler/chainmanager"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/connectionmonitor"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// TxTypeLegacy represents the legacy transaction type.
	TxTypeLegacy = 0
	// TxTypeEIP1559 represents the EIP-1559 transaction type.
	TxTypeEIP1559 = 2
	// defaultGasMultiplier is applied to estimated gas when the config leaves it unset.
	defaultGasMultiplier = 1.1
)

// rpcClient is the subset of *ethclient.Client the endpoint relies on.
type rpcClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	Close()
}

// dialFunc opens a new RPC client for url.
type dialFunc func(url string) (rpcClient, error)

func dialEthclient(url string) (rpcClient, error) {
	return ethclient.Dial(url)
}

// evm represents one EVM chain endpoint shared by every wallet worker.
type evm struct {
	config *types.ChainConfig // Chain configuration.
	logger *logrus.Logger     // Logger for logging events.
	dial   dialFunc           // Dialer used on reconnect.

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex // Mutex for client.
	client      rpcClient    // Ethereum client.

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.
}

// NewEvmChain dials the chain's RPC endpoint and assembles a chain instance.
// A chain without a router address is read-only: fee quotes and swaps return ErrNotImplemented.
//
// Parameters:
// - ctx: the context bounding the connection monitor.
// - config: the chain configuration.
// - logger: the logger for logging events.
// - observer: optional connection health callback, may be nil.
//
// Returns:
// - types.Chain: a new EVM chain instance.
// - error: an error if any issue occurs during creation.
func NewEvmChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger, observer connectionmonitor.StatusObserver) (types.Chain, error) {
	client, err := dialEthclient(config.RpcUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create client for %s", config.Name)
	}

	chain := newEvm(config, logger, client)
	chain.dial = dialEthclient

	if err := chain.initMonitor(ctx, observer); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	return chain.build(), nil
}

// newEvm wires an endpoint around an existing client.
func newEvm(config *types.ChainConfig, logger *logrus.Logger, client rpcClient) *evm {
	return &evm{
		config: config,
		logger: logger,
		client: client,
		dial:   dialEthclient,
	}
}

// build assembles the composite chain from the capabilities this endpoint can serve.
func (e *evm) build() types.Chain {
	builder := chainmanager.NewChainBuilder(e.config).
		WithTokenReader(e).
		WithTokenApprover(e).
		WithCloser(e.Close)

	if e.config.RouterAddress != "" {
		builder.WithFeeQuoter(e).WithBridgeSender(e)
	}

	return builder.Build()
}

// Close should be called when the chain is no longer needed.
// It stops the connection monitor and closes the client.
func (e *evm) Close() {
	e.monitorMutex.Lock()
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.monitorMutex.Unlock()

	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.clientMutex.Unlock()
}

// getClient returns the current client or an error once the endpoint is closed.
func (e *evm) getClient() (rpcClient, error) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	if e.client == nil {
		return nil, errors.New("client not initialized")
	}
	return e.client, nil
}

func (e *evm) log() *logrus.Entry {
	return e.logger.WithField("chain", e.config.Name)
}
