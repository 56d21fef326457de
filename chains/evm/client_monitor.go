package evm

import (
	"context"

	"github.com/ClipFinance/relay-cycler/connectionmonitor"
)

// evmConnectionManager implements the BlockchainClient interface and manages the connection to the EVM chain.
type evmConnectionManager struct {
	chain *evm // Reference to the EVM chain instance.
}

// initMonitor initializes the connection monitor for the EVM chain.
func (e *evm) initMonitor(ctx context.Context, observer connectionmonitor.StatusObserver) error {
	e.monitorMutex.Lock()
	defer e.monitorMutex.Unlock()

	connectionManager := &evmConnectionManager{chain: e}
	e.monitor = connectionmonitor.NewConnectionMonitor(connectionManager, e.logger, e.config.Name, observer)
	return e.monitor.Start(ctx)
}

// CheckConnection checks the connection to the Ethereum client by retrieving the current block number.
func (w *evmConnectionManager) CheckConnection(ctx context.Context) error {
	client, err := w.chain.getClient()
	if err != nil {
		return err
	}

	_, err = client.BlockNumber(ctx)
	return err
}

// Reconnect re-establishes the connection to the Ethereum client.
// Workers pick up the new client on their next call since every call reads it under the mutex.
func (w *evmConnectionManager) Reconnect(ctx context.Context) error {
	client, err := w.chain.dial(w.chain.config.RpcUrl)
	if err != nil {
		return err
	}

	w.chain.clientMutex.Lock()
	old := w.chain.client
	w.chain.client = client
	w.chain.clientMutex.Unlock()

	if old != nil {
		old.Close()
	}

	return nil
}
