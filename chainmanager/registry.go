package chainmanager

import (
	"context"
	"sort"
	"sync"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ChainFactory creates chain endpoints from configuration.
type ChainFactory interface {
	CreateChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error)
}

type blockchainRegistry struct {
	logger      *logrus.Logger
	chains      map[string]types.Chain
	chainsMutex sync.RWMutex
	factory     ChainFactory
}

// NewChainRegistry creates a registry that builds its endpoints with factory.
func NewChainRegistry(factory ChainFactory, logger *logrus.Logger) types.ChainRegistry {
	return &blockchainRegistry{
		chains:  make(map[string]types.Chain),
		factory: factory,
		logger:  logger,
	}
}

func (r *blockchainRegistry) Add(ctx context.Context, config *types.ChainConfig) error {
	if r.factory == nil {
		return commonerrors.ErrFactoryNotProvided
	}

	r.chainsMutex.RLock()
	_, exists := r.chains[config.Name]
	r.chainsMutex.RUnlock()
	if exists {
		return errors.Wrap(commonerrors.ErrChainExists, config.Name)
	}

	chain, err := r.factory.CreateChain(ctx, config, r.logger)
	if err != nil {
		return err
	}

	r.chainsMutex.Lock()
	r.chains[config.Name] = chain
	r.chainsMutex.Unlock()

	r.logger.WithFields(logrus.Fields{
		"chain":         config.Name,
		"chainId":       config.ChainID,
		"bridgeChainId": config.BridgeChainID,
	}).Info("Chain endpoint registered")

	return nil
}

func (r *blockchainRegistry) Get(name string) (types.Chain, error) {
	r.chainsMutex.RLock()
	chain, ok := r.chains[name]
	r.chainsMutex.RUnlock()

	if !ok {
		return nil, errors.Wrap(commonerrors.ErrChainNotFound, name)
	}
	return chain, nil
}

func (r *blockchainRegistry) Names() []string {
	r.chainsMutex.RLock()
	defer r.chainsMutex.RUnlock()

	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *blockchainRegistry) Close() {
	r.chainsMutex.Lock()
	defer r.chainsMutex.Unlock()

	for name, chain := range r.chains {
		chain.Close()
		delete(r.chains, name)
	}
}
