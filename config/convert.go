package config

import (
	"strings"

	"github.com/ClipFinance/relay-cycler/allowance"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/orchestrator"
	"github.com/ClipFinance/relay-cycler/planner"
	"github.com/ClipFinance/relay-cycler/watcher"
	"github.com/ClipFinance/relay-cycler/worker"
)

// ChainConfigs converts the chain section into endpoint configurations.
func (c *Config) ChainConfigs() []*types.ChainConfig {
	out := make([]*types.ChainConfig, 0, len(c.Chains))
	for _, ch := range c.Chains {
		tokens := make(map[types.TokenKind]string, len(ch.Tokens))
		for kind, addr := range ch.Tokens {
			tokens[types.TokenKind(strings.ToUpper(kind))] = addr
		}

		out = append(out, &types.ChainConfig{
			Name:          ch.Name,
			ChainType:     types.ParseChainType(ch.Type),
			ChainID:       ch.ChainID,
			BridgeChainID: ch.BridgeChainID,
			RpcUrl:        ch.RpcUrl,
			TxType:        ch.TxType,
			RouterAddress: ch.Router,
			Tokens:        tokens,
			ExplorerURL:   ch.Explorer,
			GasMultiplier: ch.GasMultiplier,
		})
	}
	return out
}

// Hops converts the itinerary section into hops.
func (c *Config) Hops() []types.Hop {
	out := make([]types.Hop, 0, len(c.Itinerary))
	for _, h := range c.Itinerary {
		out = append(out, types.Hop{
			From:      h.From,
			To:        h.To,
			FromToken: types.TokenKind(strings.ToUpper(h.FromToken)),
			ToToken:   types.TokenKind(strings.ToUpper(h.ToToken)),
			SrcPoolID: h.SrcPool,
			DstPoolID: h.DstPool,
			Amount:    h.Amount,
			Cooldown:  types.DelayRange{Min: h.Cooldown.Min, Max: h.Cooldown.Max},
			FromLabel: h.FromLabel,
			ToLabel:   h.ToLabel,
		})
	}
	return out
}

// AllowanceOptions returns the approval wait settings.
func (c *Config) AllowanceOptions() allowance.Options {
	return allowance.Options{
		SettleDelay:  c.Approval.SettleDelay,
		PollInterval: c.Approval.PollInterval,
		Timeout:      c.Approval.Timeout,
	}
}

// slippage returns the configured fraction, zero when unset.
func (c *Config) slippage() float64 {
	if c.Slippage == nil {
		return 0
	}
	return *c.Slippage
}

// OrchestratorConfig returns the run settings shared by every worker.
func (c *Config) OrchestratorConfig() (orchestrator.Config, error) {
	bps, err := planner.SlippageToBps(c.slippage())
	if err != nil {
		return orchestrator.Config{}, err
	}

	return orchestrator.Config{
		MaxParallelWallets: c.MaxParallelWallets,
		Worker: worker.Options{
			Cycles:      c.Cycles,
			StartDelay:  types.DelayRange{Min: c.StartDelay.Min, Max: c.StartDelay.Max},
			SlippageBps: bps,
			GateUnits:   c.Gate.Units,
			Gate:        watcher.Options{Interval: c.Gate.Interval, MaxWait: c.Gate.MaxWait},
			Settlement:  watcher.Options{Interval: c.Settlement.Interval, MaxWait: c.Settlement.MaxWait},
		},
	}, nil
}
