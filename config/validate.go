package config

import (
	"strings"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/planner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// maxDecimals is the precision unit amounts are checked against before token decimals are known.
const maxDecimals = 18

// Validate checks the configuration after defaults were applied.
// Every hop must reference configured chains that carry the hop's tokens.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return invalid("log level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log format %q", c.Log.Format)
	}
	if _, err := planner.SlippageToBps(c.slippage()); err != nil {
		return err
	}
	if c.Cycles < 1 {
		return invalid("cycles must be at least 1")
	}
	if c.MaxParallelWallets < 0 {
		return invalid("max_parallel_wallets must not be negative")
	}
	if err := validateRange("start_delay", c.StartDelay); err != nil {
		return err
	}
	if _, err := planner.ToRaw(c.Gate.Units, maxDecimals); err != nil {
		return invalid("gate units %q", c.Gate.Units)
	}

	chains := make(map[string]ChainConfig, len(c.Chains))
	for _, ch := range c.Chains {
		if err := validateChain(ch); err != nil {
			return err
		}
		if _, dup := chains[ch.Name]; dup {
			return invalid("chain %s defined twice", ch.Name)
		}
		chains[ch.Name] = ch
	}

	if len(c.Itinerary) == 0 {
		return invalid("itinerary is empty")
	}
	for i, hop := range c.Itinerary {
		if err := validateHop(i, hop, chains); err != nil {
			return err
		}
	}
	return nil
}

func validateChain(ch ChainConfig) error {
	if ch.Name == "" {
		return invalid("chain without name")
	}
	chainType := types.ParseChainType(ch.Type)
	if chainType == types.UNKNOWN {
		return invalid("chain %s: unknown type %q", ch.Name, ch.Type)
	}
	if chainType == types.EVM && ch.RpcUrl == "" {
		return invalid("chain %s: rpc_url is required", ch.Name)
	}
	if ch.BridgeChainID == 0 {
		return invalid("chain %s: bridge_chain_id is required", ch.Name)
	}
	if ch.TxType != 0 && ch.TxType != 2 {
		return invalid("chain %s: tx_type must be 0 or 2", ch.Name)
	}
	if ch.Router != "" && !common.IsHexAddress(ch.Router) {
		return invalid("chain %s: router %q is not an address", ch.Name, ch.Router)
	}
	if ch.GasMultiplier < 0 {
		return invalid("chain %s: gas_multiplier must not be negative", ch.Name)
	}
	for kind, addr := range ch.Tokens {
		if !common.IsHexAddress(addr) {
			return invalid("chain %s: token %s address %q is not an address", ch.Name, kind, addr)
		}
	}
	return nil
}

func validateHop(i int, hop HopConfig, chains map[string]ChainConfig) error {
	from, ok := chains[hop.From]
	if !ok {
		return invalid("hop %d: unknown chain %q", i, hop.From)
	}
	to, ok := chains[hop.To]
	if !ok {
		return invalid("hop %d: unknown chain %q", i, hop.To)
	}
	if hop.From == hop.To {
		return invalid("hop %d: source and destination are both %s", i, hop.From)
	}
	if from.Router == "" {
		return invalid("hop %d: chain %s has no router", i, hop.From)
	}
	if hop.FromToken == "" {
		return invalid("hop %d: token is required", i)
	}
	if !hasToken(from, hop.FromToken) {
		return invalid("hop %d: chain %s has no %s", i, hop.From, hop.FromToken)
	}
	if !hasToken(to, hop.ToToken) {
		return invalid("hop %d: chain %s has no %s", i, hop.To, hop.ToToken)
	}
	if hop.SrcPool == 0 && poolFor(hop.FromToken) == 0 {
		return invalid("hop %d: no default pool for %s, set src_pool", i, hop.FromToken)
	}
	if hop.DstPool == 0 && poolFor(hop.ToToken) == 0 {
		return invalid("hop %d: no default pool for %s, set dst_pool", i, hop.ToToken)
	}
	if hop.Amount == "" {
		return invalid("hop %d: amount is required", i)
	}
	amount, err := planner.ToRaw(hop.Amount, maxDecimals)
	if err != nil || amount.Sign() <= 0 {
		return invalid("hop %d: amount %q", i, hop.Amount)
	}
	return validateRange("cooldown", hop.Cooldown)
}

func validateRange(name string, r RangeConfig) error {
	if r.Min < 0 || r.Max < 0 {
		return invalid("%s must not be negative", name)
	}
	if r.Min > r.Max {
		return invalid("%s min %s exceeds max %s", name, r.Min, r.Max)
	}
	return nil
}

func hasToken(ch ChainConfig, kind string) bool {
	for k, addr := range ch.Tokens {
		if strings.EqualFold(k, kind) && addr != "" {
			return true
		}
	}
	return false
}

func poolFor(kind string) uint64 {
	return types.DefaultPoolIDs[types.TokenKind(strings.ToUpper(kind))]
}
