package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/config"
	"github.com/ClipFinance/relay-cycler/planner"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// nativeDecimals is the precision of every supported chain's gas currency.
const nativeDecimals = 18

var checkCommand = &cli.Command{
	Name:   "check",
	Usage:  "Print token balances, router allowances and native balances without sending anything",
	Action: check,
}

func check(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	wallets, err := config.LoadWallets(cfg.WalletsFile)
	if err != nil {
		return err
	}

	registry, err := newRegistry(cCtx.Context, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer registry.Close()

	w := tabwriter.NewWriter(cCtx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WALLET\tCHAIN\tTOKEN\tBALANCE\tALLOWANCE")
	for _, wallet := range wallets {
		for _, name := range registry.Names() {
			chain, err := registry.Get(name)
			if err != nil {
				return err
			}
			if err := writeChainBalances(cCtx.Context, w, chain, wallet.Address()); err != nil {
				return errors.Wrapf(err, "wallet %s on %s", wallet.Address(), name)
			}
		}
	}
	return w.Flush()
}

func writeChainBalances(ctx context.Context, w io.Writer, chain types.Chain, address string) error {
	cfg := chain.GetConfig()

	native, err := chain.GetTokenBalance(ctx, address, "")
	if err != nil {
		return errors.Wrap(err, "failed to read native balance")
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", address, cfg.Name, "NATIVE", planner.FromRaw(native, nativeDecimals), "-")

	kinds := make([]string, 0, len(cfg.Tokens))
	for kind := range cfg.Tokens {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		token, ok := cfg.TokenAddress(types.TokenKind(kind))
		if !ok {
			continue
		}
		decimals, err := chain.Decimals(ctx, token)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s decimals", kind)
		}
		balance, err := chain.GetTokenBalance(ctx, address, token)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s balance", kind)
		}
		allowance, err := chain.Allowance(ctx, token, address, cfg.RouterAddress)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s allowance", kind)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", address, cfg.Name, kind,
			planner.FromRaw(balance, decimals), planner.FromRaw(allowance, decimals))
	}
	return nil
}
