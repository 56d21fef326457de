package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/dbconfig"
	"github.com/ClipFinance/relay-cycler/reporter"
	"github.com/urfave/cli/v2"
)

const (
	LimitFlag  = "limit"
	StatusFlag = "status"
	WalletFlag = "wallet"
)

var historyCommand = &cli.Command{
	Name:  "history",
	Usage: "List journaled hop results",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  LimitFlag,
			Value: dbconfig.DefaultLimit,
			Usage: "Maximum number of rows",
		},
		&cli.StringFlag{
			Name:  StatusFlag,
			Usage: "Only rows with this status (DONE, FAILED, CANCELLED)",
		},
		&cli.StringFlag{
			Name:  WalletFlag,
			Usage: "Only rows for this wallet address",
		},
	},
	Action: history,
}

func history(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	db, err := dbconfig.NewDBConfig(cfg.Postgres.DSN)
	if err != nil {
		return err
	}

	status := strings.ToUpper(cCtx.String(StatusFlag))
	records, err := db.GetHops(cCtx.Context, dbconfig.HopFilter{
		Status: status,
		Wallet: cCtx.String(WalletFlag),
		Limit:  cCtx.Int(LimitFlag),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cCtx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tWALLET\tCYCLE\tHOP\tROUTE\tSTATUS\tKIND\tAMOUNT\tTX")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s %s -> %s %s\t%s\t%s\t%s\t%s\n",
			rec.FinishedAt.Format("2006-01-02 15:04:05"),
			rec.Wallet,
			rec.Cycle,
			rec.HopIndex,
			rec.FromChain, rec.FromToken, rec.ToChain, rec.ToToken,
			rec.Status,
			rec.FailureKind,
			rec.Amount,
			rec.SwapTxURL,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if cfg.Redis.Addr == "" {
		return nil
	}

	pool := reporter.NewRedisPool(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer pool.Close()

	redisReporter := reporter.NewRedisReporter(pool)
	for _, s := range []types.HopStatus{types.HopDone, types.HopFailed, types.HopCancelled} {
		n, err := redisReporter.CountByStatus(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(cCtx.App.Writer, "%s: %d\n", s, n)
	}
	return nil
}
