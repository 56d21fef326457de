package dbconfig

import (
	"context"
	"database/sql"
	"fmt"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/dbconfig/models"
	"github.com/pkg/errors"
)

// NewHopRecord flattens a hop result into its journal row.
func NewHopRecord(result *types.HopResult) models.HopRecord {
	rec := models.HopRecord{
		RunID:       result.RunID,
		Wallet:      result.Wallet,
		Cycle:       result.Cycle,
		HopIndex:    result.Index,
		FromChain:   result.Hop.From,
		ToChain:     result.Hop.To,
		FromToken:   result.Hop.FromToken.String(),
		ToToken:     result.Hop.ToToken.String(),
		Status:      string(result.Status),
		FailureKind: string(result.Kind),
		Error:       result.Err,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	}

	if result.Intent != nil {
		rec.Amount = result.Intent.Amount.String()
		rec.MinAmountOut = result.Intent.MinAmountOut.String()
	}
	if result.ApproveTx != nil {
		rec.ApproveTx = result.ApproveTx.Hash
	}
	if result.SwapTx != nil {
		rec.SwapTx = result.SwapTx.Hash
		rec.SwapTxURL = result.SwapTx.URL
	}

	return rec
}

// InsertHop writes or replaces the journal row of a hop result.
//
// Parameters:
// - ctx: the context for managing the request.
// - result: the hop outcome.
//
// Returns:
// - error: an error if the database operation fails.
func (r *DBConfig) InsertHop(ctx context.Context, result *types.HopResult) error {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	rec := NewHopRecord(result)
	_, err = db.ExecContext(ctx, `
		INSERT INTO hop_results (
			run_id,
			wallet,
			cycle,
			hop_index,
			from_chain,
			to_chain,
			from_token,
			to_token,
			status,
			failure_kind,
			error,
			amount,
			min_amount_out,
			approve_tx,
			swap_tx,
			swap_tx_url,
			started_at,
			finished_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (run_id, wallet, cycle, hop_index)
		DO UPDATE SET
			status = EXCLUDED.status,
			failure_kind = EXCLUDED.failure_kind,
			error = EXCLUDED.error,
			amount = EXCLUDED.amount,
			min_amount_out = EXCLUDED.min_amount_out,
			approve_tx = EXCLUDED.approve_tx,
			swap_tx = EXCLUDED.swap_tx,
			swap_tx_url = EXCLUDED.swap_tx_url,
			finished_at = EXCLUDED.finished_at`,
		rec.RunID,
		rec.Wallet,
		rec.Cycle,
		rec.HopIndex,
		rec.FromChain,
		rec.ToChain,
		rec.FromToken,
		rec.ToToken,
		rec.Status,
		nullString(rec.FailureKind),
		nullString(rec.Error),
		nullString(rec.Amount),
		nullString(rec.MinAmountOut),
		nullString(rec.ApproveTx),
		nullString(rec.SwapTx),
		nullString(rec.SwapTxURL),
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert hop result")
	}

	return nil
}

// GetHops returns journal rows matching filter, newest first.
//
// Parameters:
// - ctx: the context for managing the request.
// - filter: optional status and wallet constraints and a row limit.
//
// Returns:
// - []models.HopRecord: the matching rows.
// - error: an error if the database operation fails.
func (r *DBConfig) GetHops(ctx context.Context, filter HopFilter) ([]models.HopRecord, error) {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	query, args := buildHopsQuery(filter)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query hop results")
	}
	defer rows.Close()

	var hops []models.HopRecord
	for rows.Next() {
		var hop models.HopRecord
		var failureKind, errText, amount, minAmountOut, approveTx, swapTx, swapTxURL sql.NullString

		err := rows.Scan(
			&hop.ID,
			&hop.RunID,
			&hop.Wallet,
			&hop.Cycle,
			&hop.HopIndex,
			&hop.FromChain,
			&hop.ToChain,
			&hop.FromToken,
			&hop.ToToken,
			&hop.Status,
			&failureKind,
			&errText,
			&amount,
			&minAmountOut,
			&approveTx,
			&swapTx,
			&swapTxURL,
			&hop.StartedAt,
			&hop.FinishedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan hop result")
		}

		hop.FailureKind = failureKind.String
		hop.Error = errText.String
		hop.Amount = amount.String
		hop.MinAmountOut = minAmountOut.String
		hop.ApproveTx = approveTx.String
		hop.SwapTx = swapTx.String
		hop.SwapTxURL = swapTxURL.String

		hops = append(hops, hop)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read hop results")
	}

	return hops, nil
}

func buildHopsQuery(filter HopFilter) (string, []interface{}) {
	query := `
		SELECT
			id,
			run_id,
			wallet,
			cycle,
			hop_index,
			from_chain,
			to_chain,
			from_token,
			to_token,
			status,
			failure_kind,
			error,
			amount,
			min_amount_out,
			approve_tx,
			swap_tx,
			swap_tx_url,
			started_at,
			finished_at
		FROM hop_results
		WHERE 1 = 1`

	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Wallet != "" {
		args = append(args, filter.Wallet)
		query += fmt.Sprintf(" AND lower(wallet) = lower($%d)", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY finished_at DESC, id DESC LIMIT $%d", len(args))

	return query, args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
