// Package dbconfig journals hop outcomes in Postgres.
package dbconfig

import (
	"context"
	"database/sql"

	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const schema = `
	CREATE TABLE IF NOT EXISTS hop_results (
		id             BIGSERIAL PRIMARY KEY,
		run_id         TEXT        NOT NULL,
		wallet         TEXT        NOT NULL,
		cycle          INTEGER     NOT NULL,
		hop_index      INTEGER     NOT NULL,
		from_chain     TEXT        NOT NULL,
		to_chain       TEXT        NOT NULL,
		from_token     TEXT        NOT NULL,
		to_token       TEXT        NOT NULL,
		status         TEXT        NOT NULL,
		failure_kind   TEXT,
		error          TEXT,
		amount         NUMERIC,
		min_amount_out NUMERIC,
		approve_tx     TEXT,
		swap_tx        TEXT,
		swap_tx_url    TEXT,
		started_at     TIMESTAMPTZ NOT NULL,
		finished_at    TIMESTAMPTZ NOT NULL,
		UNIQUE (run_id, wallet, cycle, hop_index)
	);
	CREATE INDEX IF NOT EXISTS hop_results_status_idx ON hop_results (status);
	CREATE INDEX IF NOT EXISTS hop_results_finished_at_idx ON hop_results (finished_at DESC);
`

type DBConfig struct {
	dbConnStr string
}

// NewDBConfig creates a new DBConfig instance with the provided connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *DBConfig: a pointer to the newly created DBConfig instance.
// - error: an error if the connection string is empty.
func NewDBConfig(connStr string) (*DBConfig, error) {
	if connStr == "" {
		return nil, errors.Wrap(commonerrors.ErrInvalidConfig, "postgres connection string is empty")
	}
	return &DBConfig{
		dbConnStr: connStr,
	}, nil
}

// EnsureSchema creates the journal table when it does not exist.
func (r *DBConfig) EnsureSchema(ctx context.Context) error {
	db, err := sql.Open("postgres", r.dbConnStr)
	if err != nil {
		return commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create hop_results table")
	}
	return nil
}
