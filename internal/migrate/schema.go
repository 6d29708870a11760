package migrate

import (
	"context"
	"database/sql"

	"github.com/anoopt/rto-codes-sub000/internal/logger"

	"github.com/rotisserie/eris"
)

// EnsureSchema creates the record tables on first run. Statements use
// IF NOT EXISTS so repeated imports against the same database are no-ops.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _rto_states (
            code TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            svg_district_ids TEXT[] NOT NULL DEFAULT '{}'
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_rto_state_name ON _rto_states(lower(name))`,
		`CREATE TABLE IF NOT EXISTS _rto_district_mapping (
            state_code TEXT NOT NULL REFERENCES _rto_states(code) ON DELETE CASCADE,
            canonical TEXT NOT NULL,
            svg_id TEXT NOT NULL,
            PRIMARY KEY (state_code, canonical)
        )`,
		`CREATE TABLE IF NOT EXISTS _rto_boundary_aliases (
            state_code TEXT NOT NULL REFERENCES _rto_states(code) ON DELETE CASCADE,
            external_name TEXT NOT NULL,
            canonical TEXT NOT NULL,
            PRIMARY KEY (state_code, external_name)
        )`,
		`CREATE TABLE IF NOT EXISTS _rto_records (
            code TEXT PRIMARY KEY,
            state_code TEXT NOT NULL REFERENCES _rto_states(code) ON DELETE CASCADE,
            state TEXT NOT NULL,
            region TEXT NOT NULL,
            city TEXT NOT NULL DEFAULT '',
            district TEXT NOT NULL DEFAULT '',
            division TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            pin_code TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            jurisdiction_areas TEXT[] NOT NULL DEFAULT '{}',
            is_district_hq BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_rto_records_state ON _rto_records(state_code, code)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return eris.Wrapf(err, "schema statement %d", i)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
