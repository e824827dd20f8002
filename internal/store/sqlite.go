// Package store loads the exported turbine table into a local SQLite
// database for ad-hoc analysis.
package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ventodata/sigel-etl/internal/export"
	"github.com/ventodata/sigel-etl/internal/model"
)

// SQLite wraps a modernc.org/sqlite database holding the turbines table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS turbines (
	objectid         INTEGER PRIMARY KEY,
	nome_eol         TEXT,
	den_aeg          TEXT,
	pot_mw           REAL,
	alt_torre        REAL,
	alt_total        REAL,
	diam_rotor       REAL,
	operacao         TEXT,
	uf               TEXT,
	ceg              TEXT,
	proprietario     TEXT,
	origem           TEXT,
	eol_versao_id    INTEGER,
	data_atualizacao TEXT,
	latitude         REAL,
	longitude        REAL
);

CREATE INDEX IF NOT EXISTS idx_turbines_nome_eol ON turbines(nome_eol);
CREATE INDEX IF NOT EXISTS idx_turbines_uf ON turbines(uf);
`

// Migrate creates the turbines table.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ReplaceAll overwrites the turbines table with the given records inside a
// single transaction, mirroring the exporter's full-overwrite contract.
func (s *SQLite) ReplaceAll(ctx context.Context, recs []model.Turbine) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM turbines`); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear turbines")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO turbines (
			objectid, nome_eol, den_aeg, pot_mw, alt_torre, alt_total,
			diam_rotor, operacao, uf, ceg, proprietario, origem,
			eol_versao_id, data_atualizacao, latitude, longitude
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	inserted := 0
	for _, rec := range recs {
		var updatedAt any
		if rec.UpdatedAt != nil {
			updatedAt = rec.UpdatedAt.Format(export.TimeLayout)
		}
		_, err := stmt.ExecContext(ctx,
			rec.ObjectID, rec.WindFarm, rec.Denomination, rec.PowerMW,
			rec.TowerHeightM, rec.TotalHeightM, rec.RotorDiamM,
			rec.Operation, rec.UF, rec.CEG, rec.Owner, rec.Origin,
			rec.VersionID, updatedAt, rec.Latitude, rec.Longitude,
		)
		if err != nil {
			return inserted, eris.Wrapf(err, "sqlite: insert turbine %d", rec.ObjectID)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, eris.Wrap(err, "sqlite: commit")
	}
	return inserted, nil
}

// Count returns the number of rows in the turbines table.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turbines`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count turbines")
	}
	return n, nil
}
