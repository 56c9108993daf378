// Package sqlite caches SimDB query results in a local SQLite database so
// repeated exploration does not have to round-trip to the remote service.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Simon-McIntosh/nucleai/internal/metadata"
	"github.com/Simon-McIntosh/nucleai/internal/model"
)

// Store is the local simulation cache.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the cache at path and ensures the schema
// exists.
func NewStore(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wires the store onto an existing connection (tests use
// in-memory databases).
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying connection for ad hoc SQL over the cache.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS simulations (
            uuid         TEXT PRIMARY KEY,
            alias        TEXT NOT NULL,
            machine      TEXT NOT NULL,
            code_name    TEXT NOT NULL,
            code_version TEXT,
            description  TEXT NOT NULL,
            status       TEXT NOT NULL,
            author_email TEXT,
            datetime     TEXT,
            metadata     TEXT NOT NULL DEFAULT '{}'
        )`)
	if err != nil {
		return fmt.Errorf("init simulations table: %w", err)
	}
	return nil
}

// UpsertSimulations inserts or updates cached records. Structured metadata
// is serialized to a JSON column.
func (s *Store) UpsertSimulations(ctx context.Context, sims []model.SimulationSummary) error {
	if len(sims) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO simulations
            (uuid, alias, machine, code_name, code_version, description, status, author_email, datetime, metadata)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (uuid) DO UPDATE SET
            alias        = excluded.alias,
            machine      = excluded.machine,
            code_name    = excluded.code_name,
            code_version = excluded.code_version,
            description  = excluded.description,
            status       = excluded.status,
            author_email = excluded.author_email,
            datetime     = excluded.datetime,
            metadata     = excluded.metadata`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, sim := range sims {
		metadataJSON := "{}"
		var datetime *string
		if sim.Metadata != nil {
			buf, err := json.Marshal(sim.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for %s: %w", sim.UUID, err)
			}
			metadataJSON = string(buf)
			datetime = sim.Metadata.Datetime
		}
		if _, err := stmt.ExecContext(ctx,
			sim.UUID, sim.Alias, sim.Machine,
			sim.Code.Name, sim.Code.Version,
			sim.Description, string(sim.Status),
			sim.AuthorEmail, datetime, metadataJSON,
		); err != nil {
			return fmt.Errorf("upsert simulation %s: %w", sim.UUID, err)
		}
	}
	return tx.Commit()
}

// List returns up to limit cached records, most recent first. A limit of
// zero or less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]model.SimulationSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT uuid, alias, machine, code_name, code_version, description, status, author_email, metadata
        FROM simulations
        ORDER BY datetime DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.SimulationSummary
	for rows.Next() {
		var sim model.SimulationSummary
		var status, metadataJSON string
		var codeVersion, authorEmail sql.NullString
		if err := rows.Scan(&sim.UUID, &sim.Alias, &sim.Machine,
			&sim.Code.Name, &codeVersion,
			&sim.Description, &status, &authorEmail, &metadataJSON); err != nil {
			return nil, err
		}
		sim.Status = model.NormalizeStatus(status)
		if codeVersion.Valid {
			sim.Code.Version = &codeVersion.String
		}
		if authorEmail.Valid {
			sim.AuthorEmail = &authorEmail.String
		}
		if metadataJSON != "" && metadataJSON != "{}" {
			var md metadata.Simulation
			if err := json.Unmarshal([]byte(metadataJSON), &md); err == nil {
				sim.Metadata = &md
			}
		}
		out = append(out, sim)
	}
	return out, rows.Err()
}

// Get returns one cached record by uuid, or model.ErrNotFound.
func (s *Store) Get(ctx context.Context, uuid string) (*model.SimulationSummary, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT uuid, alias, machine, code_name, code_version, description, status, author_email, metadata
        FROM simulations WHERE uuid = ?`, uuid)

	var sim model.SimulationSummary
	var status, metadataJSON string
	var codeVersion, authorEmail sql.NullString
	err := row.Scan(&sim.UUID, &sim.Alias, &sim.Machine,
		&sim.Code.Name, &codeVersion,
		&sim.Description, &status, &authorEmail, &metadataJSON)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sim.Status = model.NormalizeStatus(status)
	if codeVersion.Valid {
		sim.Code.Version = &codeVersion.String
	}
	if authorEmail.Valid {
		sim.AuthorEmail = &authorEmail.String
	}
	if metadataJSON != "" && metadataJSON != "{}" {
		var md metadata.Simulation
		if err := json.Unmarshal([]byte(metadataJSON), &md); err == nil {
			sim.Metadata = &md
		}
	}
	return &sim, nil
}

// Count reports the number of cached records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM simulations`).Scan(&n)
	return n, err
}
