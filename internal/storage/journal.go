// Package storage keeps a local SQLite journal of the mutations sent to the
// finance API. The API remains the only source of truth for categories and
// transactions; the journal only answers "what did I submit, and did it work".
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"financas/internal/core"
	"financas/internal/log"
)

const timeLayout = time.RFC3339Nano

// Entry is a stored mutation.
type Entry struct {
	ID int64
	core.Mutation
}

type Journal struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenJournal opens (creating if needed) the journal at dbPath and migrates it.
func OpenJournal(dbPath string, logger *log.Logger) (*Journal, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Save appends m and returns its journal id.
func (j *Journal) Save(ctx context.Context, m core.Mutation) (int64, error) {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	var entityID sql.NullInt64
	if m.EntityID != nil {
		entityID = sql.NullInt64{Int64: *m.EntityID, Valid: true}
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO mutations (resource, operation, entity_id, title, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Resource, m.Operation, entityID, m.Title, m.Outcome, m.Error, at.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert mutation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mutation id: %w", err)
	}

	j.logger.DebugContext(ctx, "Mutation saved to journal",
		"id", id,
		log.FieldResource, m.Resource,
		log.FieldOperation, m.Operation)
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, resource, operation, entity_id, title, outcome, error, created_at
		 FROM mutations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e        Entry
			entityID sql.NullInt64
			at       string
		)
		if err := rows.Scan(&e.ID, &e.Resource, &e.Operation, &entityID, &e.Title, &e.Outcome, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		if entityID.Valid {
			id := entityID.Int64
			e.EntityID = &id
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse mutation time %q: %w", at, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutations: %w", err)
	}
	return entries, nil
}
