package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evalboard/evalboard/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			name TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS datapoints (
			id TEXT PRIMARY KEY,
			dataset_name TEXT NOT NULL,
			input TEXT NOT NULL,
			reference_output TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (dataset_name) REFERENCES datasets(name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datapoints_dataset ON datapoints(dataset_name, id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateDataset registers a dataset, ignoring duplicates.
func (s *SQLiteStore) CreateDataset(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO datasets (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// InsertDatapoint stores one datapoint.
func (s *SQLiteStore) InsertDatapoint(ctx context.Context, dp *domain.Datapoint) error {
	createdAt := dp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO datapoints (id, dataset_name, input, reference_output, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		dp.ID, dp.DatasetName, dp.Input, dp.ReferenceOutput, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert datapoint: %w", err)
	}
	return nil
}

// ListDatapoints returns one page of a dataset's datapoints ordered by id.
func (s *SQLiteStore) ListDatapoints(ctx context.Context, dataset string, limit, offset int) ([]domain.Datapoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset_name, input, COALESCE(reference_output, ''), created_at
		 FROM datapoints
		 WHERE dataset_name = ?
		 ORDER BY id
		 LIMIT ? OFFSET ?`,
		dataset, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list datapoints: %w", err)
	}
	defer rows.Close()

	var datapoints []domain.Datapoint
	for rows.Next() {
		var dp domain.Datapoint
		if err := rows.Scan(&dp.ID, &dp.DatasetName, &dp.Input, &dp.ReferenceOutput, &dp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan datapoint: %w", err)
		}
		datapoints = append(datapoints, dp)
	}
	return datapoints, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
