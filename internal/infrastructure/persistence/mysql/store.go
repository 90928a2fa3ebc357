package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/presencelab/beacon-bridge/internal/domain/repository"
)

// Store provides a MySQL-backed implementation of the key-path store.
type Store struct {
	db *DB
}

// NewStore creates a new MySQL-backed store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Set overwrites the document at path.
func (s *Store) Set(ctx context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)
	`, path, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Push appends value under path with a generated, time-ordered key.
func (s *Store) Push(ctx context.Context, path string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	now := time.Now()
	key := repository.NewPushKey(now)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO list_entries (push_key, path, value, created_at) VALUES (?, ?, ?, ?)
	`, key, path, string(data), now.UTC())
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	return key, nil
}

// Get unmarshals the document at path into dest.
func (s *Store) Get(ctx context.Context, path string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE path = ?`, path).Scan(&data)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query document: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}
