package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db     dbx.DBTX
	prefix string
}

// NewSQLiteRepository scopes the metadata table to namespace. Keys are
// stored as "<namespace>.<key>".
func NewSQLiteRepository(db dbx.DBTX, namespace string) *SQLiteRepository {
	return &SQLiteRepository{db: db, prefix: namespace + "."}
}

func (r *SQLiteRepository) fullKey(key string) string {
	return r.prefix + key
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, r.fullKey(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", r.fullKey(key), err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, r.fullKey(key), value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", r.fullKey(key), err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, r.fullKey(key))
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", r.fullKey(key), err)
	}
	return nil
}

// Clear deletes every key of the namespace. substr keeps '_' and '%' in
// namespaces from acting as LIKE wildcards.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM metadata WHERE substr(key, 1, ?) = ?`, len(r.prefix), r.prefix)
	if err != nil {
		return fmt.Errorf("failed to clear metadata[%s*]: %w", r.prefix, err)
	}
	return nil
}

// List returns the namespace's pairs keyed without the namespace prefix.
func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM metadata WHERE substr(key, 1, ?) = ?`, len(r.prefix), r.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[strings.TrimPrefix(key, r.prefix)] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}

	return result, nil
}
