package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// PrefixRepository persists guild and channel command prefixes.
type PrefixRepository struct {
	db *pgxpool.Pool
}

// NewPrefixRepository creates a PrefixRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPrefixRepository(db *pgxpool.Pool) *PrefixRepository {
	return &PrefixRepository{db: db}
}

// Prefixes returns every stored prefix.
func (r *PrefixRepository) Prefixes(ctx context.Context) (map[storage.PrefixKey]string, error) {
	rows, err := r.db.Query(ctx, `SELECT scope, id, prefix FROM prefixes`)
	if err != nil {
		return nil, fmt.Errorf("querying prefixes: %w", err)
	}
	defer rows.Close()

	out := make(map[storage.PrefixKey]string)
	for rows.Next() {
		var scope, id, prefix string
		if err := rows.Scan(&scope, &id, &prefix); err != nil {
			return nil, fmt.Errorf("scanning prefix: %w", err)
		}
		out[storage.PrefixKey{Scope: storage.PrefixScope(scope), ID: id}] = prefix
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prefixes: %w", err)
	}
	return out, nil
}

// SetPrefix inserts or replaces the prefix for key.
func (r *PrefixRepository) SetPrefix(ctx context.Context, key storage.PrefixKey, prefix string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO prefixes (scope, id, prefix) VALUES ($1, $2, $3)
		 ON CONFLICT (scope, id) DO UPDATE SET prefix = EXCLUDED.prefix`,
		string(key.Scope), key.ID, prefix,
	)
	if err != nil {
		return fmt.Errorf("upserting prefix: %w", err)
	}
	return nil
}

// DeletePrefix removes the prefix for key if one is stored.
func (r *PrefixRepository) DeletePrefix(ctx context.Context, key storage.PrefixKey) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM prefixes WHERE scope = $1 AND id = $2`, string(key.Scope), key.ID); err != nil {
		return fmt.Errorf("deleting prefix: %w", err)
	}
	return nil
}
