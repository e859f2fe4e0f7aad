package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// KeywordRepository persists keywords and definitions.
type KeywordRepository struct {
	db *pgxpool.Pool
}

// NewKeywordRepository creates a KeywordRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewKeywordRepository(db *pgxpool.Pool) *KeywordRepository {
	return &KeywordRepository{db: db}
}

const keywordColumns = `name, owner, bareword, hidden, protect, shuffle`

func scanKeyword(row pgx.Row) (storage.Keyword, error) {
	var kw storage.Keyword
	err := row.Scan(&kw.Name, &kw.Owner, &kw.Bareword, &kw.Hidden, &kw.Protect, &kw.Shuffle)
	return kw, err
}

// Keyword returns the named keyword.
//
// Postcondition: Returns storage.ErrNotFound when no keyword has that name.
func (r *KeywordRepository) Keyword(ctx context.Context, name string) (storage.Keyword, error) {
	kw, err := scanKeyword(r.db.QueryRow(ctx,
		`SELECT `+keywordColumns+` FROM keywords WHERE name = $1`, name))
	if err != nil {
		return storage.Keyword{}, notFound(err, "querying keyword")
	}
	return kw, nil
}

// AddKeyword inserts kw.
//
// Postcondition: Returns storage.ErrExists if the name is taken.
func (r *KeywordRepository) AddKeyword(ctx context.Context, kw storage.Keyword) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO keywords (`+keywordColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		kw.Name, kw.Owner, kw.Bareword, kw.Hidden, kw.Protect, kw.Shuffle,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrExists
		}
		return fmt.Errorf("inserting keyword: %w", err)
	}
	return nil
}

// UpdateKeyword replaces the owner and options of kw.
func (r *KeywordRepository) UpdateKeyword(ctx context.Context, kw storage.Keyword) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE keywords SET owner = $2, bareword = $3, hidden = $4, protect = $5, shuffle = $6
		 WHERE name = $1`,
		kw.Name, kw.Owner, kw.Bareword, kw.Hidden, kw.Protect, kw.Shuffle,
	)
	if err != nil {
		return fmt.Errorf("updating keyword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FindKeywords returns keywords whose name contains partial.
func (r *KeywordRepository) FindKeywords(ctx context.Context, partial string) ([]storage.Keyword, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+keywordColumns+` FROM keywords
		 WHERE name ILIKE '%' || $1 || '%' ORDER BY name`, partial)
	if err != nil {
		return nil, fmt.Errorf("finding keywords: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Keyword, error) {
		return scanKeyword(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning keywords: %w", err)
	}
	return out, nil
}

// Bareword returns a random definition of a bareword keyword.
//
// Postcondition: Returns storage.ErrNotFound when name is not a bareword
// keyword or has no definitions.
func (r *KeywordRepository) Bareword(ctx context.Context, name string) (storage.Definition, error) {
	def, err := scanDefinition(r.db.QueryRow(ctx,
		`SELECT d.keyword, d.text, d.submitter, d.created_at, d.embedded
		 FROM definitions d JOIN keywords k ON k.name = d.keyword
		 WHERE k.name = $1 AND k.bareword
		 ORDER BY random() LIMIT 1`, name))
	if err != nil {
		return storage.Definition{}, notFound(err, "querying bareword")
	}
	return def, nil
}

const definitionColumns = `keyword, text, submitter, created_at, embedded`

func scanDefinition(row pgx.Row) (storage.Definition, error) {
	var d storage.Definition
	err := row.Scan(&d.Keyword, &d.Text, &d.Submitter, &d.CreatedAt, &d.Embedded)
	return d, err
}

// Definitions returns every definition of keyword in insertion order.
func (r *KeywordRepository) Definitions(ctx context.Context, keyword string) ([]storage.Definition, error) {
	return r.queryDefinitions(ctx,
		`SELECT `+definitionColumns+` FROM definitions WHERE keyword = $1 ORDER BY id`, keyword)
}

// FindDefinitions returns the definitions of keyword containing partial.
func (r *KeywordRepository) FindDefinitions(ctx context.Context, keyword, partial string) ([]storage.Definition, error) {
	return r.queryDefinitions(ctx,
		`SELECT `+definitionColumns+` FROM definitions
		 WHERE keyword = $1 AND text ILIKE '%' || $2 || '%' ORDER BY id`, keyword, partial)
}

func (r *KeywordRepository) queryDefinitions(ctx context.Context, sql string, args ...any) ([]storage.Definition, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying definitions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Definition, error) {
		return scanDefinition(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning definitions: %w", err)
	}
	return out, nil
}

// AddDefinition inserts def. A zero CreatedAt takes the database time.
//
// Postcondition: Returns storage.ErrExists if the keyword already has that text.
func (r *KeywordRepository) AddDefinition(ctx context.Context, def storage.Definition) error {
	var createdAt any
	if !def.CreatedAt.IsZero() {
		createdAt = def.CreatedAt
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO definitions (keyword, text, submitter, embedded, created_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))`,
		def.Keyword, def.Text, def.Submitter, def.Embedded, createdAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrExists
		}
		return fmt.Errorf("inserting definition: %w", err)
	}
	return nil
}

// DeleteDefinition removes one definition.
func (r *KeywordRepository) DeleteDefinition(ctx context.Context, keyword, text string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM definitions WHERE keyword = $1 AND text = $2`, keyword, text)
	if err != nil {
		return fmt.Errorf("deleting definition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
