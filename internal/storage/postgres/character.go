package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// CharacterRepository persists tracked characters, their attributes and
// notes, and per-channel game masters.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `id, name, channel, owner, comment, updated_at`

func scanCharacter(row pgx.Row) (storage.Character, error) {
	var ch storage.Character
	err := row.Scan(&ch.ID, &ch.Name, &ch.Channel, &ch.Owner, &ch.Comment, &ch.UpdatedAt)
	return ch, err
}

// AddCharacter inserts ch.
//
// Postcondition: Returns the stored character with ID and UpdatedAt set, or
// storage.ErrExists if the channel already tracks that name.
func (r *CharacterRepository) AddCharacter(ctx context.Context, ch storage.Character) (storage.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx,
		`INSERT INTO characters (name, channel, owner, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+characterColumns,
		ch.Name, ch.Channel, ch.Owner, ch.Comment,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Character{}, storage.ErrExists
		}
		return storage.Character{}, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// Character returns the character named name in channel.
func (r *CharacterRepository) Character(ctx context.Context, name, channel string) (storage.Character, error) {
	ch, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE name = $1 AND channel = $2`,
		name, channel))
	if err != nil {
		return storage.Character{}, notFound(err, "querying character")
	}
	return ch, nil
}

// Characters lists the characters tracked in channel.
func (r *CharacterRepository) Characters(ctx context.Context, channel string) ([]storage.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE channel = $1 ORDER BY name`, channel)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Character, error) {
		return scanCharacter(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning characters: %w", err)
	}
	return out, nil
}

// DeleteCharacter removes a character; attributes and notes cascade.
func (r *CharacterRepository) DeleteCharacter(ctx context.Context, id int64) error {
	return r.execOne(ctx, "deleting character", `DELETE FROM characters WHERE id = $1`, id)
}

// TouchCharacter records comment and bumps updated_at.
func (r *CharacterRepository) TouchCharacter(ctx context.Context, id int64, comment string) error {
	return r.execOne(ctx, "updating character",
		`UPDATE characters SET comment = $2, updated_at = NOW() WHERE id = $1`, id, comment)
}

// Attribute returns one attribute of a character.
func (r *CharacterRepository) Attribute(ctx context.Context, id int64, name string) (storage.Attribute, error) {
	var a storage.Attribute
	err := r.db.QueryRow(ctx,
		`SELECT name, value, maximum FROM attributes WHERE character_id = $1 AND name = $2`,
		id, name).Scan(&a.Name, &a.Value, &a.Maximum)
	if err != nil {
		return storage.Attribute{}, notFound(err, "querying attribute")
	}
	return a, nil
}

// Attributes lists a character's attributes.
func (r *CharacterRepository) Attributes(ctx context.Context, id int64) ([]storage.Attribute, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, value, maximum FROM attributes WHERE character_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("querying attributes: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[storage.Attribute])
	if err != nil {
		return nil, fmt.Errorf("scanning attributes: %w", err)
	}
	return out, nil
}

// SetAttribute inserts or replaces an attribute.
func (r *CharacterRepository) SetAttribute(ctx context.Context, id int64, attr storage.Attribute) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO attributes (character_id, name, value, maximum) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (character_id, name) DO UPDATE SET value = EXCLUDED.value, maximum = EXCLUDED.maximum`,
		id, attr.Name, attr.Value, attr.Maximum)
	if err != nil {
		return fmt.Errorf("upserting attribute: %w", err)
	}
	return nil
}

// DeleteAttribute removes an attribute.
func (r *CharacterRepository) DeleteAttribute(ctx context.Context, id int64, name string) error {
	return r.execOne(ctx, "deleting attribute",
		`DELETE FROM attributes WHERE character_id = $1 AND name = $2`, id, name)
}

// Notes lists a character's notes.
func (r *CharacterRepository) Notes(ctx context.Context, id int64) ([]storage.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, text FROM notes WHERE character_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[storage.Note])
	if err != nil {
		return nil, fmt.Errorf("scanning notes: %w", err)
	}
	return out, nil
}

// SetNote inserts or replaces a note.
func (r *CharacterRepository) SetNote(ctx context.Context, id int64, note storage.Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notes (character_id, name, text) VALUES ($1, $2, $3)
		 ON CONFLICT (character_id, name) DO UPDATE SET text = EXCLUDED.text`,
		id, note.Name, note.Text)
	if err != nil {
		return fmt.Errorf("upserting note: %w", err)
	}
	return nil
}

// DeleteNote removes a note.
func (r *CharacterRepository) DeleteNote(ctx context.Context, id int64, name string) error {
	return r.execOne(ctx, "deleting note",
		`DELETE FROM notes WHERE character_id = $1 AND name = $2`, id, name)
}

// GameMaster returns the user that claimed channel.
func (r *CharacterRepository) GameMaster(ctx context.Context, channel string) (string, error) {
	var user string
	err := r.db.QueryRow(ctx,
		`SELECT user_id FROM game_masters WHERE channel = $1`, channel).Scan(&user)
	if err != nil {
		return "", notFound(err, "querying game master")
	}
	return user, nil
}

// SetGameMaster records user as the channel's game master.
func (r *CharacterRepository) SetGameMaster(ctx context.Context, channel, user string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_masters (channel, user_id) VALUES ($1, $2)
		 ON CONFLICT (channel) DO UPDATE SET user_id = EXCLUDED.user_id`, channel, user)
	if err != nil {
		return fmt.Errorf("upserting game master: %w", err)
	}
	return nil
}

// ClearGameMaster removes the channel's game master.
func (r *CharacterRepository) ClearGameMaster(ctx context.Context, channel string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM game_masters WHERE channel = $1`, channel); err != nil {
		return fmt.Errorf("deleting game master: %w", err)
	}
	return nil
}

// execOne runs a single-row statement and maps zero affected rows to
// storage.ErrNotFound.
func (r *CharacterRepository) execOne(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
