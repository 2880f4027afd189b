package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domain "github.com/bryanwahyu/ventur-api/internal/domain/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

type DeckRepository struct {
	db *sql.DB
}

func NewDeckRepository(db *sql.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

const deckColumns = `id, user_id, filename, file_key, file_type, file_size, status, analysis, created_at, updated_at`

func (r *DeckRepository) Create(ctx context.Context, d *domain.PitchDeck) error {
	const q = `
INSERT INTO pitch_decks
(id, user_id, filename, file_key, file_type, file_size, status, analysis, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	payload, err := marshalPayload(d.Analysis)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		d.ID, d.UserID, d.Filename, d.FileKey, d.FileType, d.FileSize,
		d.Status, payload, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// Get by ID + owner; foreign-owned rows look identical to missing ones.
func (r *DeckRepository) Get(ctx context.Context, owner string, id domain.DeckID) (*domain.PitchDeck, error) {
	const q = `
SELECT ` + deckColumns + `
FROM pitch_decks
WHERE user_id=? AND id=? LIMIT 1;
`
	d, err := scanDeck(r.db.QueryRowContext(ctx, q, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	return d, err
}

// List decks per owner, newest first
func (r *DeckRepository) List(ctx context.Context, owner string, limit int) ([]*domain.PitchDeck, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT ` + deckColumns + `
FROM pitch_decks
WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PitchDeck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TransitionStatus is the conditional update that makes double-analyze
// safe: the row moves only when its current status is in from.
func (r *DeckRepository) TransitionStatus(ctx context.Context, owner string, id domain.DeckID, from []records.Status, to records.Status) (bool, error) {
	marks, inArgs := statusArgs(from)
	q := `
UPDATE pitch_decks
SET status=?, updated_at=?
WHERE user_id=? AND id=? AND status IN (` + marks + `);`

	args := append([]any{string(to), time.Now().UTC(), owner, id}, inArgs...)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *DeckRepository) SetResult(ctx context.Context, owner string, id domain.DeckID, status records.Status, payload *analysis.Payload) error {
	const q = `
UPDATE pitch_decks
SET status=?, analysis=?, updated_at=?
WHERE user_id=? AND id=?;`
	p, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, string(status), p, time.Now().UTC(), owner, id)
	return err
}

func (r *DeckRepository) Delete(ctx context.Context, owner string, id domain.DeckID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pitch_decks WHERE user_id=? AND id=?;`, owner, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *DeckRepository) DeleteByOwner(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pitch_decks WHERE user_id=?;`, owner)
	return err
}

func (r *DeckRepository) Counts(ctx context.Context, owner string) (int, int, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status='analyzed' THEN 1 ELSE 0 END),0)
FROM pitch_decks WHERE user_id=?;`
	var total, analyzed int
	if err := r.db.QueryRowContext(ctx, q, owner).Scan(&total, &analyzed); err != nil {
		return 0, 0, err
	}
	return total, analyzed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (*domain.PitchDeck, error) {
	var d domain.PitchDeck
	var payload sql.NullString
	if err := row.Scan(
		&d.ID, &d.UserID, &d.Filename, &d.FileKey, &d.FileType, &d.FileSize,
		&d.Status, &payload, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p, err := scanPayload(payload)
	if err != nil {
		return nil, err
	}
	d.Analysis = p
	return &d, nil
}
