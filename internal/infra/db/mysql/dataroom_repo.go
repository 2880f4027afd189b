package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domain "github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const docColumns = `id, user_id, filename, file_key, file_type, file_size, category, subcategory, status, analysis, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO data_room_documents
(id, user_id, filename, file_key, file_type, file_size, category, subcategory, status, analysis, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?);
`
	payload, err := marshalPayload(d.Analysis)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		d.ID, d.UserID, d.Filename, d.FileKey, d.FileType, d.FileSize,
		d.Category, d.Subcategory, d.Status, payload, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) Get(ctx context.Context, owner string, id domain.DocumentID) (*domain.Document, error) {
	const q = `
SELECT ` + docColumns + `
FROM data_room_documents
WHERE user_id=? AND id=? LIMIT 1;
`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.ErrNotFound
	}
	return d, err
}

func (r *DocumentRepository) List(ctx context.Context, owner, category string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 500
	}
	q := `
SELECT ` + docColumns + `
FROM data_room_documents
WHERE user_id=?`
	args := []any{owner}
	if category != "" {
		q += ` AND category=?`
		args = append(args, category)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?;`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) TransitionStatus(ctx context.Context, owner string, id domain.DocumentID, from []records.Status, to records.Status) (bool, error) {
	marks, inArgs := statusArgs(from)
	q := `
UPDATE data_room_documents
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

func (r *DocumentRepository) SetResult(ctx context.Context, owner string, id domain.DocumentID, status records.Status, payload *analysis.Payload) error {
	const q = `
UPDATE data_room_documents
SET status=?, analysis=?, updated_at=?
WHERE user_id=? AND id=?;`
	p, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, string(status), p, time.Now().UTC(), owner, id)
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, owner string, id domain.DocumentID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM data_room_documents WHERE user_id=? AND id=?;`, owner, id)
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

func (r *DocumentRepository) DeleteByOwner(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM data_room_documents WHERE user_id=?;`, owner)
	return err
}

func (r *DocumentRepository) Counts(ctx context.Context, owner string) (int, int, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status='analyzed' THEN 1 ELSE 0 END),0)
FROM data_room_documents WHERE user_id=?;`
	var total, analyzed int
	if err := r.db.QueryRowContext(ctx, q, owner).Scan(&total, &analyzed); err != nil {
		return 0, 0, err
	}
	return total, analyzed, nil
}

func (r *DocumentRepository) CountByCategory(ctx context.Context, owner string) (map[string]int, error) {
	const q = `
SELECT category, COUNT(*)
FROM data_room_documents
WHERE user_id=?
GROUP BY category;`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[cat] = n
	}
	return out, rows.Err()
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var payload sql.NullString
	if err := row.Scan(
		&d.ID, &d.UserID, &d.Filename, &d.FileKey, &d.FileType, &d.FileSize,
		&d.Category, &d.Subcategory, &d.Status, &payload, &d.CreatedAt, &d.UpdatedAt,
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
