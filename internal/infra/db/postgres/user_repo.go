package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bryanwahyu/ventur-api/internal/domain/users"
)

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *users.User) error {
	const q = `
INSERT INTO users (id, email, password_hash, name, company_name, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.Name, u.CompanyName, u.CreatedAt)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getWhere(ctx, "id=$1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getWhere(ctx, "email=$1", email)
}

func (r *UserRepository) getWhere(ctx context.Context, cond string, arg any) (*users.User, error) {
	q := `
SELECT id, email, password_hash, name, company_name, created_at
FROM users WHERE ` + cond + ` LIMIT 1;`
	var u users.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CompanyName, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
