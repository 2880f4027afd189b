package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables when they don't exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id CHAR(36) PRIMARY KEY,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(100) NOT NULL,
  name VARCHAR(255) NOT NULL,
  company_name VARCHAR(255) NOT NULL DEFAULT '',
  created_at DATETIME(6) NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS pitch_decks (
  id CHAR(36) PRIMARY KEY,
  user_id CHAR(36) NOT NULL,
  filename VARCHAR(512) NOT NULL,
  file_key VARCHAR(512) NOT NULL,
  file_type VARCHAR(16) NOT NULL,
  file_size BIGINT NOT NULL DEFAULT 0,
  status VARCHAR(16) NOT NULL,
  analysis JSON NULL,
  created_at DATETIME(6) NOT NULL,
  updated_at DATETIME(6) NOT NULL,
  INDEX idx_pitch_decks_user_created (user_id, created_at)
);`,
		`CREATE TABLE IF NOT EXISTS data_room_documents (
  id CHAR(36) PRIMARY KEY,
  user_id CHAR(36) NOT NULL,
  filename VARCHAR(512) NOT NULL,
  file_key VARCHAR(512) NOT NULL,
  file_type VARCHAR(16) NOT NULL,
  file_size BIGINT NOT NULL DEFAULT 0,
  category VARCHAR(64) NOT NULL,
  subcategory VARCHAR(255) NOT NULL DEFAULT '',
  status VARCHAR(16) NOT NULL,
  analysis JSON NULL,
  created_at DATETIME(6) NOT NULL,
  updated_at DATETIME(6) NOT NULL,
  INDEX idx_dataroom_user_created (user_id, created_at),
  INDEX idx_dataroom_user_category (user_id, category)
);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
