package database

import (
	"context"
	"fmt"
	"strings"

	"shopledger/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens the connection pool for the configured driver and pings it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" && strings.Contains(cfg.URL, ":memory:") {
		// Every connection to an in-memory sqlite database sees its own copy.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// Migrate creates the schema if it does not exist yet. The statements are
// portable between PostgreSQL and sqlite.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i, err)
		}
	}
	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS shops (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		whatsapp_phone TEXT,
		description TEXT,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('owner', 'staff')),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT,
		purchase_price NUMERIC(14, 2),
		selling_price NUMERIC(14, 2) NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		image_url TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('sale', 'expense', 'withdrawal')),
		amount NUMERIC(14, 2) NOT NULL,
		quantity INTEGER,
		product_id TEXT REFERENCES products(id) ON DELETE SET NULL,
		comment TEXT,
		created_by TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_shop ON products (shop_id, name)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_shop_created ON transactions (shop_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_users_shop ON users (shop_id)`,
}
