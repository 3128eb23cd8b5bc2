package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	logger.Info("connected to postgres")

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("schema initialized")
	return pool, nil
}

// initSchema creates the tables the ordering flow reads and writes.
func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	// -------------------------------
	// USERS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'CUSTOMER',
		created_at TIMESTAMPTZ DEFAULT now()
	)`,

	// -------------------------------
	// RESTAURANTS + MENU
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS restaurants (
		id BIGSERIAL PRIMARY KEY,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		cuisine_type VARCHAR(50) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone VARCHAR(30) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_owner_id ON restaurants(owner_id)`,
	`CREATE TABLE IF NOT EXISTS menu_categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGSERIAL PRIMARY KEY,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		category_id BIGINT REFERENCES menu_categories(id),
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price BIGINT NOT NULL CHECK (price >= 0),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ DEFAULT now()
	)`,

	// -------------------------------
	// ORDERS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		total_amount BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Pending'
			CHECK (status IN ('Pending', 'Preparing', 'Ready', 'Delivered', 'Cancelled')),
		special_instructions TEXT NOT NULL DEFAULT '',
		payment_screenshot_path TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_item_id BIGINT NOT NULL REFERENCES menu_items(id),
		quantity INT NOT NULL CHECK (quantity > 0),
		price BIGINT NOT NULL,
		special_instructions TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_restaurant_id ON orders(restaurant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,

	// -------------------------------
	// PAYMENT EVIDENCE ORPHANS (manual reconciliation)
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS payment_orphans (
		id BIGSERIAL PRIMARY KEY,
		customer_id UUID NOT NULL,
		restaurant_id BIGINT NOT NULL,
		evidence_ref TEXT NOT NULL,
		reason TEXT NOT NULL,
		reconciled_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ DEFAULT now()
	)`,
}
