package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"admind/pkg/rbac"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id       BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		full_name     TEXT NOT NULL,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role_id       BIGINT REFERENCES roles(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image       TEXT NOT NULL DEFAULT '',
		price       BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id            BIGSERIAL PRIMARY KEY,
		order_id      UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_title TEXT NOT NULL,
		price         BIGINT NOT NULL DEFAULT 0,
		quantity      BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role_id ON users(role_id)`,
}

// Migrate applies the schema. Every statement is idempotent so this runs
// unconditionally at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// seedRoles maps each default role to its permission tags
var seedRoles = map[string][]string{
	"Admin": {
		"view_users", "edit_users",
		"view_roles", "edit_roles",
		"view_products", "edit_products",
		"view_orders", "edit_orders",
	},
	"Editor": {
		"view_users", "edit_users",
		"view_roles",
		"view_products", "edit_products",
		"view_orders", "edit_orders",
	},
	"Viewer": {
		"view_users", "view_roles", "view_products", "view_orders",
	},
}

// Seed inserts the default permission tags and the Admin, Editor and Viewer
// roles. Inserts are upserts keyed on name, so reruns are no-ops and manual
// permission grants made since the last run survive.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, resource := range []string{rbac.ResourceUsers, rbac.ResourceRoles, rbac.ResourceProducts, rbac.ResourceOrders} {
		for _, tag := range []string{rbac.ViewTag(resource), rbac.EditTag(resource)} {
			if _, err := db.ExecContext(ctx, `
				INSERT INTO permissions (name) VALUES ($1)
				ON CONFLICT (name) DO NOTHING
			`, tag); err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", tag, err)
			}
		}
	}

	for name, tags := range seedRoles {
		var roleID int64
		err := db.QueryRowContext(ctx, `
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}

		for _, tag := range tags {
			if _, err := db.ExecContext(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT $1, id FROM permissions WHERE name = $2
				ON CONFLICT DO NOTHING
			`, roleID, tag); err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", tag, name, err)
			}
		}
	}
	return nil
}
