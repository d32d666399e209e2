// Package postgres bootstraps the PostgreSQL connection pool, applies the
// schema, and seeds the default permissions and roles.
package postgres
