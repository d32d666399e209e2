package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"admind/pkg/pagination"
)

// ErrProductNotFound is returned when no product matches the lookup
var ErrProductNotFound = errors.New("product not found")

// Store handles product persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new product store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateProduct inserts a product and fills in its generated timestamps
func (s *Store) CreateProduct(ctx context.Context, product *Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, title, description, image, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, product.ID, product.Title, product.Description, product.Image, product.Price).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	// The id column is uuid-typed; a malformed id cannot match anything and
	// would otherwise fail the bind server-side.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	var p Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, image, price, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// UpdateProduct persists product fields and bumps updated_at
func (s *Store) UpdateProduct(ctx context.Context, product *Product) error {
	if _, err := uuid.Parse(product.ID); err != nil {
		return ErrProductNotFound
	}

	err := s.db.QueryRowContext(ctx, `
		UPDATE products SET title = $1, description = $2, image = $3, price = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, product.Title, product.Description, product.Image, product.Price, product.ID).
		Scan(&product.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// DeleteProduct removes a product by ID
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Paginate returns one window of products, optionally filtered by a
// case-insensitive substring match on title or description. The filter runs
// in SQL against the whole collection, so meta.total reflects the filtered
// count.
func (s *Store) Paginate(ctx context.Context, page int, search string) (pagination.Page[Product], error) {
	like := "%" + search + "%"

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products WHERE title ILIKE $1 OR description ILIKE $1
	`, like).Scan(&total)
	if err != nil {
		return pagination.Page[Product]{}, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, image, price, created_at, updated_at
		FROM products
		WHERE title ILIKE $1 OR description ILIKE $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, like, pagination.DefaultPageSize, pagination.Offset(page, pagination.DefaultPageSize))
	if err != nil {
		return pagination.Page[Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.Price,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return pagination.Page[Product]{}, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[Product]{}, err
	}

	return pagination.New(products, total, page, pagination.DefaultPageSize), nil
}
