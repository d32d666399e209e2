package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"admind/pkg/pagination"
)

// Store handles order persistence and the reporting queries
type Store struct {
	db *sql.DB
}

// NewStore creates a new order store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Paginate returns one window of orders with their items populated. The
// optional filter matches customer name, customer email, or any line item's
// product title, case-insensitively, in SQL against the whole collection.
func (s *Store) Paginate(ctx context.Context, page int, search string) (pagination.Page[Order], error) {
	like := "%" + search + "%"

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT o.id)
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.name ILIKE $1 OR o.email ILIKE $1 OR i.product_title ILIKE $1
	`, like).Scan(&total)
	if err != nil {
		return pagination.Page[Order]{}, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT o.id, o.name, o.email, o.created_at
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.name ILIKE $1 OR o.email ILIKE $1 OR i.product_title ILIKE $1
		ORDER BY o.created_at, o.id
		LIMIT $2 OFFSET $3
	`, like, pagination.DefaultPageSize, pagination.Offset(page, pagination.DefaultPageSize))
	if err != nil {
		return pagination.Page[Order]{}, fmt.Errorf("failed to list orders: %w", err)
	}

	list, err := scanOrders(rows)
	if err != nil {
		return pagination.Page[Order]{}, err
	}

	if err := s.loadItems(ctx, list); err != nil {
		return pagination.Page[Order]{}, err
	}

	return pagination.New(list, total, page, pagination.DefaultPageSize), nil
}

// AllWithItems returns every order with items, oldest first, for the CSV
// export
func (s *Store) AllWithItems(ctx context.Context) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, created_at
		FROM orders
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	list, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Chart returns per-day revenue, oldest day first
func (s *Store) Chart(ctx context.Context) ([]ChartPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT TO_CHAR(o.created_at, 'YYYY-MM-DD') AS date,
		       COALESCE(SUM(i.price * i.quantity), 0) AS sum
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		GROUP BY date
		ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart: %w", err)
	}
	defer rows.Close()

	points := make([]ChartPoint, 0)
	for rows.Next() {
		var p ChartPoint
		if err := rows.Scan(&p.Date, &p.Sum); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// scanOrders drains order header rows; items are loaded separately
func scanOrders(rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	list := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Name, &o.Email, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = make([]OrderItem, 0)
		list = append(list, o)
	}
	return list, rows.Err()
}

// loadItems attaches line items to the given orders in one query and fills
// in each order's total
func (s *Store) loadItems(ctx context.Context, list []Order) error {
	if len(list) == 0 {
		return nil
	}

	byID := make(map[string]*Order, len(list))
	ids := make([]string, 0, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
		ids = append(ids, list[i].ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, id, product_title, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    OrderItem
		)
		if err := rows.Scan(&orderID, &item.ID, &item.ProductTitle, &item.Price, &item.Quantity); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range list {
		list[i].Total = list[i].ComputeTotal()
	}
	return nil
}
