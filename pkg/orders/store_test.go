package orders

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestStorePaginateLoadsItemsAndTotal(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT o.id\\)").
		WithArgs("%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT DISTINCT o.id, o.name, o.email, o.created_at").
		WithArgs("%ada%", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow("o-1", "Ada Lovelace", "ada@example.com", now))
	mock.ExpectQuery("SELECT order_id, id, product_title, price, quantity").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "id", "product_title", "price", "quantity"}).
			AddRow("o-1", int64(1), "Keyboard", int64(4500), int64(2)).
			AddRow("o-1", int64(2), "Mouse", int64(1500), int64(1)))

	page, err := store.Paginate(context.Background(), 1, "ada")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Total)
	require.Len(t, page.Data, 1)
	assert.Len(t, page.Data[0].Items, 2)
	assert.Equal(t, int64(10500), page.Data[0].Total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorePaginateMissSkipsItemQuery(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT o.id\\)").
		WithArgs("%nothing%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT DISTINCT o.id, o.name, o.email, o.created_at").
		WithArgs("%nothing%", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at"}))

	page, err := store.Paginate(context.Background(), 1, "nothing")
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Meta.Total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAllWithItems(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, name, email, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow("o-1", "Ada Lovelace", "ada@example.com", now).
			AddRow("o-2", "Bob", "bob@example.com", now))
	mock.ExpectQuery("SELECT order_id, id, product_title, price, quantity").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "id", "product_title", "price", "quantity"}).
			AddRow("o-2", int64(3), "Desk", int64(20000), int64(1)))

	list, err := store.AllWithItems(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].Items)
	assert.Zero(t, list[0].Total)
	require.Len(t, list[1].Items, 1)
	assert.Equal(t, int64(20000), list[1].Total)
}

func TestStoreChart(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT TO_CHAR").
		WillReturnRows(sqlmock.NewRows([]string{"date", "sum"}).
			AddRow("2026-08-30", int64(10500)).
			AddRow("2026-08-31", int64(20000)))

	points, err := store.Chart(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-30", points[0].Date)
	assert.Equal(t, int64(20000), points[1].Sum)
}
