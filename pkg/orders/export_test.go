package orders

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVOneRowPerItem(t *testing.T) {
	list := []Order{
		{
			ID:    "o-1",
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
			Items: []OrderItem{
				{ID: 1, ProductTitle: "Keyboard", Price: 4500, Quantity: 2},
				{ID: 2, ProductTitle: "Mouse", Price: 1500, Quantity: 1},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, list))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Product Title", "Price", "Quantity"}, rows[0])
	assert.Equal(t, []string{"o-1", "Ada Lovelace", "ada@example.com", "Keyboard", "4500", "2"}, rows[1])
	assert.Equal(t, []string{"o-1", "Ada Lovelace", "ada@example.com", "Mouse", "1500", "1"}, rows[2])
}

func TestWriteCSVEmptyOrderStillExported(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Order{{ID: "o-2", Name: "Bob", Email: "bob@example.com"}}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "o-2", rows[1][0])
	assert.Equal(t, "", rows[1][3])
}

func TestWriteCSVHeaderOnlyWhenNoOrders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestComputeTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Price: 4500, Quantity: 2},
		{Price: 1500, Quantity: 1},
	}}
	assert.Equal(t, int64(10500), o.ComputeTotal())
	assert.Zero(t, (&Order{}).ComputeTotal())
}
