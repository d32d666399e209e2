package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var exportHeader = []string{"ID", "Name", "Email", "Product Title", "Price", "Quantity"}

// WriteCSV streams orders as CSV, one row per line item. The order's ID,
// customer name, and email repeat on each of its item rows; an order with no
// items still produces one row so it is visible in the export.
func WriteCSV(w io.Writer, list []Order) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, o := range list {
		if len(o.Items) == 0 {
			if err := cw.Write([]string{o.ID, o.Name, o.Email, "", "", ""}); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}
		for _, item := range o.Items {
			row := []string{
				o.ID,
				o.Name,
				o.Email,
				item.ProductTitle,
				strconv.FormatInt(item.Price, 10),
				strconv.FormatInt(item.Quantity, 10),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
