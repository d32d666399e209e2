package orders

import "time"

// Order is a customer purchase made of one or more line items
type Order struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"order_items"`
	Total     int64       `json:"total"`
}

// OrderItem is one purchased line. ProductTitle is denormalized at purchase
// time so later catalog edits do not rewrite order history.
type OrderItem struct {
	ID           int64  `json:"id"`
	ProductTitle string `json:"product_title"`
	Price        int64  `json:"price"`
	Quantity     int64  `json:"quantity"`
}

// ChartPoint is one day's revenue for the sales chart
type ChartPoint struct {
	Date string `json:"date"`
	Sum  int64  `json:"sum"`
}

// ComputeTotal sums price times quantity over the order's items
func (o *Order) ComputeTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * item.Quantity
	}
	return total
}
