// Package orders manages sales orders and their line items, plus the two
// reporting views over them: a CSV export and a per-day revenue chart.
package orders
