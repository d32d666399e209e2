// Package catalog manages the product catalog: product records, their
// image references, and paginated title/description search.
package catalog
