// Package observability provides structured logging and Prometheus metrics
// for the admin API.
package observability
