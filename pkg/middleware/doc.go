// Package middleware provides the request pipeline gates: session
// authentication (cookie token to resolved user) and RBAC permission checks.
package middleware
