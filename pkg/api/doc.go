// Package api wires the HTTP surface: the router, the middleware chain,
// and one handler group per resource.
package api
