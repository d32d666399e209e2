// Package uploads stores product images on local disk under random names
// and serves them back over HTTP.
package uploads
