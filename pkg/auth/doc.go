// Package auth holds the user model, credential handling, and the
// cookie-session issuer/verifier. Session validity is purely cryptographic;
// nothing is persisted server-side, so a token stays valid until it expires.
package auth
