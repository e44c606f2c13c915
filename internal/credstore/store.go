// Package credstore persists the single bearer credential that authorizes
// requests to the claims backend. The token is opaque; absence means
// unauthenticated.
package credstore

// Store holds at most one bearer token
type Store interface {
	// Get returns the stored token, or false when none is stored
	// or the backing storage is unreadable
	Get() (string, bool)

	// Set replaces the stored token
	Set(token string) error

	// Clear erases the stored token. Clearing an empty store is a no-op.
	Clear() error
}
