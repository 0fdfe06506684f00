package credstore

import "context"

// Store is the single source of truth for pairing state. Consumers must
// re-read before any decision that depends on the credential; a different
// code path (revocation, a parallel refresh) may have replaced or cleared
// it across any suspension point.
type Store interface {
	// Load returns the stored credential, or nil when the client is not
	// paired. Missing or unreadable underlying storage yields nil rather
	// than an error; the returned error is reserved for context
	// cancellation.
	Load(ctx context.Context) (*Credential, error)

	// Save atomically replaces the stored credential. Credentials that are
	// not Complete are rejected before anything is written.
	Save(ctx context.Context, c *Credential) error

	// Clear atomically removes the stored credential. Clearing an empty
	// store is not an error.
	Clear(ctx context.Context) error

	// IsPaired reports whether a complete credential is stored. This is
	// derived from Load, never cached.
	IsPaired(ctx context.Context) bool
}
