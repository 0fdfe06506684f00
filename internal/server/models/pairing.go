package models

import "time"

// PairingCode is a single-use short-lived code minted by the web UI.
type PairingCode struct {
	Code      string
	SessionID string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// PairingSecret is an admin-issued shared secret for legacy pairing.
// Only the argon2id hash and its salt are stored.
type PairingSecret struct {
	ID        string
	SessionID string
	Salt      []byte
	Hash      []byte
	CreatedAt time.Time
}
