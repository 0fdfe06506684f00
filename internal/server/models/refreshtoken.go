package models

import "time"

// RefreshToken is an opaque rotating token stored by hash only.
type RefreshToken struct {
	TokenHash string
	DeviceID  string
	Expires   time.Time
	CreatedAt time.Time
}
