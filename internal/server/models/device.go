// Package models defines server-side data models persisted in the database.
package models

import "time"

// Device kinds. OAuth devices authenticate with short-lived JWTs, legacy
// devices with a long-term secret validated per use.
const (
	DeviceKindOAuth  = "oauth"
	DeviceKindLegacy = "legacy"
)

// Device is a paired client bound to a web session.
type Device struct {
	ID            string
	SessionID     string
	Name          string
	ClientVersion string
	Kind          string
	// LongTermSecretHash is the SHA-256 hex of the legacy secret, empty
	// for oauth devices.
	LongTermSecretHash string
	Revoked            bool
	CreatedAt          time.Time
}
