// Package credstore persists the pairing state of this client against one
// backend instance. The store holds at most one credential; all mutations
// replace or remove it atomically, so a concurrent Load observes either the
// previous complete credential or nothing.
package credstore

import (
	"strings"
	"time"
)

// Kind discriminates the two credential shapes issued by the backend.
type Kind string

const (
	// KindOAuth is the access/refresh token pair issued by the pairing-code
	// exchange.
	KindOAuth Kind = "oauth"
	// KindLegacy is the long-term secret issued by the shared-secret flow.
	// It carries no locally tracked expiry and is validated per use.
	KindLegacy Kind = "legacy"
)

// Credential is the full pairing state for one principal. A credential is
// either absent or complete: InstanceURL plus at least one usable secret.
// Zero time values mean "unknown".
type Credential struct {
	Kind             Kind
	InstanceURL      string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	LongTermSecret   string
	DeviceID         string
	SessionID        string
}

// Complete reports whether the credential satisfies the store invariant:
// an instance URL and at least one secret usable for privileged calls.
func (c *Credential) Complete() bool {
	if c == nil || c.InstanceURL == "" {
		return false
	}
	return c.AccessToken != "" || c.LongTermSecret != ""
}

// Secret returns the value sent as the bearer credential on privileged
// calls: the long-term secret for legacy credentials, the access token
// otherwise.
func (c *Credential) Secret() string {
	if c.Kind == KindLegacy {
		return c.LongTermSecret
	}
	return c.AccessToken
}

// NormalizeInstanceURL strips the trailing slash so stored URLs compare
// equal regardless of how the user typed them.
func NormalizeInstanceURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
