// Package api speaks the backend's JSON protocol: pairing, token lifecycle,
// and the privileged image-upload calls. It maps transport and HTTP failures
// onto a small set of sentinel errors so the service layer can reason about
// them with errors.Is.
package api

import (
	"context"
	"time"
)

// ClientMetadata is descriptive information sent with pairing requests for
// audit and display on the web interface. It never influences authorization.
type ClientMetadata struct {
	Name    string
	Version string
}

// TokenGrant is the backend's answer to an exchange or refresh call. Both
// pairing variants produce the same shape: the shared-secret flow fills
// LongTermSecret instead of AccessToken and leaves the expiries zero.
type TokenGrant struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	LongTermSecret   string
	DeviceID         string
	SessionID        string
}

// UploadTicket is the server's go-ahead for one image upload: the image
// record id and a presigned URL the file bytes go to directly.
type UploadTicket struct {
	ImageID   string
	UploadURL string
}

// Client is the transport consumed by the pairing and upload services.
type Client interface {
	// ExchangeCode turns a single-use pairing code into a token grant.
	ExchangeCode(ctx context.Context, code string, meta ClientMetadata) (*TokenGrant, error)

	// ExchangeSecret validates a user-pasted shared secret and returns a
	// legacy long-term-secret grant.
	ExchangeSecret(ctx context.Context, sharedSecret string, meta ClientMetadata) (*TokenGrant, error)

	// Refresh mints a new access token from a refresh token. The server
	// rotates refresh tokens, so the grant carries the replacement.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// Validate asks the server whether the given credential is still good.
	Validate(ctx context.Context, secret string) (bool, error)

	// Unpair revokes this device on the server.
	Unpair(ctx context.Context, secret string) error

	// CreateUpload registers an image and returns where to put the bytes.
	CreateUpload(ctx context.Context, secret, fileName, contentType string) (*UploadTicket, error)

	// PutFile uploads the file bytes to a presigned URL.
	PutFile(ctx context.Context, uploadURL string, data []byte, contentType string) error
}

// Factory builds a Client bound to one backend instance URL. The instance
// is only known once the user pairs, so services construct clients through
// this rather than holding one.
type Factory func(instanceURL string) Client
