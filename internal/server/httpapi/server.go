// Package httpapi exposes the server's pairing, token, and upload
// operations as a JSON HTTP API.
package httpapi

import (
	"context"
	"time"

	"github.com/githuba42r/imagetools/internal/logging"
	"github.com/githuba42r/imagetools/internal/server/models"
	"github.com/githuba42r/imagetools/internal/server/services"
)

// DeviceProvider is the slice of DeviceService the handlers need.
type DeviceProvider interface {
	StartPairing(ctx context.Context, sessionID string) (string, time.Time, error)
	ExchangeCode(ctx context.Context, code, clientName, clientVersion string) (*services.DeviceGrant, error)
	ExchangeSecret(ctx context.Context, sharedSecret, deviceName string) (*services.LegacyGrant, error)
	IssueSecret(ctx context.Context, sessionID string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenGrant, error)
	Validate(ctx context.Context, token string) (bool, error)
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
	Revoke(ctx context.Context, deviceID string) error
}

// ImageProvider is the slice of ImageService the handlers need.
type ImageProvider interface {
	CreateUpload(ctx context.Context, identity *services.Identity, fileName, contentType string) (*services.Upload, error)
	ListImages(ctx context.Context, sessionID string) ([]*models.Image, error)
}

// Server holds the handler dependencies.
type Server struct {
	devices DeviceProvider
	images  ImageProvider
	logger  logging.Logger
}

// NewServer constructs an API server over the given services.
func NewServer(devices DeviceProvider, images ImageProvider, logger logging.Logger) *Server {
	return &Server{devices: devices, images: images, logger: logger}
}
