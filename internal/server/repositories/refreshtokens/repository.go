// Package refreshtokens declares the repository contract for rotating
// refresh tokens, stored by hash only.
package refreshtokens

import (
	"context"
	"time"

	"github.com/githuba42r/imagetools/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, deviceID string, tokenHash string, validity time.Duration) error
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteByDevice(ctx context.Context, deviceID string) error
}
