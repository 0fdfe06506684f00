// Package devices declares the repository contract for paired devices.
package devices

import (
	"context"

	"github.com/githuba42r/imagetools/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id string) (*models.Device, error)
	GetByLongTermSecretHash(ctx context.Context, hash string) (*models.Device, error)
	Revoke(ctx context.Context, id string) error
}
