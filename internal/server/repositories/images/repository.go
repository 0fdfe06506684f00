// Package images declares the repository contract for image metadata.
package images

import (
	"context"

	"github.com/githuba42r/imagetools/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, image *models.Image) error
	ListBySession(ctx context.Context, sessionID string) ([]*models.Image, error)
}
