// Package pairingsecrets declares the repository contract for admin-issued
// shared pairing secrets.
package pairingsecrets

import (
	"context"

	"github.com/githuba42r/imagetools/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, secret *models.PairingSecret) error
	Get(ctx context.Context, id string) (*models.PairingSecret, error)
}
