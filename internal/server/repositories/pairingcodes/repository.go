// Package pairingcodes declares the repository contract for single-use
// pairing codes.
package pairingcodes

import (
	"context"
	"time"

	"github.com/githuba42r/imagetools/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, code, sessionID string, validity time.Duration) error
	// Consume atomically marks an unused code as used and returns it.
	// A missing or already consumed code yields common.ErrorNotFound.
	Consume(ctx context.Context, code string) (*models.PairingCode, error)
}
