package services

import (
	"context"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/logging"
)

// UploadService sends images into the paired session through the gate.
type UploadService struct {
	gate   *UploadGate
	logger logging.Logger
}

func NewUploadService(gate *UploadGate, logger logging.Logger) *UploadService {
	return &UploadService{gate: gate, logger: logger.With("module", "upload")}
}

// Upload registers the image with the backend and puts the bytes to the
// returned storage URL. Returns the server-assigned image id.
func (s *UploadService) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	var imageID string

	err := s.gate.Perform(ctx, func(ctx context.Context, cred *credstore.Credential, client api.Client) error {
		ticket, err := client.CreateUpload(ctx, cred.Secret(), fileName, contentType)
		if err != nil {
			return err
		}
		if err := client.PutFile(ctx, ticket.UploadURL, data, contentType); err != nil {
			return err
		}
		imageID = ticket.ImageID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "image uploaded", "file", fileName, "image_id", imageID)
	return imageID, nil
}
