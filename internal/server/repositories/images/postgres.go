package images

import (
	"context"
	"fmt"

	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/models"
)

// PostgresRepository implements image metadata persistence over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an image metadata row.
func (r *PostgresRepository) Create(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO images (id, session_id, device_id, file_name, storage_key)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		image.ID, image.SessionID, image.DeviceID, image.FileName, image.StorageKey); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// ListBySession returns all images uploaded for a session, newest first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.Image, error) {
	query := `
		SELECT id, session_id, device_id, file_name, storage_key, created_at
		FROM images
		WHERE session_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Image
	for rows.Next() {
		image := &models.Image{}
		if err := rows.Scan(&image.ID, &image.SessionID, &image.DeviceID,
			&image.FileName, &image.StorageKey, &image.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
