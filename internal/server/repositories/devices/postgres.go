package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/githuba42r/imagetools/internal/common"
	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/models"
)

// PostgresRepository implements device persistence over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new device row.
func (r *PostgresRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, session_id, name, client_version, kind, long_term_secret_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		device.ID, device.SessionID, device.Name, device.ClientVersion,
		device.Kind, device.LongTermSecretHash); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Get returns the device with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Device, error) {
	query := `
		SELECT id, session_id, name, client_version, kind, long_term_secret_hash, revoked
		FROM devices
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByLongTermSecretHash looks up a legacy device by the hash of its
// long-term secret, or returns common.ErrorNotFound.
func (r *PostgresRepository) GetByLongTermSecretHash(ctx context.Context, hash string) (*models.Device, error) {
	query := `
		SELECT id, session_id, name, client_version, kind, long_term_secret_hash, revoked
		FROM devices
		WHERE long_term_secret_hash = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, hash))
}

// Revoke marks the device revoked. Revoking an already revoked or missing
// device is not an error.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	query := `
		UPDATE devices
		SET revoked = TRUE
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Device, error) {
	device := &models.Device{}
	err := row.Scan(&device.ID, &device.SessionID, &device.Name, &device.ClientVersion,
		&device.Kind, &device.LongTermSecretHash, &device.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return device, nil
}
