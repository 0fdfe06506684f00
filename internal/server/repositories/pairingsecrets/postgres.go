package pairingsecrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/githuba42r/imagetools/internal/common"
	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/models"
)

// PostgresRepository implements pairing secret persistence over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pairing secret record (hash and salt only).
func (r *PostgresRepository) Create(ctx context.Context, secret *models.PairingSecret) error {
	query := `
		INSERT INTO pairing_secrets (id, session_id, salt, hash)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		secret.ID, secret.SessionID, secret.Salt, secret.Hash); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Get returns the pairing secret with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.PairingSecret, error) {
	query := `
		SELECT id, session_id, salt, hash
		FROM pairing_secrets
		WHERE id = $1
	`
	secret := &models.PairingSecret{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&secret.ID, &secret.SessionID, &secret.Salt, &secret.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return secret, nil
}
