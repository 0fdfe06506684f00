package pairingcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/githuba42r/imagetools/internal/common"
	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/models"
)

// PostgresRepository implements pairing code persistence over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new pairing code expiring at now+validity.
func (r *PostgresRepository) Create(ctx context.Context, code, sessionID string, validity time.Duration) error {
	query := `
		INSERT INTO pairing_codes (code, session_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, code, sessionID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Consume flips the used flag and returns the row in one statement, so two
// concurrent exchanges of the same code cannot both succeed.
func (r *PostgresRepository) Consume(ctx context.Context, code string) (*models.PairingCode, error) {
	query := `
		UPDATE pairing_codes
		SET used = TRUE
		WHERE code = $1 AND used = FALSE
		RETURNING session_id, expires_at
	`
	pc := &models.PairingCode{Code: code, Used: true}
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&pc.SessionID, &pc.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pc, nil
}
