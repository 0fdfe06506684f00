package credstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/githuba42r/imagetools/internal/dbx"
)

// SQLiteStore keeps the credential in a single-row sqlite table. Writes go
// through a transaction that deletes the old row and inserts the new one,
// so readers never observe a mix of old and new fields.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT kind, instance_url, access_token, refresh_token,
		       access_expires_at, refresh_expires_at,
		       long_term_secret, device_id, session_id
		FROM credential WHERE id = 1`)

	var c Credential
	var kind string
	var accessExp, refreshExp sql.NullInt64
	err := row.Scan(&kind, &c.InstanceURL, &c.AccessToken, &c.RefreshToken,
		&accessExp, &refreshExp, &c.LongTermSecret, &c.DeviceID, &c.SessionID)
	if err != nil {
		// Missing or corrupt storage is indistinguishable from "not
		// paired" for every caller, so both map to absent.
		return nil, nil
	}

	c.Kind = Kind(kind)
	if accessExp.Valid {
		c.AccessExpiresAt = time.Unix(accessExp.Int64, 0).UTC()
	}
	if refreshExp.Valid {
		c.RefreshExpiresAt = time.Unix(refreshExp.Int64, 0).UTC()
	}
	if !c.Complete() {
		return nil, nil
	}
	return &c, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c *Credential) error {
	if !c.Complete() {
		return fmt.Errorf("refusing to save incomplete credential")
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credential`); err != nil {
			return fmt.Errorf("failed to replace credential: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credential (id, kind, instance_url, access_token, refresh_token,
			                        access_expires_at, refresh_expires_at,
			                        long_term_secret, device_id, session_id)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(c.Kind), c.InstanceURL, c.AccessToken, c.RefreshToken,
			unixOrNil(c.AccessExpiresAt), unixOrNil(c.RefreshExpiresAt),
			c.LongTermSecret, c.DeviceID, c.SessionID)
		if err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credential`); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IsPaired(ctx context.Context) bool {
	c, err := s.Load(ctx)
	return err == nil && c != nil
}

func unixOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}
