// Package services contains server-side business logic. This file implements
// DeviceService, which handles pairing, issuing/refreshing tokens, validation,
// and device revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/githuba42r/imagetools/internal/common"
	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/auth"
	"github.com/githuba42r/imagetools/internal/server/config"
	"github.com/githuba42r/imagetools/internal/server/models"
	"github.com/githuba42r/imagetools/internal/server/repositories/repomanager"
)

// TokenGrant bundles a short-lived access token and a long-lived rotating
// refresh token, with their expiry times.
type TokenGrant struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// DeviceGrant is the result of a successful pairing exchange.
type DeviceGrant struct {
	TokenGrant
	DeviceID  string
	SessionID string
}

// LegacyGrant is the result of a successful shared-secret exchange.
type LegacyGrant struct {
	LongTermSecret string
	RefreshSecret  string
	DeviceID       string
	SessionID      string
}

// Identity is an authenticated caller, resolved from a bearer token.
type Identity struct {
	DeviceID  string
	SessionID string
	Kind      string
}

// DeviceService provides pairing and token lifecycle operations:
//   - StartPairing: mint a single-use pairing code for a web session
//   - ExchangeCode / ExchangeSecret: pair a device and issue credentials
//   - Refresh: rotate refresh tokens and mint new access tokens
//   - Validate / Authenticate: check presented tokens against device state
//   - Revoke: unpair a device and invalidate everything it holds
type DeviceService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	pairingCodeValidityDuration  time.Duration
}

// NewDeviceService constructs a DeviceService using repositories and server config.
func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *DeviceService {
	return &DeviceService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		pairingCodeValidityDuration:  cfg.PairingCodeValidityDuration,
	}
}

// StartPairing mints a single-use pairing code bound to the given web
// session. The code expires after the configured validity window.
func (s *DeviceService) StartPairing(ctx context.Context, sessionID string) (string, time.Time, error) {
	raw, err := common.MakeRandHexString(6)
	if err != nil {
		return "", time.Time{}, common.ErrorInternal
	}
	code := strings.ToUpper(raw)
	expiresAt := time.Now().Add(s.pairingCodeValidityDuration)

	repo := s.repomanager.PairingCodes(s.db)
	if err := repo.Create(ctx, code, sessionID, s.pairingCodeValidityDuration); err != nil {
		return "", time.Time{}, fmt.Errorf("error creating pairing code: %v", err)
	}
	return code, expiresAt, nil
}

// ExchangeCode consumes a pairing code and registers a new device for the
// code's session, issuing a full token grant. Consuming the code, creating
// the device, and storing the refresh token happen in one transaction, so a
// second exchange of the same code cannot succeed.
func (s *DeviceService) ExchangeCode(ctx context.Context, code, clientName, clientVersion string) (*DeviceGrant, error) {
	var grant *DeviceGrant
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pc, err := s.repomanager.PairingCodes(tx).Consume(ctx, code)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrPairingCodeInvalid
			}
			return fmt.Errorf("error consuming pairing code: %v", err)
		}
		if pc.ExpiresAt.Before(time.Now()) {
			return common.ErrPairingCodeInvalid
		}

		device := &models.Device{
			ID:            uuid.NewString(),
			SessionID:     pc.SessionID,
			Name:          clientName,
			ClientVersion: clientVersion,
			Kind:          models.DeviceKindOAuth,
		}
		if err := s.repomanager.Devices(tx).Create(ctx, device); err != nil {
			return fmt.Errorf("error creating device: %v", err)
		}

		tg, err := s.generateTokenGrant(ctx, device.ID, device.SessionID, tx)
		if err != nil {
			return err
		}
		grant = &DeviceGrant{TokenGrant: *tg, DeviceID: device.ID, SessionID: device.SessionID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// ExchangeSecret pairs a legacy device using an admin-issued shared secret.
// The new device receives a long-term secret (stored hashed) plus a rotating
// refresh secret.
func (s *DeviceService) ExchangeSecret(ctx context.Context, sharedSecret, deviceName string) (*LegacyGrant, error) {
	id, random, err := auth.SplitSecret(sharedSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	ps, err := s.repomanager.PairingSecrets(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching pairing secret: %v", err)
	}
	if !auth.VerifySecret(random, ps.Salt, ps.Hash) {
		return nil, common.ErrorUnauthorized
	}

	longTerm, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	var grant *LegacyGrant
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		device := &models.Device{
			ID:                 uuid.NewString(),
			SessionID:          ps.SessionID,
			Name:               deviceName,
			Kind:               models.DeviceKindLegacy,
			LongTermSecretHash: longTerm.Hash,
		}
		if err := s.repomanager.Devices(tx).Create(ctx, device); err != nil {
			return fmt.Errorf("error creating device: %v", err)
		}

		refresh, err := auth.NewOpaqueToken()
		if err != nil {
			return common.ErrorInternal
		}
		if err := s.repomanager.RefreshTokens(tx).Create(ctx, device.ID, refresh.Hash, s.refreshTokenValidityDuration); err != nil {
			return common.ErrorInternal
		}

		grant = &LegacyGrant{
			LongTermSecret: longTerm.Token,
			RefreshSecret:  refresh.Token,
			DeviceID:       device.ID,
			SessionID:      device.SessionID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// IssueSecret mints a shared pairing secret for the given session. The
// plain secret is returned once; storage keeps only the argon2id hash.
func (s *DeviceService) IssueSecret(ctx context.Context, sessionID string) (string, error) {
	ps, err := auth.NewPairingSecret()
	if err != nil {
		return "", common.ErrorInternal
	}
	record := &models.PairingSecret{
		ID:        ps.ID,
		SessionID: sessionID,
		Salt:      ps.Salt,
		Hash:      ps.Hash,
	}
	if err := s.repomanager.PairingSecrets(s.db).Create(ctx, record); err != nil {
		return "", fmt.Errorf("error creating pairing secret: %v", err)
	}
	return ps.Secret, nil
}

// Refresh validates a refresh token, rotates it transactionally, and
// returns a fresh TokenGrant. Unknown tokens yield ErrorUnauthorized,
// expired ones ErrRefreshTokenExpired, revoked devices ErrDeviceRevoked.
func (s *DeviceService) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	hash := auth.HashToken(refreshToken)

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	device, err := s.repomanager.Devices(s.db).Get(ctx, token.DeviceID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching device: %v", err)
	}
	if device.Revoked {
		return nil, common.ErrDeviceRevoked
	}

	var grant *TokenGrant
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, hash); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		grant, genErr = s.generateTokenGrant(ctx, device.ID, device.SessionID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return grant, nil
}

// Validate reports whether a presented token, either an access JWT or a
// legacy long-term secret, currently grants access. Tokens of revoked
// devices are invalid even when otherwise well formed.
func (s *DeviceService) Validate(ctx context.Context, token string) (bool, error) {
	identity, err := s.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
			return false, nil
		}
		return false, err
	}
	return identity != nil, nil
}

// Authenticate resolves a bearer token to the device identity behind it.
// JWTs are tried first, then legacy long-term secrets. Device state is
// re-checked on every call so revocation takes effect immediately.
func (s *DeviceService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, jwtErr := auth.ParseToken(token, s.jwtSecret)
	if jwtErr == nil {
		device, err := s.repomanager.Devices(s.db).Get(ctx, claims.DeviceID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, fmt.Errorf("error searching device: %v", err)
		}
		if device.Revoked {
			return nil, common.ErrInvalidToken
		}
		return &Identity{DeviceID: device.ID, SessionID: device.SessionID, Kind: device.Kind}, nil
	}
	if errors.Is(jwtErr, common.ErrTokenExpired) {
		return nil, jwtErr
	}

	// Not a JWT; may be a legacy long-term secret.
	device, err := s.repomanager.Devices(s.db).GetByLongTermSecretHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching device: %v", err)
	}
	if device.Revoked {
		return nil, common.ErrInvalidToken
	}
	return &Identity{DeviceID: device.ID, SessionID: device.SessionID, Kind: device.Kind}, nil
}

// Revoke unpairs a device: its refresh tokens are deleted and the device is
// marked revoked, in one transaction. Revoking twice is a no-op.
func (s *DeviceService) Revoke(ctx context.Context, deviceID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteByDevice(ctx, deviceID); err != nil {
			return fmt.Errorf("error deleting refresh tokens: %v", err)
		}
		if err := s.repomanager.Devices(tx).Revoke(ctx, deviceID); err != nil {
			return fmt.Errorf("error revoking device: %v", err)
		}
		return nil
	})
}

func (s *DeviceService) generateTokenGrant(ctx context.Context, deviceID, sessionID string, tx dbx.DBTX) (*TokenGrant, error) {
	access, err := auth.GenerateToken(deviceID, sessionID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, deviceID, refresh.Hash, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenGrant{
		AccessToken:    access,
		AccessExpires:  time.Now().Add(s.accessTokenValidityDuration),
		RefreshToken:   refresh.Token,
		RefreshExpires: time.Now().Add(s.refreshTokenValidityDuration),
	}, nil
}
