package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/client/pairing"
	"github.com/githuba42r/imagetools/internal/logging"
)

// PairingService turns an out-of-band authorization payload into a stored
// credential in one network exchange. Nothing is persisted until a full,
// well-formed grant has been received, so a cancelled or failed exchange
// leaves the store exactly as it was.
type PairingService struct {
	store   credstore.Store
	factory api.Factory
	meta    api.ClientMetadata
	logger  logging.Logger
}

func NewPairingService(store credstore.Store, factory api.Factory, meta api.ClientMetadata, logger logging.Logger) *PairingService {
	return &PairingService{
		store:   store,
		factory: factory,
		meta:    meta,
		logger:  logger.With("module", "pairing"),
	}
}

// Pair decodes a pasted payload (QR blob or deep link) and runs the
// matching exchange.
func (s *PairingService) Pair(ctx context.Context, rawPayload string) (*credstore.Credential, error) {
	p, err := pairing.Decode(rawPayload)
	if err != nil {
		return nil, &AuthorizationError{Reason: ReasonMalformed, Err: err}
	}
	if p.SharedSecret {
		return s.PairWithSecret(ctx, p.Code, p.InstanceURL)
	}
	return s.PairWithCode(ctx, p.Code, p.InstanceURL)
}

// PairWithCode exchanges a single-use pairing code. The code is consumed
// server-side even when our side fails afterward, so a retry after a
// rejection will fail again; that is expected and surfaced as rejected.
func (s *PairingService) PairWithCode(ctx context.Context, code, instanceURL string) (*credstore.Credential, error) {
	instanceURL = credstore.NormalizeInstanceURL(instanceURL)

	grant, err := s.factory(instanceURL).ExchangeCode(ctx, code, s.meta)
	if err != nil {
		return nil, s.exchangeFailure(err)
	}

	cred := &credstore.Credential{
		Kind:             credstore.KindOAuth,
		InstanceURL:      instanceURL,
		AccessToken:      grant.AccessToken,
		RefreshToken:     grant.RefreshToken,
		AccessExpiresAt:  grant.AccessExpiresAt,
		RefreshExpiresAt: grant.RefreshExpiresAt,
		DeviceID:         grant.DeviceID,
		SessionID:        grant.SessionID,
	}
	return s.persist(ctx, cred)
}

// PairWithSecret validates a user-pasted shared secret and stores the
// issued long-term credential (legacy flow).
func (s *PairingService) PairWithSecret(ctx context.Context, sharedSecret, instanceURL string) (*credstore.Credential, error) {
	instanceURL = credstore.NormalizeInstanceURL(instanceURL)

	grant, err := s.factory(instanceURL).ExchangeSecret(ctx, sharedSecret, s.meta)
	if err != nil {
		return nil, s.exchangeFailure(err)
	}

	cred := &credstore.Credential{
		Kind:           credstore.KindLegacy,
		InstanceURL:    instanceURL,
		LongTermSecret: grant.LongTermSecret,
		RefreshToken:   grant.RefreshToken,
		DeviceID:       grant.DeviceID,
		SessionID:      grant.SessionID,
	}
	return s.persist(ctx, cred)
}

func (s *PairingService) persist(ctx context.Context, cred *credstore.Credential) (*credstore.Credential, error) {
	if !cred.Complete() {
		return nil, &AuthorizationError{
			Reason: ReasonMalformed,
			Err:    fmt.Errorf("server grant is missing a usable credential"),
		}
	}
	if err := s.store.Save(ctx, cred); err != nil {
		return nil, &AuthorizationError{Reason: ReasonNetwork, Err: err}
	}
	s.logger.Info(ctx, "paired", "instance", cred.InstanceURL, "device_id", cred.DeviceID)
	return cred, nil
}

func (s *PairingService) exchangeFailure(err error) error {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return &AuthorizationError{Reason: ReasonNetwork, Err: err}
	case errors.Is(err, api.ErrMalformed):
		return &AuthorizationError{Reason: ReasonMalformed, Err: err}
	default:
		return &AuthorizationError{Reason: ReasonRejected, Err: err}
	}
}
