package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/logging"
)

// State is the guard's verdict on the stored credential for one call.
type State int

const (
	// Usable: send the access credential as-is.
	Usable State = iota
	// NeedsRefresh: the access token is expired but the refresh token is
	// still good.
	NeedsRefresh
	// NeedsReauth: nothing locally recoverable; the user must pair again.
	NeedsReauth
)

// Classify decides what must happen before the credential may be sent.
// Expiry boundaries count as expired: a token whose expiry equals now is
// not usable and a refresh token whose expiry equals now is exhausted.
//
// Legacy credentials carry no local expiry and always classify Usable;
// their correctness is checked against the server by the upload gate
// before every use.
func Classify(c *credstore.Credential, now time.Time) State {
	if !c.Complete() {
		return NeedsReauth
	}
	if c.Kind == credstore.KindLegacy {
		return Usable
	}
	if c.AccessExpiresAt.IsZero() || now.Before(c.AccessExpiresAt) {
		return Usable
	}
	if c.RefreshToken != "" && (c.RefreshExpiresAt.IsZero() || now.Before(c.RefreshExpiresAt)) {
		return NeedsRefresh
	}
	return NeedsReauth
}

// TokenGuard is the single entry point consumers use to obtain a usable
// credential before a privileged call. Concurrent refreshes for the same
// store are collapsed into one network call; the server rotates refresh
// tokens, so firing two in parallel would invalidate one caller's result.
type TokenGuard struct {
	store   credstore.Store
	factory api.Factory
	logger  logging.Logger
	flight  singleflight.Group
	now     func() time.Time
}

func NewTokenGuard(store credstore.Store, factory api.Factory, logger logging.Logger) *TokenGuard {
	return &TokenGuard{
		store:   store,
		factory: factory,
		logger:  logger.With("module", "token_guard"),
		now:     time.Now,
	}
}

// EnsureUsable returns a credential safe to send right now, refreshing it
// first when needed.
//
//   - Usable: the stored credential, unchanged.
//   - NeedsRefresh: exactly one refresh call is made (shared with any
//     concurrent EnsureUsable), its result merged into the store and
//     returned. Failures keep the stored credential and surface as
//     *RefreshError.
//   - NeedsReauth: the store is cleared (idempotent) and ErrReauthRequired
//     is returned, so callers can rely on "got this error, store is clean".
func (g *TokenGuard) EnsureUsable(ctx context.Context) (*credstore.Credential, error) {
	cred, err := g.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	switch Classify(cred, g.now()) {
	case Usable:
		return cred, nil
	case NeedsReauth:
		if err := g.store.Clear(ctx); err != nil {
			g.logger.Warn(ctx, "failed to clear unrecoverable credential", "error", err)
		}
		return nil, ErrReauthRequired
	}

	v, err, _ := g.flight.Do("refresh", func() (any, error) {
		return g.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*credstore.Credential), nil
}

// refresh runs inside the singleflight. It re-reads the store first: the
// view that triggered the refresh may be stale by the time this caller won
// the flight.
func (g *TokenGuard) refresh(ctx context.Context) (*credstore.Credential, error) {
	cred, err := g.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	switch Classify(cred, g.now()) {
	case Usable:
		// someone else refreshed while we waited
		return cred, nil
	case NeedsReauth:
		if err := g.store.Clear(ctx); err != nil {
			g.logger.Warn(ctx, "failed to clear unrecoverable credential", "error", err)
		}
		return nil, ErrReauthRequired
	}

	grant, err := g.factory(cred.InstanceURL).Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return nil, g.refreshFailure(ctx, cred, err)
	}

	updated := *cred
	updated.AccessToken = grant.AccessToken
	updated.AccessExpiresAt = grant.AccessExpiresAt
	// refresh token only rotates when the server says so
	if grant.RefreshToken != "" {
		updated.RefreshToken = grant.RefreshToken
		if !grant.RefreshExpiresAt.IsZero() {
			updated.RefreshExpiresAt = grant.RefreshExpiresAt
		}
	}

	if err := g.store.Save(ctx, &updated); err != nil {
		return nil, &RefreshError{Reason: ReasonNetwork, Err: err}
	}

	g.logger.Debug(ctx, "access token refreshed", "expires_at", updated.AccessExpiresAt)
	return &updated, nil
}

// refreshFailure maps a refresh call failure. Transient failures keep the
// credential untouched. A definitive rejection also keeps the access
// credential but drops the refresh token, so the next classification is
// NeedsReauth instead of an endless refresh loop.
func (g *TokenGuard) refreshFailure(ctx context.Context, cred *credstore.Credential, err error) error {
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrRejected) {
		dead := *cred
		dead.RefreshToken = ""
		dead.RefreshExpiresAt = time.Time{}
		if dead.Complete() {
			if saveErr := g.store.Save(ctx, &dead); saveErr != nil {
				g.logger.Warn(ctx, "failed to persist rejected refresh token", "error", saveErr)
			}
		}
		return &RefreshError{Reason: ReasonRejected, Err: err}
	}
	if errors.Is(err, api.ErrMalformed) {
		return &RefreshError{Reason: ReasonMalformed, Err: err}
	}
	return &RefreshError{Reason: ReasonNetwork, Err: err}
}
