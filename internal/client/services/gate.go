package services

import (
	"context"
	"errors"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/logging"
)

// Action is a privileged call executed under a validated credential.
type Action func(ctx context.Context, cred *credstore.Credential, client api.Client) error

// UploadGate wraps privileged actions with the full credential discipline:
// ensure the credential is usable, pre-validate legacy secrets against the
// server, run the action, and turn an unauthorized answer into a local
// unpair. An unauthorized answer mid-action is the authoritative signal
// that the device was revoked from the web interface.
type UploadGate struct {
	store   credstore.Store
	guard   *TokenGuard
	factory api.Factory
	logger  logging.Logger
}

func NewUploadGate(store credstore.Store, guard *TokenGuard, factory api.Factory, logger logging.Logger) *UploadGate {
	return &UploadGate{
		store:   store,
		guard:   guard,
		factory: factory,
		logger:  logger.With("module", "upload_gate"),
	}
}

// Perform runs action under the gate.
//
// Failure contract:
//   - ErrReauthRequired / *RefreshError: the action was never attempted.
//   - ErrUnpaired: the server reported the credential revoked, before or
//     during the action; the store is already cleared.
//   - *ActionError: the action failed for non-authorization reasons; the
//     credential is untouched and the action is retryable.
func (u *UploadGate) Perform(ctx context.Context, action Action) error {
	cred, err := u.guard.EnsureUsable(ctx)
	if err != nil {
		return err
	}

	client := u.factory(cred.InstanceURL)

	// Legacy secrets track no expiry locally, so each use pays one
	// validation round-trip. It runs on the request path, not in the
	// background: a revocation discovered here must be attributable to
	// the action the user just took.
	if cred.Kind == credstore.KindLegacy {
		valid, err := client.Validate(ctx, cred.LongTermSecret)
		if err != nil {
			return u.actionFailure(err)
		}
		if !valid {
			return u.revoked(ctx)
		}
	}

	if err := action(ctx, cred, client); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return u.revoked(ctx)
		}
		return u.actionFailure(err)
	}
	return nil
}

func (u *UploadGate) revoked(ctx context.Context) error {
	u.logger.Info(ctx, "credential revoked by server, clearing local pairing")
	if err := u.store.Clear(ctx); err != nil {
		u.logger.Error(ctx, "failed to clear revoked credential", "error", err)
	}
	return ErrUnpaired
}

func (u *UploadGate) actionFailure(err error) error {
	if errors.Is(err, api.ErrUnavailable) {
		return &ActionError{Reason: ReasonNetwork, Err: err}
	}
	return &ActionError{Reason: ReasonServer, Err: err}
}
