package services

import (
	"context"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/logging"
)

// UnpairCoordinator handles voluntary disconnect. It is the one operation
// that puts local consistency above server acknowledgment: the backend is
// told best-effort, the local credential goes away regardless.
type UnpairCoordinator struct {
	store   credstore.Store
	factory api.Factory
	logger  logging.Logger
}

func NewUnpairCoordinator(store credstore.Store, factory api.Factory, logger logging.Logger) *UnpairCoordinator {
	return &UnpairCoordinator{
		store:   store,
		factory: factory,
		logger:  logger.With("module", "unpair"),
	}
}

// Unpair notifies the backend when a credential exists, then clears the
// store. It never fails from the caller's perspective; remote errors are
// logged and ignored, and clearing an already-empty store is a no-op.
func (u *UnpairCoordinator) Unpair(ctx context.Context) error {
	cred, err := u.store.Load(ctx)
	if err == nil && cred != nil {
		if err := u.factory(cred.InstanceURL).Unpair(ctx, cred.Secret()); err != nil {
			u.logger.Warn(ctx, "remote unpair failed, clearing locally anyway", "error", err)
		}
	}

	if err := u.store.Clear(ctx); err != nil {
		u.logger.Error(ctx, "failed to clear credential store", "error", err)
	}
	u.logger.Info(ctx, "unpaired")
	return nil
}
