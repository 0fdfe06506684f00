// Package cli is the command-line front end for pairing with an imagetools
// backend and uploading images into the paired session.
package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/config"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/client/services"
	"github.com/githuba42r/imagetools/internal/logging"
)

// pairer, uploader, and unpairer are the slices of the service layer the
// CLI touches; tests substitute fakes.
type pairer interface {
	Pair(ctx context.Context, rawPayload string) (*credstore.Credential, error)
	PairWithSecret(ctx context.Context, sharedSecret, instanceURL string) (*credstore.Credential, error)
}

type uploader interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

type unpairer interface {
	Unpair(ctx context.Context) error
}

// App wires the pairing services to terminal input/output.
type App struct {
	store    credstore.Store
	pairing  pairer
	uploader uploader
	unpairer unpairer
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp builds the full service stack over the given store.
func NewApp(cfg *config.Config, store credstore.Store, logger logging.Logger, in io.Reader, out io.Writer) *App {
	factory := api.NewFactory(cfg.RequestTimeout)
	meta := api.ClientMetadata{Name: cfg.ClientName, Version: cfg.ClientVersion}

	guard := services.NewTokenGuard(store, factory, logger)
	gate := services.NewUploadGate(store, guard, factory, logger)

	return &App{
		store:    store,
		pairing:  services.NewPairingService(store, factory, meta, logger),
		uploader: services.NewUploadService(gate, logger),
		unpairer: services.NewUnpairCoordinator(store, factory, logger),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}
