package repomanager

import (
	"context"
	"database/sql"

	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/repositories/devices"
	"github.com/githuba42r/imagetools/internal/server/repositories/images"
	"github.com/githuba42r/imagetools/internal/server/repositories/pairingcodes"
	"github.com/githuba42r/imagetools/internal/server/repositories/pairingsecrets"
	"github.com/githuba42r/imagetools/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Devices(db dbx.DBTX) devices.Repository
	PairingCodes(db dbx.DBTX) pairingcodes.Repository
	PairingSecrets(db dbx.DBTX) pairingsecrets.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Images(db dbx.DBTX) images.Repository
}
