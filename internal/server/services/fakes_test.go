package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/githuba42r/imagetools/internal/dbx"
	"github.com/githuba42r/imagetools/internal/server/config"
	"github.com/githuba42r/imagetools/internal/server/models"
	devicesrepo "github.com/githuba42r/imagetools/internal/server/repositories/devices"
	imagesrepo "github.com/githuba42r/imagetools/internal/server/repositories/images"
	pairingcodesrepo "github.com/githuba42r/imagetools/internal/server/repositories/pairingcodes"
	pairingsecretsrepo "github.com/githuba42r/imagetools/internal/server/repositories/pairingsecrets"
	refreshtokensrepo "github.com/githuba42r/imagetools/internal/server/repositories/refreshtokens"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		PairingCodeValidityDuration:  5 * time.Minute,
	}
}

type fakeDevicesRepo struct {
	created []*models.Device

	getOut *models.Device
	getErr error

	getByHashOut *models.Device
	getByHashErr error

	createErr error

	revoked   []string
	revokeErr error
}

func (f *fakeDevicesRepo) Create(ctx context.Context, d *models.Device) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDevicesRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeDevicesRepo) GetByLongTermSecretHash(ctx context.Context, hash string) (*models.Device, error) {
	if f.getByHashErr != nil {
		return nil, f.getByHashErr
	}
	return f.getByHashOut, nil
}

func (f *fakeDevicesRepo) Revoke(ctx context.Context, id string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, id)
	return nil
}

type fakePairingCodesRepo struct {
	created   []string
	createErr error

	consumeOut *models.PairingCode
	consumeErr error
	consumed   []string
}

func (f *fakePairingCodesRepo) Create(ctx context.Context, code, sessionID string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, code)
	return nil
}

func (f *fakePairingCodesRepo) Consume(ctx context.Context, code string) (*models.PairingCode, error) {
	f.consumed = append(f.consumed, code)
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.consumeOut, nil
}

type fakePairingSecretsRepo struct {
	created   []*models.PairingSecret
	createErr error

	getOut *models.PairingSecret
	getErr error
}

func (f *fakePairingSecretsRepo) Create(ctx context.Context, s *models.PairingSecret) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakePairingSecretsRepo) Get(ctx context.Context, id string) (*models.PairingSecret, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshTokensRepo struct {
	created   []string
	createErr error

	findOut *models.RefreshToken
	findErr error

	deleted []string
	delErr  error

	deletedByDevice []string
	delByDeviceErr  error
}

func (f *fakeRefreshTokensRepo) Create(ctx context.Context, deviceID string, tokenHash string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, tokenHash)
	return nil
}

func (f *fakeRefreshTokensRepo) Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshTokensRepo) Delete(ctx context.Context, tokenHash string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, tokenHash)
	return nil
}

func (f *fakeRefreshTokensRepo) DeleteByDevice(ctx context.Context, deviceID string) error {
	if f.delByDeviceErr != nil {
		return f.delByDeviceErr
	}
	f.deletedByDevice = append(f.deletedByDevice, deviceID)
	return nil
}

type fakeImagesRepo struct {
	created   []*models.Image
	createErr error

	listOut []*models.Image
	listErr error
}

func (f *fakeImagesRepo) Create(ctx context.Context, img *models.Image) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, img)
	return nil
}

func (f *fakeImagesRepo) ListBySession(ctx context.Context, sessionID string) ([]*models.Image, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeRepoManager struct {
	d  *fakeDevicesRepo
	pc *fakePairingCodesRepo
	ps *fakePairingSecretsRepo
	rt *fakeRefreshTokensRepo
	im *fakeImagesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		d:  &fakeDevicesRepo{},
		pc: &fakePairingCodesRepo{},
		ps: &fakePairingSecretsRepo{},
		rt: &fakeRefreshTokensRepo{},
		im: &fakeImagesRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Devices(db dbx.DBTX) devicesrepo.Repository  { return m.d }
func (m *fakeRepoManager) PairingCodes(db dbx.DBTX) pairingcodesrepo.Repository {
	return m.pc
}
func (m *fakeRepoManager) PairingSecrets(db dbx.DBTX) pairingsecretsrepo.Repository {
	return m.ps
}
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.rt
}
func (m *fakeRepoManager) Images(db dbx.DBTX) imagesrepo.Repository { return m.im }
