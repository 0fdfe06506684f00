package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/githuba42r/imagetools/internal/client/api"
	"github.com/githuba42r/imagetools/internal/client/credstore"
	"github.com/githuba42r/imagetools/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// memStore is an in-memory credstore.Store with the same atomic
// replace-or-clear semantics as the sqlite implementation.
type memStore struct {
	mu      sync.Mutex
	cred    *credstore.Credential
	saveErr error
	clears  int
}

func (m *memStore) Load(ctx context.Context) (*credstore.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil, nil
	}
	c := *m.cred
	return &c, nil
}

func (m *memStore) Save(ctx context.Context, c *credstore.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if !c.Complete() {
		return errors.New("incomplete credential")
	}
	cp := *c
	m.cred = &cp
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	m.clears++
	return nil
}

func (m *memStore) IsPaired(ctx context.Context) bool {
	c, _ := m.Load(ctx)
	return c != nil
}

func (m *memStore) current() *credstore.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}

// fakeClient implements api.Client for service tests.
type fakeClient struct {
	mu sync.Mutex

	ExchangeCodeGrant *api.TokenGrant
	ExchangeCodeErr   error
	LastExchangeCode  string
	LastMeta          api.ClientMetadata

	ExchangeSecretGrant *api.TokenGrant
	ExchangeSecretErr   error
	LastSharedSecret    string

	RefreshGrant   *api.TokenGrant
	RefreshErr     error
	RefreshCalls   int
	RefreshBlock   chan struct{} // when set, Refresh waits on it
	LastRefreshTok string

	ValidateRet   bool
	ValidateErr   error
	ValidateCalls int

	UnpairErr   error
	UnpairCalls int
	LastUnpair  string

	Ticket          *api.UploadTicket
	CreateUploadErr error
	PutFileErr      error
	PutFileCalls    int
}

func (f *fakeClient) ExchangeCode(ctx context.Context, code string, meta api.ClientMetadata) (*api.TokenGrant, error) {
	f.mu.Lock()
	f.LastExchangeCode = code
	f.LastMeta = meta
	f.mu.Unlock()
	if f.ExchangeCodeErr != nil {
		return nil, f.ExchangeCodeErr
	}
	g := *f.ExchangeCodeGrant
	return &g, nil
}

func (f *fakeClient) ExchangeSecret(ctx context.Context, sharedSecret string, meta api.ClientMetadata) (*api.TokenGrant, error) {
	f.mu.Lock()
	f.LastSharedSecret = sharedSecret
	f.LastMeta = meta
	f.mu.Unlock()
	if f.ExchangeSecretErr != nil {
		return nil, f.ExchangeSecretErr
	}
	g := *f.ExchangeSecretGrant
	return &g, nil
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (*api.TokenGrant, error) {
	f.mu.Lock()
	f.RefreshCalls++
	f.LastRefreshTok = refreshToken
	block := f.RefreshBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	g := *f.RefreshGrant
	return &g, nil
}

func (f *fakeClient) Validate(ctx context.Context, secret string) (bool, error) {
	f.mu.Lock()
	f.ValidateCalls++
	f.mu.Unlock()
	return f.ValidateRet, f.ValidateErr
}

func (f *fakeClient) Unpair(ctx context.Context, secret string) error {
	f.mu.Lock()
	f.UnpairCalls++
	f.LastUnpair = secret
	f.mu.Unlock()
	return f.UnpairErr
}

func (f *fakeClient) CreateUpload(ctx context.Context, secret, fileName, contentType string) (*api.UploadTicket, error) {
	if f.CreateUploadErr != nil {
		return nil, f.CreateUploadErr
	}
	t := *f.Ticket
	return &t, nil
}

func (f *fakeClient) PutFile(ctx context.Context, uploadURL string, data []byte, contentType string) error {
	f.mu.Lock()
	f.PutFileCalls++
	f.mu.Unlock()
	return f.PutFileErr
}

func (f *fakeClient) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RefreshCalls
}

func fixedFactory(c api.Client) api.Factory {
	return func(instanceURL string) api.Client { return c }
}
