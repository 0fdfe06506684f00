package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/githuba42r/imagetools/internal/common"
)

// DefaultTimeout bounds every backend call. These calls sit on interactive
// paths (pairing prompt, share flow) and must fail rather than hang.
const DefaultTimeout = 10 * time.Second

// HTTPClient implements Client against one backend instance.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewHTTPClient constructs a client for the given instance URL. A timeout
// of 0 selects DefaultTimeout.
func NewHTTPClient(instanceURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(instanceURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// NewFactory returns a Factory producing HTTPClients with the given timeout.
func NewFactory(timeout time.Duration) Factory {
	return func(instanceURL string) Client {
		return NewHTTPClient(instanceURL, timeout)
	}
}

type tokenGrantResponse struct {
	AccessToken      string     `json:"access_token,omitempty"`
	RefreshToken     string     `json:"refresh_token,omitempty"`
	AccessExpiresAt  *time.Time `json:"access_expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	LongTermSecret   string     `json:"long_term_secret,omitempty"`
	RefreshSecret    string     `json:"refresh_secret,omitempty"`
	DeviceID         string     `json:"device_id,omitempty"`
	SessionID        string     `json:"session_id,omitempty"`
}

func (r *tokenGrantResponse) grant() *TokenGrant {
	g := &TokenGrant{
		AccessToken:    r.AccessToken,
		RefreshToken:   r.RefreshToken,
		LongTermSecret: r.LongTermSecret,
		DeviceID:       r.DeviceID,
		SessionID:      r.SessionID,
	}
	if g.RefreshToken == "" {
		g.RefreshToken = r.RefreshSecret
	}
	if r.AccessExpiresAt != nil {
		g.AccessExpiresAt = r.AccessExpiresAt.UTC()
	}
	if r.RefreshExpiresAt != nil {
		g.RefreshExpiresAt = r.RefreshExpiresAt.UTC()
	}
	return g
}

func (c *HTTPClient) ExchangeCode(ctx context.Context, code string, meta ClientMetadata) (*TokenGrant, error) {
	req := map[string]string{
		"code":           code,
		"client_name":    meta.Name,
		"client_version": meta.Version,
	}
	var resp tokenGrantResponse
	if err := c.post(ctx, "/api/pair/exchange", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.grant(), nil
}

func (c *HTTPClient) ExchangeSecret(ctx context.Context, sharedSecret string, meta ClientMetadata) (*TokenGrant, error) {
	req := map[string]string{
		"shared_secret": sharedSecret,
		"device_name":   meta.Name,
	}
	var resp tokenGrantResponse
	if err := c.post(ctx, "/api/pair/secret", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.grant(), nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	req := map[string]string{"refresh_token": refreshToken}
	var resp tokenGrantResponse
	if err := c.post(ctx, "/api/token/refresh", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.grant(), nil
}

func (c *HTTPClient) Validate(ctx context.Context, secret string) (bool, error) {
	req := map[string]string{"token": secret}
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.post(ctx, "/api/token/validate", "", req, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *HTTPClient) Unpair(ctx context.Context, secret string) error {
	return c.post(ctx, "/api/unpair", secret, struct{}{}, nil)
}

func (c *HTTPClient) CreateUpload(ctx context.Context, secret, fileName, contentType string) (*UploadTicket, error) {
	req := map[string]string{
		"file_name":    fileName,
		"content_type": contentType,
	}
	var resp struct {
		ImageID   string `json:"image_id"`
		UploadURL string `json:"upload_url"`
	}
	if err := c.post(ctx, "/api/images", secret, req, &resp); err != nil {
		return nil, err
	}
	return &UploadTicket{ImageID: resp.ImageID, UploadURL: resp.UploadURL}, nil
}

// PutFile uploads the raw file bytes to a presigned storage URL. The URL is
// not on the backend instance, so no bearer credential is attached.
func (c *HTTPClient) PutFile(ctx context.Context, uploadURL string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: upload failed: %s %s", ErrServer, resp.Status, string(b))
	}
	return nil
}

// post sends a JSON POST to path, optionally with a bearer credential, and
// decodes a 2xx body into out (when out is non-nil).
func (c *HTTPClient) post(ctx context.Context, path, bearer string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func (c *HTTPClient) statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrServer, msg)
	default:
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
}
