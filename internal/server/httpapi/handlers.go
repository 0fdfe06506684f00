package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/githuba42r/imagetools/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// serviceError maps service-layer errors to HTTP responses. Authentication
// and pairing failures surface as 401 with the sentinel message, anything
// else as 500 without leaking internals.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrPairingCodeInvalid),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrDeviceRevoked),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

type tokenGrantResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	DeviceID         string    `json:"device_id,omitempty"`
	SessionID        string    `json:"session_id,omitempty"`
}

func (s *Server) handlePairStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	code, expiresAt, err := s.devices.StartPairing(r.Context(), req.SessionID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":       code,
		"expires_at": expiresAt,
	})
}

func (s *Server) handleSecretIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	secret, err := s.devices.IssueSecret(r.Context(), req.SessionID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pairing_secret": secret})
}

func (s *Server) handlePairExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string `json:"code"`
		ClientName    string `json:"client_name"`
		ClientVersion string `json:"client_version"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	grant, err := s.devices.ExchangeCode(r.Context(), req.Code, req.ClientName, req.ClientVersion)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenGrantResponse{
		AccessToken:      grant.AccessToken,
		AccessExpiresAt:  grant.AccessExpires,
		RefreshToken:     grant.RefreshToken,
		RefreshExpiresAt: grant.RefreshExpires,
		DeviceID:         grant.DeviceID,
		SessionID:        grant.SessionID,
	})
}

func (s *Server) handlePairSecret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SharedSecret string `json:"shared_secret"`
		DeviceName   string `json:"device_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SharedSecret == "" {
		writeError(w, http.StatusBadRequest, "shared_secret is required")
		return
	}

	grant, err := s.devices.ExchangeSecret(r.Context(), req.SharedSecret, req.DeviceName)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"long_term_secret": grant.LongTermSecret,
		"refresh_secret":   grant.RefreshSecret,
		"device_id":        grant.DeviceID,
		"session_id":       grant.SessionID,
	})
}

func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	grant, err := s.devices.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenGrantResponse{
		AccessToken:      grant.AccessToken,
		AccessExpiresAt:  grant.AccessExpires,
		RefreshToken:     grant.RefreshToken,
		RefreshExpiresAt: grant.RefreshExpires,
	})
}

func (s *Server) handleTokenValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	valid, err := s.devices.Validate(r.Context(), req.Token)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (s *Server) handleUnpair(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
		return
	}

	if err := s.devices.Revoke(r.Context(), identity.DeviceID); err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "device unpaired", "device_id", identity.DeviceID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImageCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
		return
	}

	var req struct {
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	upload, err := s.images.CreateUpload(r.Context(), identity, req.FileName, req.ContentType)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"image_id":   upload.ImageID,
		"upload_url": upload.UploadURL,
	})
}

type imageResponse struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	FileName   string    `json:"file_name"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleImageList(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	images, err := s.images.ListImages(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	result := make([]imageResponse, 0, len(images))
	for _, img := range images {
		result = append(result, imageResponse{
			ID:         img.ID,
			DeviceID:   img.DeviceID,
			FileName:   img.FileName,
			StorageKey: img.StorageKey,
			CreatedAt:  img.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]imageResponse{"images": result})
}
