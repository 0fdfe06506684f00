// Package pairing decodes the out-of-band payloads that start a pairing:
// a base64 JSON blob shown as a QR code, or a deep-link URI. Both carry the
// same two facts, a code-or-secret and the backend instance URL.
package pairing

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/githuba42r/imagetools/internal/client/credstore"
)

// ErrInvalidPayload is returned when the input matches neither supported
// delivery format.
var ErrInvalidPayload = errors.New("unrecognized pairing payload")

// Payload is the decoded pairing input.
type Payload struct {
	// Code is the single-use pairing code (blob format) or the shared
	// secret (deep-link format).
	Code        string
	InstanceURL string

	// SharedSecret marks the deep-link/shared-secret variant, which pairs
	// through the legacy flow.
	SharedSecret bool

	// PairingID and SessionID are informational; present only in the
	// deep-link format.
	PairingID string
	SessionID string
}

// Decode parses raw as a deep-link URI or a base64 JSON blob. Whitespace
// around the payload is ignored.
func Decode(raw string) (*Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidPayload
	}

	if strings.Contains(raw, "://") {
		return decodeDeepLink(raw)
	}
	return decodeBlob(raw)
}

func decodeDeepLink(raw string) (*Payload, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	q := u.Query()
	instance := q.Get("url")
	secret := q.Get("secret")
	if instance == "" || secret == "" {
		return nil, fmt.Errorf("%w: deep link missing url or secret", ErrInvalidPayload)
	}

	return &Payload{
		Code:         secret,
		InstanceURL:  credstore.NormalizeInstanceURL(instance),
		SharedSecret: true,
		PairingID:    q.Get("pairing_id"),
		SessionID:    q.Get("session_id"),
	}, nil
}

func decodeBlob(raw string) (*Payload, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// QR generators sometimes emit URL-safe base64.
		decoded, err = base64.URLEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: not base64", ErrInvalidPayload)
		}
	}

	var blob struct {
		Code     string `json:"code"`
		Instance string `json:"instance"`
	}
	if err := json.Unmarshal(decoded, &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if blob.Code == "" || blob.Instance == "" {
		return nil, fmt.Errorf("%w: blob missing code or instance", ErrInvalidPayload)
	}

	return &Payload{
		Code:        blob.Code,
		InstanceURL: credstore.NormalizeInstanceURL(blob.Instance),
	}, nil
}
