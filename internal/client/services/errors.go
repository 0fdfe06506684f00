// Package services implements the client-side pairing and token lifecycle:
// exchanging out-of-band codes for credentials, keeping the access token
// usable, gating privileged calls on a fresh credential, and tearing the
// pairing down. The credential store is the single source of truth; every
// decision re-reads it.
package services

import (
	"errors"
	"fmt"
)

// Reason classifies why an operation failed, for callers that present
// different messaging or retry behavior per cause.
type Reason string

const (
	// ReasonNetwork covers transport failures, timeouts, and 5xx answers:
	// retry later, nothing about the credential has been decided.
	ReasonNetwork Reason = "network"
	// ReasonRejected means the server understood and definitively refused.
	ReasonRejected Reason = "rejected"
	// ReasonMalformed means the server's answer could not be parsed.
	ReasonMalformed Reason = "malformed"
	// ReasonServer covers non-authorization server-side failures of a
	// privileged action.
	ReasonServer Reason = "server"
)

var (
	// ErrReauthRequired means there is no locally recoverable credential:
	// absent, or the refresh token is exhausted. By the time a caller sees
	// this error the store has already been cleared; the user must pair
	// again.
	ErrReauthRequired = errors.New("re-authorization required")

	// ErrUnpaired means the server revoked this device while it was in
	// use. The store has already been cleared as a side effect. Callers
	// should tell the user the device was unpaired remotely, which is a
	// different message than "not paired".
	ErrUnpaired = errors.New("device was unpaired remotely")
)

// AuthorizationError reports a failed pairing exchange. No credential has
// been persisted.
type AuthorizationError struct {
	Reason Reason
	Err    error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed (%s): %v", e.Reason, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// RefreshError reports a failed token refresh. The stored credential is
// retained; the caller should retry the original action shortly rather
// than treat this as unpaired.
type RefreshError struct {
	Reason Reason
	Err    error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed (%s): %v", e.Reason, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// ActionError reports that a privileged action failed for reasons unrelated
// to authorization. The credential is untouched and the action can be
// retried as-is.
type ActionError struct {
	Reason Reason
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action failed (%s): %v", e.Reason, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
