package api

import "errors"

var (
	// ErrUnavailable covers transport failures and timeouts: the server
	// never answered, or answered too late.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned for 401/403 responses: the credential
	// sent with the request was not accepted.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRejected is returned for other 4xx responses: the server
	// understood the request and definitively refused it.
	ErrRejected = errors.New("request rejected")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")

	// ErrMalformed is returned when a 2xx response body cannot be parsed.
	ErrMalformed = errors.New("malformed response")
)
