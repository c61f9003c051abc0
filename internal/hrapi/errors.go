package hrapi

import "errors"

var (
	// ErrUnavailable indicates the HR API could not be reached or returned
	// a server error.
	ErrUnavailable = errors.New("hrapi: upstream unavailable")
	// ErrUnauthorized indicates the service token was rejected.
	ErrUnauthorized = errors.New("hrapi: unauthorized")
	// ErrNotFound indicates the requested report does not exist upstream.
	ErrNotFound = errors.New("hrapi: not found")
	// ErrBadPayload indicates the upstream response could not be decoded.
	ErrBadPayload = errors.New("hrapi: malformed response")
)
