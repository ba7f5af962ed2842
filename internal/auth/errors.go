package auth

import "errors"

var (
	// ErrNoSession is returned when a request carries no session token at all.
	ErrNoSession = errors.New("missing session token")
	// ErrInvalidToken is returned when the backend rejects a session token.
	ErrInvalidToken = errors.New("invalid session token")
)
