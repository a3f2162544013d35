package jwt

import "errors"

// ErrSessionRevoked is returned when a well-formed token refers to a logged-out session.
var ErrSessionRevoked = errors.New("session revoked")
