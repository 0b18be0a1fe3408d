package gateway

import "errors"

var (
	ErrCredentialNotFound     = errors.New("gateway credential not found")
	ErrCredentialDisconnected = errors.New("gateway credential disconnected")
	ErrHandshakeNotFound      = errors.New("gateway handshake not found")
	ErrHandshakeExpired       = errors.New("gateway handshake expired")
)
