package broker

import "errors"

var (
	ErrNotAuthenticated     = errors.New("connection not authenticated")
	ErrAlreadyAuthenticated = errors.New("connection already authenticated")
	ErrConnClosed           = errors.New("connection closed")
	ErrAuthFailed           = errors.New("authentication failed")
)
