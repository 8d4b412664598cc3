package models

import "errors"

var (
	ErrProfileNotFound = errors.New("user profile does not exist")
	ErrEventNotFound   = errors.New("event does not exist")
	ErrRequestNotFound = errors.New("admin request does not exist")
	ErrInvalidToken    = errors.New("invalid or expired token")
)
