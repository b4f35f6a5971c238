package entity

import (
	"errors"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrUnknownStatus       = errors.New("unknown bill status")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRejected    = errors.New("provider rejected request")
	ErrSignatureMismatch   = errors.New("signature mismatch")
	ErrNoSecretKey         = errors.New("secret key is not configured")
)
