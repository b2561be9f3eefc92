package translation

import "errors"

var (
	ErrNoAPIKey       = errors.New("API key not found")
	ErrEmptyResponse  = errors.New("no translation returned")
	ErrUnknownBackend = errors.New("unknown translation provider")
)
