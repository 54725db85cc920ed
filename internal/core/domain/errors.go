// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Link errors
	ErrEmptyURL      = errors.New("link record has no url")
	ErrInvalidURL    = errors.New("invalid link url")
	ErrMissingRecord = errors.New("link record is nil")

	// Provider errors
	ErrProviderNoVerify   = errors.New("provider has no verify function")
	ErrProviderNoHosts    = errors.New("provider declares no hosts or patterns")
	ErrProviderNoName     = errors.New("provider name cannot be empty")
	ErrProviderBadRequest = errors.New("provider custom request is malformed")
)

// Mensajes fijos que se entregan al result handler.
const (
	MsgNoSupport        = "No support found for file service."
	MsgTooManyRedirects = "Too many provider redirects."
	MsgInvalidLink      = "Invalid download link."
)
