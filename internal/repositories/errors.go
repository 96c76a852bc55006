package repositories

import (
	"errors"
	"fmt"
	"net/http"

	"capristore/internal/backend"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = backend.ErrUnavailable
)

// mapError turns a backend answer into one of the sentinel errors, keeping
// the backend's message so it can be shown to the user.
func mapError(err error) error {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	var kind error
	switch {
	case apiErr.Status == http.StatusNotFound:
		kind = ErrNotFound
	case apiErr.Status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case apiErr.Status == http.StatusForbidden:
		kind = ErrForbidden
	case apiErr.Status == http.StatusConflict:
		kind = ErrConflict
	case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
		kind = ErrInvalidInput
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, apiErr.Message)
	}
	return fmt.Errorf("%w: %s", kind, apiErr.Message)
}
