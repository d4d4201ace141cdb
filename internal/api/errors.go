package api

import (
	"errors"
	"net/http"

	"github.com/splitledger/splitledger/internal/ledger"
)

// statusFromError maps ledger errors to HTTP status codes. Matching happens
// on the four taxonomy errors so new wrapped variants map automatically.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvariant):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
