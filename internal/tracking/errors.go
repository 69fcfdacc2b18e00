package tracking

import (
	"errors"
	"net/http"
)

// Domain errors for tracking operations.
var (
	ErrNotFound  = errors.New("tracked document not found")
	ErrCompleted = errors.New("tracked document already completed")
	ErrPersist   = errors.New("tracking store write failed")
)

// MapHTTPStatus maps tracking domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrCompleted) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
