package api

import (
	"errors"
	"net/http"

	service "github.com/okian/magicboard/internal/app"
	"github.com/okian/magicboard/internal/adapters/repository"
	"github.com/okian/magicboard/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("service unavailable")
)

// errorStatus maps a service error onto an HTTP status and an error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrPageSizeExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ranking.ErrUnknownSortKey),
		errors.Is(err, service.ErrInvalidQuery),
		errors.Is(err, service.ErrInvalidMember),
		errors.Is(err, service.ErrInvalidValentine):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusServiceUnavailable, "backpressure"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
