package httpadapter

import (
	"net/http"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnknownChapter):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrChapterRequired):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrNoMatch):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrConfiguration):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrProvider):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrFetch), domain.IsKind(err, domain.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
