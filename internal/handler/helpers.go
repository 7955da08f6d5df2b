package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"inkstand/internal/domain"
	"inkstand/internal/httputil"
)

// handleError converts domain errors to failure envelopes.
// Server-side failures are logged; their details are not sent to the client.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrIntegrity):
		logger.Error("integrity check failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "upload is incomplete, please upload the file again")
	case errors.Is(err, domain.ErrStorage):
		logger.Error("storage failure", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "file storage failed")
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// queryParam reads a query string parameter
func queryParam(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}
