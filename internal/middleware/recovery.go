package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"inkstand/internal/httputil"
)

// headerWatcher remembers whether the handler already started its response
type headerWatcher struct {
	http.ResponseWriter
	started bool
}

func (h *headerWatcher) WriteHeader(code int) {
	h.started = true
	h.ResponseWriter.WriteHeader(code)
}

func (h *headerWatcher) Write(b []byte) (int, error) {
	h.started = true
	return h.ResponseWriter.Write(b)
}

// Recovery turns a handler panic into a 500 envelope. When the handler had
// already written part of its response the panic is only logged.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hw := &headerWatcher{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"host", r.Host,
					"path", r.URL.Path,
					"response_started", hw.started,
					"stack", string(debug.Stack()),
				)
				if !hw.started {
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(hw, r)
		})
	}
}
