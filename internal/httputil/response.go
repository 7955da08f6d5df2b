package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every API response.
// Code is 0 on success and 1 on a handled failure; Data is omitted on failure.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeOK    = 0
	CodeError = 1
)

// RespondJSON writes a JSON response with the given status code.
// It marshals first so an encoding failure never leaves a partial response.
func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondOK writes a success envelope
func RespondOK(w http.ResponseWriter, status int, message string, data interface{}) {
	RespondJSON(w, status, Envelope{Code: CodeOK, Message: message, Data: data})
}

// RespondError writes a failure envelope
func RespondError(w http.ResponseWriter, status int, message string) {
	payload, err := json.Marshal(Envelope{Code: CodeError, Message: message})
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
