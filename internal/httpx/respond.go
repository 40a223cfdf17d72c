// Package httpx holds the JSON response helpers and middleware shared by the
// module handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/obs"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error   apperr.Kind `json:"error"`
	Message string      `json:"message"`
}

func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// MaxJSONBytes bounds the request bodies Decode accepts.
const MaxJSONBytes = 1 << 20

// Error writes err as an ErrorBody with the status its kind maps to.
// Server-side failures are logged in full; their body carries only the
// message of the categorized error, never its cause.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal error"
		var e *apperr.Error
		if errors.As(err, &e) && e.Kind != apperr.KindInternal {
			msg = e.Message
		}
		obs.LoggerFromContext(r.Context()).Error("request failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	Respond(w, status, ErrorBody{Error: kind, Message: msg})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated, apperr.KindInvalidToken:
		return http.StatusUnauthorized
	case apperr.KindUnauthorized, apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation, apperr.KindUnsupportedType, apperr.KindPayloadTooLarge:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindCreation, apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON body of at most MaxJSONBytes into v. Malformed bodies
// are validation errors.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Wrap(apperr.KindPayloadTooLarge, "request body too large", err)
		}
		return apperr.Wrap(apperr.KindValidation, "invalid JSON body", err)
	}
	return nil
}
