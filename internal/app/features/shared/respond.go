// Package shared holds the JSON response helpers every feature handler
// uses, including the mapping from domain errors to HTTP statuses.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/housekeeper/internal/app/household"
	"go.uber.org/zap"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// DomainError translates err into an HTTP response. Domain errors carry
// curated user-facing messages and map to statuses by kind; integrity
// errors and everything unrecognized are logged and answered with a
// generic 500 so internal details never leak.
func DomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	var de *household.Error
	if errors.As(err, &de) && de.Kind != household.KindIntegrity {
		Error(w, statusForKind(de.Kind), de.Message)
		return
	}
	log.Error("request failed", zap.Error(err))
	Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func statusForKind(k household.Kind) int {
	switch k {
	case household.KindValidation:
		return http.StatusBadRequest
	case household.KindAuthentication:
		return http.StatusUnauthorized
	case household.KindAuthorization:
		return http.StatusForbidden
	case household.KindConflict:
		return http.StatusConflict
	case household.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
// Returns false after writing a 400 when the body is unusable.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "Request body is not valid JSON.")
		return false
	}
	return true
}
