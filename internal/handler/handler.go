// Package handler contains HTTP request handlers for the fuel routing API.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/service"
	"github.com/mwrona/fuelroute/internal/session"
)

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps the service error taxonomy to HTTP statuses. Every
// error here is caller-visible and recoverable; only unknown errors
// become a 500.
func writeError(w http.ResponseWriter, err error) {
	var itr *service.InvalidTripRequestError

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "invalid_credentials",
			"message": "Invalid email or password.",
		})
	case errors.Is(err, session.ErrNoActiveSession):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "no_active_session",
			"message": "Log in first.",
		})
	case errors.Is(err, session.ErrRoleNotEligible):
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":   "role_not_eligible",
			"message": "Your role is not allowed to perform this operation.",
		})
	case errors.As(err, &itr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_trip_request",
			"field": itr.Field,
		})
	case errors.Is(err, service.ErrNoStationAvailable):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "no_station_available",
			"message": "No station offers the requested fuel kind.",
		})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "not_found",
		})
	default:
		log.Printf("[handler] unexpected error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal_error",
		})
	}
}
