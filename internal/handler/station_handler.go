package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/session"
)

// StationHandler serves the station catalog and the partner's
// owned-station updates.
type StationHandler struct {
	stations *repository.StationRepository
	sessions *session.Store
}

// NewStationHandler creates a new station handler.
func NewStationHandler(stations *repository.StationRepository, sessions *session.Store) *StationHandler {
	return &StationHandler{stations: stations, sessions: sessions}
}

// ListStations handles GET /api/v1/stations?city=
//
// Returns the full catalog, or one city's stations.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.ListStations(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stations": stations})
}

// ReplaceOwnedStations handles PUT /api/v1/partner/stations
//
// Replaces the partner's owned-station set in the session and writes it
// through to the catalog so subsequent listings see it immediately.
// Non-partner sessions get 403.
func (h *StationHandler) ReplaceOwnedStations(w http.ResponseWriter, r *http.Request) {
	var stations []model.Station
	if err := json.NewDecoder(r.Body).Decode(&stations); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	for i := range stations {
		st := &stations[i]
		if st.Name == "" || st.City == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "every station needs a name and a city",
			})
			return
		}
		for fuel, price := range st.Prices {
			if price < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "price for " + string(fuel) + " must be non-negative",
				})
				return
			}
		}
		// Keep prices and availability consistent before the set is stored.
		st.Normalize()
	}

	st, err := h.sessions.UpdateOwnedStations(r.Context(), stations)
	if err != nil {
		writeError(w, err)
		return
	}

	// Write through to the catalog. The session keeps the ID-assigned set.
	if err := h.stations.ReplaceOwned(r.Context(), st.Identity.ID, st.Stations); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stations": st.Stations})
}
