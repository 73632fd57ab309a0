package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/internal/service"
	"github.com/mwrona/fuelroute/internal/session"
)

// RecommendBody is the JSON body for POST /api/v1/recommend.
type RecommendBody struct {
	Origin              string                `json:"origin"`
	Destination         string                `json:"destination"`
	Fuel                model.FuelKind        `json:"fuel,omitempty"`
	Vehicle             *model.VehicleProfile `json:"vehicle,omitempty"`
	CurrentFuelFraction float64               `json:"current_fuel_fraction"`
}

// RecommendHandler exposes the recommendation engine. The role tier and
// profile defaults come from the live session.
type RecommendHandler struct {
	engine   *service.RecommendationEngine
	sessions *session.Store
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(engine *service.RecommendationEngine, sessions *session.Store) *RecommendHandler {
	return &RecommendHandler{engine: engine, sessions: sessions}
}

// Recommend handles POST /api/v1/recommend
//
// Request body:
//
//	{
//	  "origin": "Warszawa, Krakowskie Przedmieście",
//	  "destination": "Gdańsk, Długi Targ",
//	  "fuel": "pb95",
//	  "vehicle": {"kind": "sedan", "consumption_l_per_100km": 6.5, "tank_capacity_liters": 50},
//	  "current_fuel_fraction": 0.4
//	}
//
// Vehicle may be omitted when the profile carries one. Basic sessions get
// one Fastest recommendation; premium sessions get up to three variants.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Current()
	if st == nil {
		writeError(w, session.ErrNoActiveSession)
		return
	}

	var body RecommendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req := model.TripRequest{
		Origin:              body.Origin,
		Destination:         body.Destination,
		Fuel:                body.Fuel,
		CurrentFuelFraction: body.CurrentFuelFraction,
	}
	if body.Vehicle != nil {
		req.Vehicle = *body.Vehicle
	} else if st.Profile.Vehicle != nil {
		req.Vehicle = *st.Profile.Vehicle
	}

	recs, err := h.engine.Recommend(r.Context(), req, st.Identity.Role, &st.Profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
	})
}
