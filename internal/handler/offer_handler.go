package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/session"
)

// OfferBody is the JSON body for POST /api/v1/partner/offers.
type OfferBody struct {
	StationID   string    `json:"station_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Discount    string    `json:"discount"`
	ValidUntil  time.Time `json:"valid_until"`
}

// OfferHandler manages partner promotions. All routes are partner-only.
type OfferHandler struct {
	offers   *repository.OfferRepository
	sessions *session.Store
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(offers *repository.OfferRepository, sessions *session.Store) *OfferHandler {
	return &OfferHandler{offers: offers, sessions: sessions}
}

// requirePartner returns the live partner session, writing the error
// response itself when there is none.
func (h *OfferHandler) requirePartner(w http.ResponseWriter) *session.State {
	st := h.sessions.Current()
	if st == nil {
		writeError(w, session.ErrNoActiveSession)
		return nil
	}
	if st.Identity.Role != model.RolePartner {
		writeError(w, session.ErrRoleNotEligible)
		return nil
	}
	return st
}

// ListOffers handles GET /api/v1/partner/offers
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	st := h.requirePartner(w)
	if st == nil {
		return
	}

	offers, err := h.offers.ListOffersByOwner(r.Context(), st.Identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

// CreateOffer handles POST /api/v1/partner/offers
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	st := h.requirePartner(w)
	if st == nil {
		return
	}

	var body OfferBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Title == "" || body.StationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and station_id are required"})
		return
	}

	offer, err := h.offers.CreateOffer(r.Context(), &model.Offer{
		ID:          uuid.NewString(),
		StationID:   body.StationID,
		OwnerID:     st.Identity.ID,
		Title:       body.Title,
		Description: body.Description,
		Discount:    body.Discount,
		ValidUntil:  body.ValidUntil,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

// DeleteOffer handles DELETE /api/v1/partner/offers/{id}
//
// Partners can only delete their own offers; anything else is 404.
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	st := h.requirePartner(w)
	if st == nil {
		return
	}

	if err := h.offers.DeleteOffer(r.Context(), mux.Vars(r)["id"], st.Identity.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
