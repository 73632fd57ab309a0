package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/session"
)

// ReviewBody is the JSON body for POST /api/v1/stations/{id}/reviews.
type ReviewBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReportBody is the JSON body for POST /api/v1/reports.
type ReportBody struct {
	StationID   string `json:"station_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// FeedbackHandler handles station reviews and issue reports.
type FeedbackHandler struct {
	feedback *repository.FeedbackRepository
	stations *repository.StationRepository
	sessions *session.Store
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(
	feedback *repository.FeedbackRepository,
	stations *repository.StationRepository,
	sessions *session.Store,
) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, stations: stations, sessions: sessions}
}

// ListReviews handles GET /api/v1/stations/{id}/reviews
func (h *FeedbackHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]

	reviews, err := h.feedback.ListReviews(r.Context(), stationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// AddReview handles POST /api/v1/stations/{id}/reviews
//
// Any logged-in identity can review a station. Rating must be 1..5.
func (h *FeedbackHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Current()
	if st == nil {
		writeError(w, session.ErrNoActiveSession)
		return
	}

	var body ReviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be between 1 and 5"})
		return
	}

	stationID := mux.Vars(r)["id"]
	if _, err := h.stations.GetStation(r.Context(), stationID); err != nil {
		writeError(w, err)
		return
	}

	review, err := h.feedback.AddReview(r.Context(), &model.Review{
		ID:        uuid.NewString(),
		StationID: stationID,
		AuthorID:  st.Identity.ID,
		Author:    st.Identity.DisplayName,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// AddReport handles POST /api/v1/reports
//
// Files an issue report (wrong price, outage, other) against a station.
func (h *FeedbackHandler) AddReport(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Current()
	if st == nil {
		writeError(w, session.ErrNoActiveSession)
		return
	}

	var body ReportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.StationID == "" || body.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "station_id and category are required"})
		return
	}

	report, err := h.feedback.AddReport(r.Context(), &model.IssueReport{
		ID:          uuid.NewString(),
		StationID:   body.StationID,
		ReporterID:  st.Identity.ID,
		Category:    body.Category,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
