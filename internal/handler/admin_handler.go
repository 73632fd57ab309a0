package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/session"
)

// AccountStatusBody is the JSON body for POST /api/v1/admin/users/{id}/status.
type AccountStatusBody struct {
	Status model.AccountStatus `json:"status"`
}

// AdminHandler handles account management and issue report review.
// All routes are admin-only.
type AdminHandler struct {
	accounts *repository.AccountRepository
	feedback *repository.FeedbackRepository
	sessions *session.Store
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	accounts *repository.AccountRepository,
	feedback *repository.FeedbackRepository,
	sessions *session.Store,
) *AdminHandler {
	return &AdminHandler{accounts: accounts, feedback: feedback, sessions: sessions}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter) bool {
	st := h.sessions.Current()
	if st == nil {
		writeError(w, session.ErrNoActiveSession)
		return false
	}
	if st.Identity.Role != model.RoleAdmin {
		writeError(w, session.ErrRoleNotEligible)
		return false
	}
	return true
}

// ListAccounts handles GET /api/v1/admin/users
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": accounts})
}

// SetAccountStatus handles POST /api/v1/admin/users/{id}/status
//
// Blocks or unblocks an account. Blocked accounts fail login.
func (h *AdminHandler) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}

	var body AccountStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Status != model.AccountActive && body.Status != model.AccountBlocked {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be 'active' or 'blocked'"})
		return
	}

	if err := h.accounts.SetAccountStatus(r.Context(), mux.Vars(r)["id"], body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(body.Status)})
}

// ListReports handles GET /api/v1/admin/reports
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w) {
		return
	}

	reports, err := h.feedback.ListReports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}
