package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/session"
)

// ─── Request DTOs ───────────────────────────────────────────

// LoginBody is the JSON body for POST /api/v1/auth/login.
type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterBody is the JSON body for POST /api/v1/auth/register.
type RegisterBody struct {
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

// ─── AuthHandler ────────────────────────────────────────────

// AuthHandler exposes the session store over HTTP and mirrors each
// login/registration into the account registry so admin management and
// the blocked-account check have data to work with.
type AuthHandler struct {
	sessions *session.Store
	accounts *repository.AccountRepository
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *session.Store, accounts *repository.AccountRepository) *AuthHandler {
	return &AuthHandler{sessions: sessions, accounts: accounts}
}

// Login handles POST /api/v1/auth/login
//
// Fails with 401 when the password is shorter than the minimum policy,
// and with 403 when the account has been blocked by an admin.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	// Blocked accounts cannot log back in.
	acc, err := h.accounts.GetAccountByEmail(r.Context(), body.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		writeError(w, err)
		return
	}
	if acc != nil && acc.Status == model.AccountBlocked {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":   "account_blocked",
			"message": "This account has been blocked by an administrator.",
		})
		return
	}

	st, err := h.sessions.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.recordAccount(r, st)
	writeJSON(w, http.StatusOK, st)
}

// Register handles POST /api/v1/auth/register
//
// Always succeeds; the role is fixed at the requested value.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Email == "" || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and name are required"})
		return
	}

	st, err := h.sessions.Register(r.Context(), body.Email, body.Name, body.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	h.recordAccount(r, st)
	writeJSON(w, http.StatusCreated, st)
}

// LoginDemo handles POST /api/v1/auth/demo/{role}
//
// Logs in one of the four canned identities.
func (h *AuthHandler) LoginDemo(w http.ResponseWriter, r *http.Request) {
	role := model.Role(mux.Vars(r)["role"])
	if !role.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "role must be one of: basic, premium, partner, admin",
		})
		return
	}

	st, err := h.sessions.LoginDemo(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}

	h.recordAccount(r, st)
	writeJSON(w, http.StatusOK, st)
}

// Logout handles POST /api/v1/auth/logout
//
// Idempotent: logging out while logged out still returns 200.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Session handles GET /api/v1/auth/session
//
// Returns the active session, restoring it from the persisted slot when
// the process has restarted. A missing or corrupt slot is the normal
// logged-out state, never an error.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Current()
	if st == nil {
		restored, err := h.sessions.Restore(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		st = restored
	}

	if st == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"active": true, "session": st})
}

// UpdateProfile handles PUT /api/v1/profile
//
// Merges a partial update into the current profile. Premium-only fields
// on a non-premium session yield 403.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	st, err := h.sessions.UpdateProfile(r.Context(), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// recordAccount mirrors the logged-in identity into the account registry.
// Failures are logged, not surfaced — the session is already established.
func (h *AuthHandler) recordAccount(r *http.Request, st *session.State) {
	err := h.accounts.UpsertAccount(r.Context(), &model.Account{
		ID:    st.Identity.ID,
		Name:  st.Identity.DisplayName,
		Email: st.Identity.Email,
		Role:  st.Identity.Role,
	})
	if err != nil {
		log.Printf("[handler] record account %s: %v", st.Identity.Email, err)
	}
}
