// Package session owns the current authenticated identity and its
// role-scoped profile, durable across process restarts via one
// serialized slot.
//
// The store is a two-state machine: LoggedOut ↔ LoggedIn. Login,
// Register and LoginDemo transition to LoggedIn; Logout transitions
// back; every other operation requires LoggedIn.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mwrona/fuelroute/internal/model"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	// ErrInvalidCredentials is returned when the login password fails
	// the minimum-length policy.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoActiveSession is returned by operations that require a
	// logged-in identity.
	ErrNoActiveSession = errors.New("no active session")

	// ErrRoleNotEligible is returned when the current role is not
	// allowed to perform the operation.
	ErrRoleNotEligible = errors.New("role is not eligible for this operation")
)

// MinPasswordLen is the mock login policy: anything shorter fails.
const MinPasswordLen = 6

// ─── State ──────────────────────────────────────────────────

// State is everything owned by one logged-in session: the identity, its
// profile, and (for partners) the owned station set. This is the blob
// serialized into the Slot.
type State struct {
	Identity model.Identity  `json:"identity"`
	Profile  model.Profile   `json:"profile"`
	Stations []model.Station `json:"stations,omitempty"`
}

func (st *State) clone() *State {
	cp := *st
	if st.Profile.Vehicle != nil {
		v := *st.Profile.Vehicle
		cp.Profile.Vehicle = &v
	}
	cp.Stations = append([]model.Station(nil), st.Stations...)
	return &cp
}

// ─── Store ──────────────────────────────────────────────────

// Store is the single authoritative holder of "who is logged in and with
// what profile".
//
// Concurrency: the mutex only guards the in-memory pointer. Persisted
// writes are last-write-wins with no merge logic; callers that need
// stronger consistency across concurrent updates must serialize them.
type Store struct {
	mu      sync.Mutex
	slot    Slot
	current *State
}

// NewStore creates a logged-out store persisting to the given slot.
func NewStore(slot Slot) *Store {
	return &Store{slot: slot}
}

// Login authenticates with the mock credential policy: the password must
// be at least MinPasswordLen characters. The display name is derived from
// the email local part. On success the session is persisted.
func (s *Store) Login(ctx context.Context, email, password string) (*State, error) {
	if len(password) < MinPasswordLen {
		return nil, ErrInvalidCredentials
	}

	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}

	st := &State{
		Identity: model.Identity{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: name,
			Role:        model.RoleBasic,
		},
	}
	return s.establish(ctx, st)
}

// Register creates a fresh identity with the requested role. The
// registration path always succeeds; role is fixed at creation.
func (s *Store) Register(ctx context.Context, email, name string, role model.Role) (*State, error) {
	if !role.Valid() {
		role = model.RoleBasic
	}
	st := &State{
		Identity: model.Identity{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: name,
			Role:        role,
		},
	}
	return s.establish(ctx, st)
}

// LoginDemo deterministically returns one of four canned identities, one
// per role. The premium demo carries a full vehicle profile; the partner
// demo owns two stations.
func (s *Store) LoginDemo(ctx context.Context, role model.Role) (*State, error) {
	st, ok := demoState(role)
	if !ok {
		return nil, fmt.Errorf("login demo: %w", ErrRoleNotEligible)
	}
	return s.establish(ctx, st)
}

// Logout clears the in-memory identity and erases the persisted slot.
// Idempotent: logging out with no active session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	active := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if err := s.slot.Clear(ctx); err != nil {
		return err
	}
	if active {
		log.Printf("[session] logged out")
	}
	return nil
}

// UpdateProfile merges the partial update into the current profile and
// re-persists. RoutePreference and MaxAlternatives are premium-only and
// rejected with ErrRoleNotEligible for other roles rather than silently
// ignored.
func (s *Store) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveSession
	}

	if s.current.Identity.Role != model.RolePremium &&
		(upd.RoutePreference != nil || upd.MaxAlternatives != nil) {
		return nil, ErrRoleNotEligible
	}

	next := s.current.clone()
	if upd.PreferredFuel != nil {
		next.Profile.PreferredFuel = *upd.PreferredFuel
	}
	if upd.RoutePreference != nil {
		next.Profile.RoutePreference = *upd.RoutePreference
	}
	if upd.MaxAlternatives != nil {
		next.Profile.MaxAlternatives = *upd.MaxAlternatives
	}
	if upd.Vehicle != nil {
		v := *upd.Vehicle
		next.Profile.Vehicle = &v
	}

	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return next.clone(), nil
}

// UpdateOwnedStations replaces the identity's owned-station set.
// Valid only for the partner role.
func (s *Store) UpdateOwnedStations(ctx context.Context, stations []model.Station) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveSession
	}
	if s.current.Identity.Role != model.RolePartner {
		return nil, ErrRoleNotEligible
	}

	next := s.current.clone()
	next.Stations = append([]model.Station(nil), stations...)
	for i := range next.Stations {
		if next.Stations[i].ID == "" {
			next.Stations[i].ID = uuid.NewString()
		}
		next.Stations[i].OwnerID = next.Identity.ID
	}

	if err := s.persistLocked(ctx, next); err != nil {
		return nil, err
	}
	return next.clone(), nil
}

// Restore deserializes the persisted slot on process start. Absent or
// corrupt data is the normal logged-out state, never an error.
func (s *Store) Restore(ctx context.Context) (*State, error) {
	blob, err := s.slot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}

	st := &State{}
	if err := json.Unmarshal(blob, st); err != nil || st.Identity.ID == "" {
		log.Printf("[session] discarding unreadable session slot")
		return nil, nil
	}

	s.mu.Lock()
	s.current = st
	s.mu.Unlock()

	log.Printf("[session] restored session for %s (%s)", st.Identity.Email, st.Identity.Role)
	return st.clone(), nil
}

// Current returns a snapshot of the active session, or nil when logged out.
func (s *Store) Current() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.clone()
}

// ─── Private helpers ────────────────────────────────────────

func (s *Store) establish(ctx context.Context, st *State) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(ctx, st); err != nil {
		return nil, err
	}
	log.Printf("[session] logged in %s as %s", st.Identity.Email, st.Identity.Role)
	return st.clone(), nil
}

// persistLocked serializes st into the slot and swaps the in-memory state.
// Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context, st *State) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.slot.Save(ctx, blob); err != nil {
		return err
	}
	s.current = st
	return nil
}

// ─── Demo identities ────────────────────────────────────────

// demoState returns the canned identity for the given role.
func demoState(role model.Role) (*State, bool) {
	switch role {
	case model.RoleBasic:
		return &State{
			Identity: model.Identity{ID: "1", Email: "user@demo.pl", DisplayName: "Jan Kowalski", Role: model.RoleBasic},
		}, true

	case model.RolePremium:
		return &State{
			Identity: model.Identity{ID: "2", Email: "premium@demo.pl", DisplayName: "Anna Nowak", Role: model.RolePremium},
			Profile: model.Profile{
				PreferredFuel:   model.FuelPB95,
				RoutePreference: model.RouteFastest,
				MaxAlternatives: 3,
				Vehicle: &model.VehicleProfile{
					Kind:                 "sedan",
					ConsumptionLPer100Km: 6.5,
					TankCapacityLiters:   50,
				},
			},
		}, true

	case model.RolePartner:
		return &State{
			Identity: model.Identity{ID: "3", Email: "partner@demo.pl", DisplayName: "Stacja Orlen", Role: model.RolePartner},
			Stations: []model.Station{
				{
					ID:      "st1",
					OwnerID: "3",
					Name:    "Orlen - Warszawa Bemowo",
					Address: "ul. Powstańców Śląskich 126",
					City:    "Warszawa",
					Prices: map[model.FuelKind]float64{
						model.FuelPB95:   6.49,
						model.FuelPB98:   7.12,
						model.FuelDiesel: 6.38,
						model.FuelLPG:    3.15,
					},
					Availability: map[model.FuelKind]bool{
						model.FuelPB95:   true,
						model.FuelPB98:   true,
						model.FuelDiesel: true,
						model.FuelLPG:    true,
					},
				},
				{
					ID:      "st2",
					OwnerID: "3",
					Name:    "Orlen - Warszawa Mokotów",
					Address: "ul. Puławska 234",
					City:    "Warszawa",
					Prices: map[model.FuelKind]float64{
						model.FuelPB95:   6.52,
						model.FuelPB98:   7.15,
						model.FuelDiesel: 6.41,
						model.FuelLPG:    3.18,
					},
					Availability: map[model.FuelKind]bool{
						model.FuelPB95:   true,
						model.FuelPB98:   true,
						model.FuelDiesel: true,
						model.FuelLPG:    false,
					},
				},
			},
		}, true

	case model.RoleAdmin:
		return &State{
			Identity: model.Identity{ID: "4", Email: "admin@demo.pl", DisplayName: "Administrator", Role: model.RoleAdmin},
		}, true
	}
	return nil, false
}
