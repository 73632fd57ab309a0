// Package model contains domain models for the fuel routing service.
package model

import "time"

// ─── Enums ──────────────────────────────────────────────────

type Role string

const (
	RoleBasic   Role = "basic"
	RolePremium Role = "premium"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBasic, RolePremium, RolePartner, RoleAdmin:
		return true
	}
	return false
}

type FuelKind string

const (
	FuelPB95   FuelKind = "pb95"
	FuelPB98   FuelKind = "pb98"
	FuelDiesel FuelKind = "diesel"
	FuelLPG    FuelKind = "lpg"
)

type RouteKind string

const (
	RouteFastest  RouteKind = "fastest"
	RouteCheapest RouteKind = "cheapest"
	RouteShortest RouteKind = "shortest"
)

type AccountStatus string

const (
	AccountActive  AccountStatus = "active"
	AccountBlocked AccountStatus = "blocked"
)

// ─── Identity & Profile ─────────────────────────────────────

// Identity is the authenticated user for one session.
// Role is immutable after creation; there is no escalation path.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// VehicleProfile describes the vehicle used for fuel math.
type VehicleProfile struct {
	Kind                 string  `json:"kind"`
	ConsumptionLPer100Km float64 `json:"consumption_l_per_100km"`
	TankCapacityLiters   float64 `json:"tank_capacity_liters"`
}

// Profile holds per-identity preferences. RoutePreference and
// MaxAlternatives are meaningful only for premium identities.
type Profile struct {
	PreferredFuel   FuelKind        `json:"preferred_fuel,omitempty"`
	RoutePreference RouteKind       `json:"route_preference,omitempty"`
	MaxAlternatives int             `json:"max_alternatives,omitempty"`
	Vehicle         *VehicleProfile `json:"vehicle,omitempty"`
}

// ProfileUpdate is a partial profile merge. Nil fields are left untouched.
type ProfileUpdate struct {
	PreferredFuel   *FuelKind       `json:"preferred_fuel,omitempty"`
	RoutePreference *RouteKind      `json:"route_preference,omitempty"`
	MaxAlternatives *int            `json:"max_alternatives,omitempty"`
	Vehicle         *VehicleProfile `json:"vehicle,omitempty"`
}

// ─── Stations ───────────────────────────────────────────────

// Station is one catalog entry. A price exists for fuel kind k only
// where Availability[k] is true; prices are non-negative.
type Station struct {
	ID           string               `json:"id"`
	OwnerID      string               `json:"owner_id,omitempty"`
	Name         string               `json:"name"`
	Address      string               `json:"address"`
	City         string               `json:"city"`
	Prices       map[FuelKind]float64 `json:"prices"`
	Availability map[FuelKind]bool    `json:"availability"`
	Rating       float64              `json:"rating,omitempty"`
}

// Normalize enforces the catalog invariant on a submitted station: a
// price exists for fuel kind k only where Availability[k] is true. Prices
// without availability are dropped, availability without a price is
// switched off.
func (s *Station) Normalize() {
	for fuel := range s.Prices {
		if !s.Availability[fuel] {
			delete(s.Prices, fuel)
		}
	}
	for fuel, available := range s.Availability {
		if !available {
			continue
		}
		if _, ok := s.Prices[fuel]; !ok {
			s.Availability[fuel] = false
		}
	}
}

// PriceFor returns the price for the given fuel kind, honoring availability.
func (s *Station) PriceFor(fuel FuelKind) (float64, bool) {
	if !s.Availability[fuel] {
		return 0, false
	}
	price, ok := s.Prices[fuel]
	if !ok || price < 0 {
		return 0, false
	}
	return price, true
}

// ─── Trips & Recommendations ────────────────────────────────

// TripRequest is one routing query. Fuel may be empty, in which case the
// profile's preferred fuel is used.
type TripRequest struct {
	Origin              string         `json:"origin"`
	Destination         string         `json:"destination"`
	Fuel                FuelKind       `json:"fuel,omitempty"`
	Vehicle             VehicleProfile `json:"vehicle"`
	CurrentFuelFraction float64        `json:"current_fuel_fraction"`
}

// Recommendation is one ranked route + refuel stop. Request-scoped,
// never persisted.
type Recommendation struct {
	RouteKind             RouteKind `json:"route_kind"`
	DistanceKm            float64   `json:"distance_km"`
	DurationMin           float64   `json:"duration_min"`
	FuelNeededLiters      float64   `json:"fuel_needed_liters"`
	TotalCost             float64   `json:"total_cost"`
	Station               Station   `json:"station"`
	StationDistanceKm     float64   `json:"station_distance_km"`
	EstimatedSavings      float64   `json:"estimated_savings"`
	FeasibleWithoutRefuel bool      `json:"feasible_without_refuel"`
}

// ─── Partner offers ─────────────────────────────────────────

// Offer is a partner promotion attached to a station.
type Offer struct {
	ID          string    `json:"id"`
	StationID   string    `json:"station_id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Discount    string    `json:"discount"`
	ValidUntil  time.Time `json:"valid_until"`
	CreatedAt   time.Time `json:"created_at"`
}

// ─── Reviews & issue reports ────────────────────────────────

// Review is a user rating for a station. Rating is 1..5.
type Review struct {
	ID        string    `json:"id"`
	StationID string    `json:"station_id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueReport is a user-filed problem with a station (wrong price, outage).
type IssueReport struct {
	ID          string    `json:"id"`
	StationID   string    `json:"station_id"`
	ReporterID  string    `json:"reporter_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ─── Admin view ─────────────────────────────────────────────

// Account is the admin-facing view of a registered user.
type Account struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Role       Role          `json:"role"`
	Status     AccountStatus `json:"status"`
	Violations int           `json:"violations"`
	JoinedAt   time.Time     `json:"joined_at"`
}
