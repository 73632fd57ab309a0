// Package service contains the core business logic for fuel routing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/pkg/route"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	// ErrNoStationAvailable is returned when no catalog entry offers the
	// requested fuel kind. The engine never substitutes a different fuel.
	ErrNoStationAvailable = errors.New("no station offers the requested fuel kind")
)

// InvalidTripRequestError names the trip request field that failed
// validation.
type InvalidTripRequestError struct {
	Field string
}

func (e *InvalidTripRequestError) Error() string {
	return fmt.Sprintf("invalid trip request: %s", e.Field)
}

// ─── Constants ──────────────────────────────────────────────

const (
	// DefaultMaxAlternatives is the premium variant count when the
	// profile does not set one.
	DefaultMaxAlternatives = 3
)

// premiumRouteOrder is the fixed variant order for premium responses.
var premiumRouteOrder = []model.RouteKind{
	model.RouteFastest,
	model.RouteCheapest,
	model.RouteShortest,
}

// ─── Collaborators ──────────────────────────────────────────

// Catalog is the read-only station source. An empty city lists every
// station.
type Catalog interface {
	ListStations(ctx context.Context, city string) ([]model.Station, error)
}

// ─── RecommendationEngine ───────────────────────────────────

// RecommendationEngine turns a trip request + station catalog + role tier
// into ranked recommendations.
//
// Route figures come from the injected estimator, so the engine itself is
// deterministic and testable without network access. The engine holds no
// mutable state between calls; each call is independent.
//
// Ranking per route kind:
//  1. Total trip cost (fuel needed × station price), ascending.
//  2. Station distance from the origin, ascending.
//  3. Station rating, descending.
//  4. Station ID, ascending — keeps the result deterministic.
type RecommendationEngine struct {
	catalog  Catalog
	estimate route.Estimator
}

// NewRecommendationEngine creates an engine over the given catalog and
// route estimator.
func NewRecommendationEngine(catalog Catalog, estimate route.Estimator) *RecommendationEngine {
	return &RecommendationEngine{catalog: catalog, estimate: estimate}
}

// Recommend produces the recommendation set for one trip request.
//
// Tier behavior: premium receives up to Profile.MaxAlternatives variants
// (default 3), one per route kind in the order Fastest, Cheapest,
// Shortest, each independently station-optimized. Every other role
// receives exactly one Fastest recommendation.
//
// Either a full set is returned or a typed error — never a mix.
func (e *RecommendationEngine) Recommend(
	ctx context.Context,
	req model.TripRequest,
	role model.Role,
	profile *model.Profile,
) ([]model.Recommendation, error) {

	// ── Step 1: Validation ──────────────────────────────
	if err := validateTripRequest(req); err != nil {
		return nil, err
	}

	fuel := req.Fuel
	if fuel == "" && profile != nil {
		fuel = profile.PreferredFuel
	}
	if fuel == "" {
		return nil, &InvalidTripRequestError{Field: "fuel"}
	}

	// ── Step 2: Eligible stations ───────────────────────
	stations, err := e.catalog.ListStations(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("recommend: list stations: %w", err)
	}

	eligible := make([]model.Station, 0, len(stations))
	maxPrice := 0.0
	for _, st := range stations {
		price, ok := st.PriceFor(fuel)
		if !ok {
			continue
		}
		if price > maxPrice {
			maxPrice = price
		}
		eligible = append(eligible, st)
	}

	if len(eligible) == 0 {
		return nil, ErrNoStationAvailable
	}

	log.Printf("[recommend] %s → %s fuel=%s role=%s: %d eligible stations",
		req.Origin, req.Destination, fuel, role, len(eligible))

	// ── Step 3: Route variants per tier ─────────────────
	kinds := []model.RouteKind{model.RouteFastest}
	if role == model.RolePremium {
		n := DefaultMaxAlternatives
		if profile != nil && profile.MaxAlternatives > 0 {
			n = profile.MaxAlternatives
		}
		if n > len(premiumRouteOrder) {
			n = len(premiumRouteOrder)
		}
		kinds = premiumRouteOrder[:n]
	}

	// ── Step 4: Rank per variant ────────────────────────
	recs := make([]model.Recommendation, 0, len(kinds))
	for _, kind := range kinds {
		recs = append(recs, e.buildRecommendation(req, kind, fuel, eligible, maxPrice))
	}

	return recs, nil
}

// buildRecommendation computes one route variant and picks the best
// refuel stop for it.
func (e *RecommendationEngine) buildRecommendation(
	req model.TripRequest,
	kind model.RouteKind,
	fuel model.FuelKind,
	eligible []model.Station,
	maxPrice float64,
) model.Recommendation {

	est := e.estimate(req.Origin, req.Destination, kind)
	fuelNeeded := round2(est.DistanceKm / 100.0 * req.Vehicle.ConsumptionLPer100Km)

	type candidate struct {
		station    model.Station
		price      float64
		totalCost  float64
		distanceKm float64
	}

	cands := make([]candidate, 0, len(eligible))
	for _, st := range eligible {
		price, _ := st.PriceFor(fuel)
		cands = append(cands, candidate{
			station:    st,
			price:      price,
			totalCost:  round2(fuelNeeded * price),
			distanceKm: e.estimate(req.Origin, st.Address, model.RouteFastest).DistanceKm,
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.totalCost != b.totalCost {
			return a.totalCost < b.totalCost
		}
		if a.distanceKm != b.distanceKm {
			return a.distanceKm < b.distanceKm
		}
		if a.station.Rating != b.station.Rating {
			return a.station.Rating > b.station.Rating
		}
		return a.station.ID < b.station.ID
	})

	best := cands[0]

	savings := round2((maxPrice - best.price) * fuelNeeded)
	if savings < 0 {
		savings = 0
	}

	// Refuelling at the chosen station is assumed; the flag only tells
	// callers whether the trip would also work without the stop.
	feasible := fuelNeeded <= req.CurrentFuelFraction*req.Vehicle.TankCapacityLiters

	log.Printf("[recommend]   %s: %.1f km, %.0f min, %.2f L → %s @ %.2f (cost %.2f, savings %.2f)",
		kind, est.DistanceKm, est.DurationMin, fuelNeeded,
		best.station.Name, best.price, best.totalCost, savings)

	return model.Recommendation{
		RouteKind:             kind,
		DistanceKm:            est.DistanceKm,
		DurationMin:           est.DurationMin,
		FuelNeededLiters:      fuelNeeded,
		TotalCost:             best.totalCost,
		Station:               best.station,
		StationDistanceKm:     best.distanceKm,
		EstimatedSavings:      savings,
		FeasibleWithoutRefuel: feasible,
	}
}

// ─── Validation ─────────────────────────────────────────────

func validateTripRequest(req model.TripRequest) error {
	switch {
	case req.Origin == "":
		return &InvalidTripRequestError{Field: "origin"}
	case req.Destination == "":
		return &InvalidTripRequestError{Field: "destination"}
	case req.Vehicle.ConsumptionLPer100Km <= 0:
		return &InvalidTripRequestError{Field: "vehicle.consumption_l_per_100km"}
	case req.Vehicle.TankCapacityLiters <= 0:
		return &InvalidTripRequestError{Field: "vehicle.tank_capacity_liters"}
	case req.CurrentFuelFraction < 0 || req.CurrentFuelFraction > 1:
		return &InvalidTripRequestError{Field: "current_fuel_fraction"}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
