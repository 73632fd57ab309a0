// Package route provides the route estimation collaborator used by the
// recommendation engine.
//
// Estimates are fully deterministic: each place name is mapped to a stable
// synthetic coordinate inside the Polish bounding box, distance is the
// Haversine great-circle distance between the two points scaled by a road
// winding factor, and each route kind applies its own distance/speed
// profile. Suitable for demo purposes — in production, swap with OSRM or
// Google Maps API behind the same Estimator signature.
package route

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/mwrona/fuelroute/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// RoadWindingFactor scales great-circle distance up to an
	// approximate road distance.
	RoadWindingFactor = 1.22

	// Synthetic coordinates are generated inside Poland's bounding box.
	minLat, maxLat = 49.0, 54.8
	minLon, maxLon = 14.1, 24.1
)

// Estimate holds the route figures for one origin-destination pair.
type Estimate struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// Estimator is the pluggable route estimation function consumed by the
// recommendation engine. Implementations must be pure: same inputs, same
// outputs.
type Estimator func(origin, destination string, kind model.RouteKind) Estimate

// ─── Route kind profiles ────────────────────────────────────
//
// Shortest takes the base distance at the lowest average speed (local
// roads). Fastest trades a slightly longer path for highway speed.
// Cheapest avoids tolls, taking the longest path at a middling speed.
//
// These profiles guarantee two invariants the engine's callers rely on:
// Shortest has the minimum distance, Fastest the minimum duration.

func kindProfile(kind model.RouteKind) (distFactor, speedKmph float64) {
	switch kind {
	case model.RouteFastest:
		return 1.06, 95.0
	case model.RouteCheapest:
		return 1.15, 80.0
	default: // shortest
		return 1.0, 65.0
	}
}

// ─── Estimation ─────────────────────────────────────────────

// EstimateRoute returns deterministic distance/duration figures for the
// given origin-destination pair and route kind.
//
// Complexity: O(len(origin) + len(destination))
func EstimateRoute(origin, destination string, kind model.RouteKind) Estimate {
	oLat, oLon := placePoint(origin)
	dLat, dLon := placePoint(destination)

	base := haversineKm(oLat, oLon, dLat, dLon) * RoadWindingFactor

	distFactor, speed := kindProfile(kind)
	dist := base * distFactor

	return Estimate{
		DistanceKm:  math.Round(dist*100) / 100,
		DurationMin: math.Round(dist/speed*60*10) / 10,
	}
}

// placePoint derives a stable synthetic coordinate for a place name.
// Names are normalized (trimmed, lowercased) so "Warszawa" and
// " warszawa " resolve to the same point.
func placePoint(name string) (lat, lon float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	sum := h.Sum64()

	latFrac := float64(sum%1_000_000) / 1_000_000.0
	lonFrac := float64((sum/1_000_000)%1_000_000) / 1_000_000.0

	return minLat + latFrac*(maxLat-minLat), minLon + lonFrac*(maxLon-minLon)
}

// haversineKm returns the great-circle distance between two WGS-84 points
// in kilometers.
//
// Complexity: O(1)
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
