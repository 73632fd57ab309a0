package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mwrona/fuelroute/internal/model"
	"github.com/mwrona/fuelroute/pkg/route"
)

// ─── Test doubles ───────────────────────────────────────────

type stubCatalog struct {
	stations []model.Station
	err      error
}

func (c *stubCatalog) ListStations(_ context.Context, _ string) ([]model.Station, error) {
	return c.stations, c.err
}

// stubEstimator returns the fixed figures from the table for the trip
// destination and per-address distances for station detours.
func stubEstimator(trips map[model.RouteKind]route.Estimate, stationKm map[string]float64) route.Estimator {
	return func(origin, destination string, kind model.RouteKind) route.Estimate {
		if km, ok := stationKm[destination]; ok {
			return route.Estimate{DistanceKm: km, DurationMin: km}
		}
		return trips[kind]
	}
}

func pb95Station(id, address string, price, rating float64) model.Station {
	return model.Station{
		ID:           id,
		Name:         "Stacja " + id,
		Address:      address,
		City:         "Warszawa",
		Prices:       map[model.FuelKind]float64{model.FuelPB95: price},
		Availability: map[model.FuelKind]bool{model.FuelPB95: true},
		Rating:       rating,
	}
}

var tripTable = map[model.RouteKind]route.Estimate{
	model.RouteFastest:  {DistanceKm: 342, DurationMin: 240},
	model.RouteCheapest: {DistanceKm: 358, DurationMin: 255},
	model.RouteShortest: {DistanceKm: 335, DurationMin: 248},
}

func baseRequest() model.TripRequest {
	return model.TripRequest{
		Origin:      "Warszawa",
		Destination: "Gdańsk",
		Fuel:        model.FuelPB95,
		Vehicle: model.VehicleProfile{
			Kind:                 "sedan",
			ConsumptionLPer100Km: 6.5,
			TankCapacityLiters:   50,
		},
		CurrentFuelFraction: 1.0,
	}
}

// ─── Tests ──────────────────────────────────────────────────

func TestRecommend_BasicPicksCheaperStation(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{
		pb95Station("st-a", "addr-a", 6.49, 4.5),
		pb95Station("st-b", "addr-b", 5.89, 4.3),
	}}
	// Equal station distances: cost alone decides.
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10, "addr-b": 10}))

	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RoleBasic, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("basic tier returned %d recommendations, want 1", len(recs))
	}
	if recs[0].RouteKind != model.RouteFastest {
		t.Errorf("RouteKind = %q, want fastest", recs[0].RouteKind)
	}
	if recs[0].Station.ID != "st-b" {
		t.Errorf("chosen station = %q, want st-b (5.89 beats 6.49)", recs[0].Station.ID)
	}
}

func TestRecommend_PremiumVariantOrder(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	profile := &model.Profile{MaxAlternatives: 3}
	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RolePremium, profile)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []model.RouteKind{model.RouteFastest, model.RouteCheapest, model.RouteShortest}
	if len(recs) != len(want) {
		t.Fatalf("premium returned %d recommendations, want %d", len(recs), len(want))
	}
	for i, kind := range want {
		if recs[i].RouteKind != kind {
			t.Errorf("recs[%d].RouteKind = %q, want %q", i, recs[i].RouteKind, kind)
		}
	}
}

func TestRecommend_PremiumMaxAlternativesCapsVariants(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	profile := &model.Profile{MaxAlternatives: 2}
	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RolePremium, profile)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("premium with max_alternatives=2 returned %d, want 2", len(recs))
	}
	if recs[0].RouteKind != model.RouteFastest || recs[1].RouteKind != model.RouteCheapest {
		t.Errorf("variant order = [%s %s], want [fastest cheapest]", recs[0].RouteKind, recs[1].RouteKind)
	}
}

func TestRecommend_NoStationAvailable(t *testing.T) {
	// pb95-only catalog, LPG requested: must fail, never substitute.
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	req := baseRequest()
	req.Fuel = model.FuelLPG

	_, err := engine.Recommend(context.Background(), req, model.RoleBasic, nil)
	if !errors.Is(err, ErrNoStationAvailable) {
		t.Errorf("Recommend() error = %v, want ErrNoStationAvailable", err)
	}
}

func TestRecommend_ConcreteFuelMath(t *testing.T) {
	// 342 km at 6.5 L/100km = 22.23 L; at 6.49/L ≈ 144.27.
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RoleBasic, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	rec := recs[0]
	if rec.FuelNeededLiters != 22.23 {
		t.Errorf("FuelNeededLiters = %v, want 22.23", rec.FuelNeededLiters)
	}
	if math.Abs(rec.TotalCost-22.23*6.49) > 0.01 {
		t.Errorf("TotalCost = %v, want ≈ %v", rec.TotalCost, 22.23*6.49)
	}
}

func TestRecommend_SavingsNeverNegative(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{
		pb95Station("st-a", "addr-a", 6.49, 4.5),
		pb95Station("st-b", "addr-b", 5.89, 4.3),
		pb95Station("st-c", "addr-c", 7.05, 4.7),
	}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10, "addr-b": 10, "addr-c": 10}))

	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RolePremium, &model.Profile{MaxAlternatives: 3})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, rec := range recs {
		if rec.EstimatedSavings < 0 {
			t.Errorf("%s: EstimatedSavings = %v, want >= 0", rec.RouteKind, rec.EstimatedSavings)
		}
	}
}

func TestRecommend_SavingsAgainstMaxPrice(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{
		pb95Station("st-a", "addr-a", 6.49, 4.5),
		pb95Station("st-b", "addr-b", 5.89, 4.3),
	}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10, "addr-b": 10}))

	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RoleBasic, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := (6.49 - 5.89) * 22.23
	if math.Abs(recs[0].EstimatedSavings-want) > 0.01 {
		t.Errorf("EstimatedSavings = %v, want ≈ %.2f", recs[0].EstimatedSavings, want)
	}
}

func TestRecommend_TieBreakByStationDistance(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{
		pb95Station("st-far", "addr-far", 6.49, 4.9),
		pb95Station("st-near", "addr-near", 6.49, 4.1),
	}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-far": 25, "addr-near": 5}))

	recs, err := engine.Recommend(context.Background(), baseRequest(), model.RoleBasic, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if recs[0].Station.ID != "st-near" {
		t.Errorf("chosen station = %q, want st-near (equal price, shorter detour)", recs[0].Station.ID)
	}
}

func TestRecommend_FeasibilityFlag(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	// Full 50L tank covers 22.23 L.
	full := baseRequest()
	recs, err := engine.Recommend(context.Background(), full, model.RoleBasic, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !recs[0].FeasibleWithoutRefuel {
		t.Error("full tank: FeasibleWithoutRefuel = false, want true")
	}

	// 20% of 50L = 10 L does not cover 22.23 L, but the recommendation
	// is still returned, only flagged.
	low := baseRequest()
	low.CurrentFuelFraction = 0.2
	recs, err = engine.Recommend(context.Background(), low, model.RoleBasic, nil)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if recs[0].FeasibleWithoutRefuel {
		t.Error("near-empty tank: FeasibleWithoutRefuel = true, want false")
	}
}

func TestRecommend_FuelFallsBackToProfile(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	req := baseRequest()
	req.Fuel = ""
	profile := &model.Profile{PreferredFuel: model.FuelPB95}

	if _, err := engine.Recommend(context.Background(), req, model.RoleBasic, profile); err != nil {
		t.Errorf("Recommend() with profile fuel = %v, want success", err)
	}

	var itr *InvalidTripRequestError
	_, err := engine.Recommend(context.Background(), req, model.RoleBasic, nil)
	if !errors.As(err, &itr) || itr.Field != "fuel" {
		t.Errorf("Recommend() without any fuel = %v, want InvalidTripRequestError{fuel}", err)
	}
}

func TestRecommend_ValidationNamesField(t *testing.T) {
	catalog := &stubCatalog{stations: []model.Station{pb95Station("st-a", "addr-a", 6.49, 4.5)}}
	engine := NewRecommendationEngine(catalog,
		stubEstimator(tripTable, map[string]float64{"addr-a": 10}))

	tests := []struct {
		name      string
		mutate    func(*model.TripRequest)
		wantField string
	}{
		{"empty origin", func(r *model.TripRequest) { r.Origin = "" }, "origin"},
		{"empty destination", func(r *model.TripRequest) { r.Destination = "" }, "destination"},
		{"zero consumption", func(r *model.TripRequest) { r.Vehicle.ConsumptionLPer100Km = 0 }, "vehicle.consumption_l_per_100km"},
		{"negative tank", func(r *model.TripRequest) { r.Vehicle.TankCapacityLiters = -1 }, "vehicle.tank_capacity_liters"},
		{"fraction above one", func(r *model.TripRequest) { r.CurrentFuelFraction = 1.5 }, "current_fuel_fraction"},
		{"negative fraction", func(r *model.TripRequest) { r.CurrentFuelFraction = -0.1 }, "current_fuel_fraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			var itr *InvalidTripRequestError
			_, err := engine.Recommend(context.Background(), req, model.RoleBasic, nil)
			if !errors.As(err, &itr) {
				t.Fatalf("Recommend() error = %v, want InvalidTripRequestError", err)
			}
			if itr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", itr.Field, tt.wantField)
			}
		})
	}
}
