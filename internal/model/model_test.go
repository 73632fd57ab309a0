package model

import "testing"

func TestStationNormalize_DropsPriceWithoutAvailability(t *testing.T) {
	// A partner submits an LPG price while marking LPG unavailable.
	st := Station{
		ID:   "st2",
		Name: "Orlen Praga",
		City: "Warszawa",
		Prices: map[FuelKind]float64{
			FuelPB95: 6.49,
			FuelLPG:  3.18,
		},
		Availability: map[FuelKind]bool{
			FuelPB95: true,
			FuelLPG:  false,
		},
	}

	st.Normalize()

	if _, ok := st.Prices[FuelLPG]; ok {
		t.Error("lpg price survived normalization despite availability false")
	}
	if got, ok := st.Prices[FuelPB95]; !ok || got != 6.49 {
		t.Errorf("pb95 price = %v, %v; want 6.49, true", got, ok)
	}
}

func TestStationNormalize_SwitchesOffAvailabilityWithoutPrice(t *testing.T) {
	st := Station{
		ID:     "st1",
		Name:   "Orlen Centrum",
		City:   "Warszawa",
		Prices: map[FuelKind]float64{FuelDiesel: 6.85},
		Availability: map[FuelKind]bool{
			FuelDiesel: true,
			FuelPB98:   true,
		},
	}

	st.Normalize()

	if st.Availability[FuelPB98] {
		t.Error("pb98 availability survived normalization despite missing price")
	}
	if !st.Availability[FuelDiesel] {
		t.Error("diesel availability lost during normalization")
	}
}

func TestStationNormalize_ConsistentStationUnchanged(t *testing.T) {
	st := Station{
		ID:           "st1",
		Name:         "Orlen Centrum",
		City:         "Warszawa",
		Prices:       map[FuelKind]float64{FuelPB95: 6.49, FuelDiesel: 6.85},
		Availability: map[FuelKind]bool{FuelPB95: true, FuelDiesel: true},
	}

	st.Normalize()

	if len(st.Prices) != 2 {
		t.Errorf("prices = %v, want both kept", st.Prices)
	}
	if !st.Availability[FuelPB95] || !st.Availability[FuelDiesel] {
		t.Errorf("availability = %v, want both kept", st.Availability)
	}
}

func TestStationPriceFor(t *testing.T) {
	st := Station{
		Prices: map[FuelKind]float64{
			FuelPB95: 6.49,
			FuelLPG:  3.18,
		},
		Availability: map[FuelKind]bool{
			FuelPB95: true,
			FuelLPG:  false,
		},
	}

	tests := []struct {
		name      string
		fuel      FuelKind
		wantPrice float64
		wantOK    bool
	}{
		{"available with price", FuelPB95, 6.49, true},
		{"priced but unavailable", FuelLPG, 0, false},
		{"unknown fuel", FuelDiesel, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := st.PriceFor(tt.fuel)
			if price != tt.wantPrice || ok != tt.wantOK {
				t.Errorf("PriceFor(%s) = (%v, %v), want (%v, %v)",
					tt.fuel, price, ok, tt.wantPrice, tt.wantOK)
			}
		})
	}
}
