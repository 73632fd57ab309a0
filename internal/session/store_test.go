package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mwrona/fuelroute/internal/model"
)

func TestLogin_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"too short", "12345", ErrInvalidCredentials},
		{"empty", "", ErrInvalidCredentials},
		{"exactly six", "123456", nil},
		{"longer", "correct-horse", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(NewMemorySlot())
			_, err := store.Login(context.Background(), "jan@example.pl", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogin_DerivesDisplayNameFromEmail(t *testing.T) {
	store := NewStore(NewMemorySlot())
	st, err := store.Login(context.Background(), "jan.kowalski@example.pl", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if st.Identity.DisplayName != "jan.kowalski" {
		t.Errorf("DisplayName = %q, want %q", st.Identity.DisplayName, "jan.kowalski")
	}
	if st.Identity.Role != model.RoleBasic {
		t.Errorf("Role = %q, want basic", st.Identity.Role)
	}
}

func TestRegister_AssignsRequestedRole(t *testing.T) {
	store := NewStore(NewMemorySlot())
	st, err := store.Register(context.Background(), "anna@example.pl", "Anna", model.RolePremium)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if st.Identity.Role != model.RolePremium {
		t.Errorf("Role = %q, want premium", st.Identity.Role)
	}
}

func TestLoginDemo_CannedIdentities(t *testing.T) {
	store := NewStore(NewMemorySlot())

	for _, role := range []model.Role{model.RoleBasic, model.RolePremium, model.RolePartner, model.RoleAdmin} {
		st, err := store.LoginDemo(context.Background(), role)
		if err != nil {
			t.Fatalf("LoginDemo(%s) error = %v", role, err)
		}
		if st.Identity.Role != role {
			t.Errorf("LoginDemo(%s): Role = %q", role, st.Identity.Role)
		}
	}

	premium, _ := store.LoginDemo(context.Background(), model.RolePremium)
	if premium.Profile.Vehicle == nil || premium.Profile.Vehicle.TankCapacityLiters != 50 {
		t.Errorf("premium demo should carry a 50L vehicle profile, got %+v", premium.Profile.Vehicle)
	}

	partner, _ := store.LoginDemo(context.Background(), model.RolePartner)
	if len(partner.Stations) < 1 {
		t.Errorf("partner demo should own at least one station")
	}
}

func TestLogout_ThenRestoreYieldsNone(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := NewStore(slot)

	if _, err := store.Login(ctx, "jan@example.pl", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	restored, err := NewStore(slot).Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored != nil {
		t.Errorf("Restore() after logout = %+v, want nil", restored)
	}
}

func TestLogout_IdempotentWhenLoggedOut(t *testing.T) {
	store := NewStore(NewMemorySlot())
	if err := store.Logout(context.Background()); err != nil {
		t.Errorf("Logout() with no session = %v, want nil", err)
	}
}

func TestRestore_RoundTripsIdentityAndProfile(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := NewStore(slot)

	logged, err := store.LoginDemo(ctx, model.RolePremium)
	if err != nil {
		t.Fatalf("LoginDemo() error = %v", err)
	}

	// A fresh store over the same slot simulates a process restart.
	restored, err := NewStore(slot).Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored == nil {
		t.Fatal("Restore() = nil, want the persisted session")
	}
	if !reflect.DeepEqual(logged.Identity, restored.Identity) {
		t.Errorf("identity round-trip mismatch:\n logged   %+v\n restored %+v", logged.Identity, restored.Identity)
	}
	if !reflect.DeepEqual(logged.Profile, restored.Profile) {
		t.Errorf("profile round-trip mismatch:\n logged   %+v\n restored %+v", logged.Profile, restored.Profile)
	}
}

func TestRestore_CorruptSlotIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	_ = slot.Save(ctx, []byte("{not json"))

	restored, err := NewStore(slot).Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v, corrupt data must not be fatal", err)
	}
	if restored != nil {
		t.Errorf("Restore() of corrupt slot = %+v, want nil", restored)
	}
}

func TestUpdateProfile_RequiresActiveSession(t *testing.T) {
	store := NewStore(NewMemorySlot())
	fuel := model.FuelDiesel
	_, err := store.UpdateProfile(context.Background(), model.ProfileUpdate{PreferredFuel: &fuel})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("UpdateProfile() error = %v, want ErrNoActiveSession", err)
	}
}

func TestUpdateProfile_PremiumOnlyFields(t *testing.T) {
	ctx := context.Background()
	pref := model.RouteFastest

	basic := NewStore(NewMemorySlot())
	if _, err := basic.LoginDemo(ctx, model.RoleBasic); err != nil {
		t.Fatalf("LoginDemo() error = %v", err)
	}
	if _, err := basic.UpdateProfile(ctx, model.ProfileUpdate{RoutePreference: &pref}); !errors.Is(err, ErrRoleNotEligible) {
		t.Errorf("basic UpdateProfile(route_preference) error = %v, want ErrRoleNotEligible", err)
	}

	premium := NewStore(NewMemorySlot())
	if _, err := premium.LoginDemo(ctx, model.RolePremium); err != nil {
		t.Fatalf("LoginDemo() error = %v", err)
	}
	st, err := premium.UpdateProfile(ctx, model.ProfileUpdate{RoutePreference: &pref})
	if err != nil {
		t.Fatalf("premium UpdateProfile(route_preference) error = %v", err)
	}
	if st.Profile.RoutePreference != model.RouteFastest {
		t.Errorf("RoutePreference = %q, want fastest", st.Profile.RoutePreference)
	}
}

func TestUpdateProfile_MergesPartially(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot())
	if _, err := store.LoginDemo(ctx, model.RolePremium); err != nil {
		t.Fatalf("LoginDemo() error = %v", err)
	}

	fuel := model.FuelDiesel
	st, err := store.UpdateProfile(ctx, model.ProfileUpdate{PreferredFuel: &fuel})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if st.Profile.PreferredFuel != model.FuelDiesel {
		t.Errorf("PreferredFuel = %q, want diesel", st.Profile.PreferredFuel)
	}
	// Untouched fields survive the merge.
	if st.Profile.MaxAlternatives != 3 {
		t.Errorf("MaxAlternatives = %d, want 3 (unchanged)", st.Profile.MaxAlternatives)
	}
	if st.Profile.Vehicle == nil {
		t.Error("Vehicle cleared by unrelated update")
	}
}

func TestUpdateOwnedStations_PartnerOnly(t *testing.T) {
	ctx := context.Background()
	stations := []model.Station{{
		Name: "Testowa", Address: "ul. Testowa 1", City: "Warszawa",
		Prices:       map[model.FuelKind]float64{model.FuelPB95: 6.10},
		Availability: map[model.FuelKind]bool{model.FuelPB95: true},
	}}

	basic := NewStore(NewMemorySlot())
	if _, err := basic.LoginDemo(ctx, model.RoleBasic); err != nil {
		t.Fatalf("LoginDemo() error = %v", err)
	}
	if _, err := basic.UpdateOwnedStations(ctx, stations); !errors.Is(err, ErrRoleNotEligible) {
		t.Errorf("basic UpdateOwnedStations() error = %v, want ErrRoleNotEligible", err)
	}

	partner := NewStore(NewMemorySlot())
	if _, err := partner.LoginDemo(ctx, model.RolePartner); err != nil {
		t.Fatalf("LoginDemo() error = %v", err)
	}
	st, err := partner.UpdateOwnedStations(ctx, stations)
	if err != nil {
		t.Fatalf("partner UpdateOwnedStations() error = %v", err)
	}
	if len(st.Stations) != 1 {
		t.Fatalf("owned stations = %d, want 1 (replace semantics)", len(st.Stations))
	}
	if st.Stations[0].ID == "" {
		t.Error("station was not assigned an ID")
	}
	if st.Stations[0].OwnerID != st.Identity.ID {
		t.Errorf("OwnerID = %q, want %q", st.Stations[0].OwnerID, st.Identity.ID)
	}
}
