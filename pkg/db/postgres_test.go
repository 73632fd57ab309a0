package db

import (
	"testing"

	"github.com/mwrona/fuelroute/config"
)

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "fuelroute",
		Password: "fuelroute_secret",
		DBName:   "fuelroute_db",
		SSLMode:  "disable",
		MaxConns: 25,
		MinConns: 5,
	}
}

func TestPoolConfig_AppliesPoolSizing(t *testing.T) {
	poolCfg, err := PoolConfig(testPostgresConfig())
	if err != nil {
		t.Fatalf("PoolConfig() error = %v", err)
	}
	if poolCfg.MaxConns != 25 {
		t.Errorf("MaxConns = %d, want 25", poolCfg.MaxConns)
	}
	if poolCfg.MinConns != 5 {
		t.Errorf("MinConns = %d, want 5", poolCfg.MinConns)
	}
}

func TestPoolConfig_IdentifiesService(t *testing.T) {
	poolCfg, err := PoolConfig(testPostgresConfig())
	if err != nil {
		t.Fatalf("PoolConfig() error = %v", err)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != "fuelroute" {
		t.Errorf("application_name = %q, want %q", got, "fuelroute")
	}
}
