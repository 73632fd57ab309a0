package cache

import (
	"testing"

	"github.com/mwrona/fuelroute/config"
)

func TestClientOptions(t *testing.T) {
	opts := ClientOptions(config.RedisConfig{
		Host:     "redis.internal",
		Port:     6380,
		Password: "s3cret",
		DB:       2,
		PoolSize: 40,
	})

	if opts.Addr != "redis.internal:6380" {
		t.Errorf("Addr = %q, want %q", opts.Addr, "redis.internal:6380")
	}
	if opts.ClientName != "fuelroute" {
		t.Errorf("ClientName = %q, want %q", opts.ClientName, "fuelroute")
	}
	if opts.DB != 2 {
		t.Errorf("DB = %d, want 2", opts.DB)
	}
	if opts.PoolSize != 40 {
		t.Errorf("PoolSize = %d, want 40", opts.PoolSize)
	}
}
