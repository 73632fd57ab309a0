// Package repository provides database access for the fuel routing service.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mwrona/fuelroute/internal/model"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ─── StationRepository ──────────────────────────────────────

const (
	catalogKeyPrefix = "catalog:city:"
	catalogAllKey    = "catalog:all"
	catalogCacheTTL  = 30 * time.Second
)

// StationRepository is the station catalog. Listings are cached in Redis
// with a short TTL (cache-aside); partner writes invalidate the touched
// keys so partners read their own writes immediately.
type StationRepository struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewStationRepository creates a new catalog repository.
func NewStationRepository(pool *pgxpool.Pool, redis *redis.Client) *StationRepository {
	return &StationRepository{pool: pool, redis: redis}
}

// ListStations returns the catalog, optionally filtered by city. Station
// ratings are the running average of user reviews.
//
// Strategy:
//  1. Try Redis cache first (fast path).
//  2. On miss, query Postgres and cache the result for 30 s.
func (r *StationRepository) ListStations(ctx context.Context, city string) ([]model.Station, error) {
	cacheKey := catalogAllKey
	if city != "" {
		cacheKey = catalogKeyPrefix + city
	}

	// ── Fast path: Redis cache ──────────────────────────
	if blob, err := r.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var stations []model.Station
		if json.Unmarshal(blob, &stations) == nil {
			return stations, nil
		}
	}

	// ── Slow path: Postgres ─────────────────────────────
	stations, err := r.queryStations(ctx, city)
	if err != nil {
		return nil, err
	}

	// Cache fire-and-forget; a failed write only costs the next reader
	// a DB round trip.
	if blob, err := json.Marshal(stations); err == nil {
		_ = r.redis.Set(ctx, cacheKey, blob, catalogCacheTTL).Err()
	}

	return stations, nil
}

func (r *StationRepository) queryStations(ctx context.Context, city string) ([]model.Station, error) {
	query := `
		SELECT s.id, s.owner_id, s.name, s.address, s.city,
		       s.prices, s.availability,
		       COALESCE(AVG(rv.rating), 0) AS rating
		FROM stations s
		LEFT JOIN reviews rv ON rv.station_id = s.id
		WHERE ($1 = '' OR s.city = $1)
		GROUP BY s.id
		ORDER BY s.id
	`
	rows, err := r.pool.Query(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	stations := []model.Station{}
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *st)
	}
	return stations, rows.Err()
}

// GetStation fetches one station by ID.
func (r *StationRepository) GetStation(ctx context.Context, id string) (*model.Station, error) {
	query := `
		SELECT s.id, s.owner_id, s.name, s.address, s.city,
		       s.prices, s.availability,
		       COALESCE(AVG(rv.rating), 0) AS rating
		FROM stations s
		LEFT JOIN reviews rv ON rv.station_id = s.id
		WHERE s.id = $1
		GROUP BY s.id
	`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get station %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("get station %s: %w", id, ErrNotFound)
	}
	return scanStation(rows)
}

// ReplaceOwned atomically replaces the owner's station set: delete the old
// rows, insert the new ones, commit. This is how partner catalog updates
// become visible to subsequent listings (read-your-writes).
func (r *StationRepository) ReplaceOwned(ctx context.Context, ownerID string, stations []model.Station) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("replace stations: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Cities of the rows about to be deleted: their cached listings go
	// stale the moment the old set is gone, even when the new set no
	// longer touches those cities.
	previousCities, err := ownedCities(ctx, tx, ownerID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM stations WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("replace stations: delete: %w", err)
	}

	insert := `
		INSERT INTO stations (id, owner_id, name, address, city, prices, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, st := range stations {
		prices, err := json.Marshal(st.Prices)
		if err != nil {
			return fmt.Errorf("replace stations: marshal prices: %w", err)
		}
		availability, err := json.Marshal(st.Availability)
		if err != nil {
			return fmt.Errorf("replace stations: marshal availability: %w", err)
		}
		if _, err := tx.Exec(ctx, insert,
			st.ID, ownerID, st.Name, st.Address, st.City, prices, availability,
		); err != nil {
			return fmt.Errorf("replace stations: insert %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("replace stations: commit: %w", err)
	}

	// Drop every cached listing the write may have changed so partners
	// read their own writes immediately, removals included.
	_ = r.redis.Del(ctx, catalogKeys(previousCities, stations)...).Err()
	return nil
}

// ownedCities returns the distinct cities of the owner's current rows.
func ownedCities(ctx context.Context, tx pgx.Tx, ownerID string) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT DISTINCT city FROM stations WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("replace stations: owned cities: %w", err)
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("replace stations: scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// catalogKeys returns every cache key a ReplaceOwned write may have
// changed: the full listing plus each city the owner's rows occupied
// before or after the write.
func catalogKeys(previousCities []string, stations []model.Station) []string {
	keys := []string{catalogAllKey}
	seen := map[string]bool{}
	add := func(city string) {
		if city != "" && !seen[city] {
			seen[city] = true
			keys = append(keys, catalogKeyPrefix+city)
		}
	}
	for _, city := range previousCities {
		add(city)
	}
	for _, st := range stations {
		add(st.City)
	}
	return keys
}

// scanStation decodes one station row, including the jsonb price and
// availability maps.
func scanStation(rows pgx.Rows) (*model.Station, error) {
	st := &model.Station{}
	var prices, availability []byte

	if err := rows.Scan(
		&st.ID, &st.OwnerID, &st.Name, &st.Address, &st.City,
		&prices, &availability, &st.Rating,
	); err != nil {
		return nil, fmt.Errorf("scan station: %w", err)
	}

	if err := json.Unmarshal(prices, &st.Prices); err != nil {
		return nil, fmt.Errorf("scan station %s: decode prices: %w", st.ID, err)
	}
	if err := json.Unmarshal(availability, &st.Availability); err != nil {
		return nil, fmt.Errorf("scan station %s: decode availability: %w", st.ID, err)
	}
	return st, nil
}
