package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwrona/fuelroute/internal/model"
)

// OfferRepository stores partner promotions.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository creates a new offer repository.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// CreateOffer inserts a new offer and fills in its creation timestamp.
func (r *OfferRepository) CreateOffer(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	query := `
		INSERT INTO offers (id, station_id, owner_id, title, description, discount, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		offer.ID, offer.StationID, offer.OwnerID,
		offer.Title, offer.Description, offer.Discount, offer.ValidUntil,
	).Scan(&offer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return offer, nil
}

// ListOffersByOwner returns the partner's offers, newest first.
func (r *OfferRepository) ListOffersByOwner(ctx context.Context, ownerID string) ([]model.Offer, error) {
	query := `
		SELECT id, station_id, owner_id, title, description, discount, valid_until, created_at
		FROM offers
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	offers := []model.Offer{}
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(
			&o.ID, &o.StationID, &o.OwnerID,
			&o.Title, &o.Description, &o.Discount, &o.ValidUntil, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// DeleteOffer removes one of the owner's offers. Deleting someone else's
// offer (or a missing one) yields ErrNotFound.
func (r *OfferRepository) DeleteOffer(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM offers WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete offer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete offer %s: %w", id, ErrNotFound)
	}
	return nil
}
