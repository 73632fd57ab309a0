package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwrona/fuelroute/internal/model"
)

// FeedbackRepository stores user feedback: station reviews and issue
// reports. Review ratings feed the catalog's average station rating.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// AddReview inserts a station review. Rating must be 1..5 (matches the
// DB CHECK constraint).
func (r *FeedbackRepository) AddReview(ctx context.Context, review *model.Review) (*model.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, fmt.Errorf("add review: rating must be between 1 and 5, got %d", review.Rating)
	}
	query := `
		INSERT INTO reviews (id, station_id, author_id, author, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		review.ID, review.StationID, review.AuthorID,
		review.Author, review.Rating, review.Comment,
	).Scan(&review.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}
	return review, nil
}

// ListReviews returns a station's reviews, newest first.
func (r *FeedbackRepository) ListReviews(ctx context.Context, stationID string) ([]model.Review, error) {
	query := `
		SELECT id, station_id, author_id, author, rating, comment, created_at
		FROM reviews
		WHERE station_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, stationID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(
			&rv.ID, &rv.StationID, &rv.AuthorID,
			&rv.Author, &rv.Rating, &rv.Comment, &rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// AddReport files an issue report (wrong price, outage, other).
func (r *FeedbackRepository) AddReport(ctx context.Context, report *model.IssueReport) (*model.IssueReport, error) {
	query := `
		INSERT INTO issue_reports (id, station_id, reporter_id, category, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		report.ID, report.StationID, report.ReporterID,
		report.Category, report.Description,
	).Scan(&report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add report: %w", err)
	}
	return report, nil
}

// ListReports returns all issue reports, newest first. Admin-facing.
func (r *FeedbackRepository) ListReports(ctx context.Context) ([]model.IssueReport, error) {
	query := `
		SELECT id, station_id, reporter_id, category, description, created_at
		FROM issue_reports
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []model.IssueReport{}
	for rows.Next() {
		var rep model.IssueReport
		if err := rows.Scan(
			&rep.ID, &rep.StationID, &rep.ReporterID,
			&rep.Category, &rep.Description, &rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
