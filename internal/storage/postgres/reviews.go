package postgres

import (
	"context"
	"fmt"
	"log"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReviewRepo implements the storage.ReviewRepository interface using PostgreSQL.
type ReviewRepo struct {
	db Querier
}

var _ storage.ReviewRepository = (*ReviewRepo)(nil)

var reviewColumns = []string{"id", "job_id", "reviewer_id", "reviewee_id", "rating", "comment", "created_at"}

func scanReview(row pgx.Row) (*models.Review, error) {
	var rv models.Review
	if err := row.Scan(&rv.ID, &rv.JobID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	query, args, err := psql.Insert("reviews").
		Columns(reviewColumns...).
		Values(review.ID, review.JobID, review.ReviewerID, review.RevieweeID, review.Rating, review.Comment, sqNow).
		Suffix("RETURNING " + joinColumns(reviewColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review insert: %w", err)
	}
	created, err := scanReview(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create review: job already reviewed by %s: %w", review.ReviewerID, storage.ErrDuplicate)
		}
		log.Printf("Error creating review for job %s: %v\n", review.JobID, err)
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return created, nil
}

func (r *ReviewRepo) ListByReviewee(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	query, args, err := psql.Select(reviewColumns...).From("reviews").
		Where("reviewee_id = ?", userID).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying reviews for user %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}
