package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"
)

type reviewService struct {
	store storage.Store
}

// NewReviewService creates a new instance of ReviewService.
func NewReviewService(store storage.Store) ReviewService {
	return &reviewService{store: store}
}

// AddReview rates the counterpart of a completed job. Each party reviews a job once.
func (s *reviewService) AddReview(ctx context.Context, req *dto.AddReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	job, err := s.store.Jobs().GetByID(ctx, req.JobID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
	}
	if job.Status != models.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job is %s, reviews open after completion", ErrInvalidState, job.Status)
	}

	var counterpart = job.ClientID
	switch {
	case job.IsClient(req.Actor.ID):
		counterpart = *job.FreelancerID
	case job.IsFreelancer(req.Actor.ID):
	default:
		return nil, fmt.Errorf("%w: only the job's client or freelancer can review it", ErrForbidden)
	}
	if req.RevieweeID != counterpart {
		return nil, fmt.Errorf("%w: reviewee must be the other party of the job", ErrValidation)
	}

	review, err := s.store.Reviews().Create(ctx, &models.Review{
		JobID:      job.ID,
		ReviewerID: req.Actor.ID,
		RevieweeID: counterpart,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	})
	if err != nil {
		return nil, mapRepoError(err, "creating review")
	}
	return review, nil
}

// ListReviews returns the reviews a user received, newest first, and their average rating.
func (s *reviewService) ListReviews(ctx context.Context, req *dto.ListReviewsRequest) ([]models.Review, float64, error) {
	if _, err := s.store.Users().GetByID(ctx, req.UserID); err != nil {
		return nil, 0, mapRepoError(err, fmt.Sprintf("fetching user %s", req.UserID))
	}
	reviews, err := s.store.Reviews().ListByReviewee(ctx, req.UserID)
	if err != nil {
		return nil, 0, mapRepoError(err, "listing reviews")
	}
	return reviews, averageRating(reviews), nil
}

// averageRating is rounded to one decimal; zero when there are no reviews.
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
