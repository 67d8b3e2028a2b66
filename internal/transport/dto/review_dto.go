package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// AddReviewRequest rates the counterpart of a completed job.
type AddReviewRequest struct {
	Actor      models.Actor `json:"-"`
	JobID      uuid.UUID    `json:"job_id" validate:"required"`
	RevieweeID uuid.UUID    `json:"reviewee_id" validate:"required"`
	Rating     int          `json:"rating" validate:"required,min=1,max=5"`
	Comment    string       `json:"comment" validate:"max=2000"`
}

type ListReviewsRequest struct {
	UserID uuid.UUID `json:"-" validate:"required"`
}

type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
