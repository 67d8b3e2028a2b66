package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// FundEscrowRequest is the client depositing the job budget with the gateway.
type FundEscrowRequest struct {
	Actor  models.Actor `json:"-"`
	JobID  uuid.UUID    `json:"-" validate:"required"`
	Amount float64      `json:"amount" validate:"required,gt=0"`
}

// SubmitWorkRequest is the hired freelancer declaring the deliverable.
type SubmitWorkRequest struct {
	Actor       models.Actor `json:"-"`
	JobID       uuid.UUID    `json:"-" validate:"required"`
	URL         string       `json:"url" validate:"required,url,max=2048"`
	Description string       `json:"description" validate:"required,max=5000"`
}

// SetPaymentStatusRequest is the administrative payment override.
type SetPaymentStatusRequest struct {
	Actor     models.Actor         `json:"-"`
	PaymentID uuid.UUID            `json:"-" validate:"required"`
	Status    models.PaymentStatus `json:"status" validate:"required,oneof=released cancelled"`
}

// ListPaymentsRequest defines filters for the admin payment listing.
type ListPaymentsRequest struct {
	Status *models.PaymentStatus `form:"status" validate:"omitempty,oneof=escrow released cancelled"`
	Limit  int                   `form:"limit,default=50" validate:"omitempty,gte=0"`
	Offset int                   `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// QuoteResponse breaks down what the client pays to fund a job.
type QuoteResponse struct {
	JobID      uuid.UUID `json:"job_id"`
	Principal  float64   `json:"principal"`
	FeePercent float64   `json:"fee_percent"`
	Fee        float64   `json:"fee"`
	TotalDue   float64   `json:"total_due"`
}

type PaymentResponse struct {
	ID           uuid.UUID            `json:"id"`
	JobID        uuid.UUID            `json:"job_id"`
	ClientID     uuid.UUID            `json:"client_id"`
	FreelancerID uuid.UUID            `json:"freelancer_id"`
	Amount       float64              `json:"amount"`
	Fee          float64              `json:"fee"`
	Status       models.PaymentStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ApproveWorkResponse is the closed job and its released payment.
type ApproveWorkResponse struct {
	Job     JobResponse     `json:"job"`
	Payment PaymentResponse `json:"payment"`
}
