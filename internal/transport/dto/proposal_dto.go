package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// SubmitProposalRequest is a freelancer's bid on an open job.
type SubmitProposalRequest struct {
	Actor        models.Actor `json:"-"`
	JobID        uuid.UUID    `json:"-" validate:"required"` // From path
	CoverLetter  string       `json:"cover_letter" validate:"required,max=5000"`
	BidAmount    float64      `json:"bid_amount" validate:"required,gt=0"`
	DeliveryDays int          `json:"delivery_days" validate:"required,gt=0,lte=365"`
}

// ProposalDecisionRequest is used by the job owner to accept or decline a proposal.
type ProposalDecisionRequest struct {
	Actor      models.Actor `json:"-"`
	JobID      uuid.UUID    `json:"-" validate:"required"`
	ProposalID uuid.UUID    `json:"-" validate:"required"`
}

// WithdrawProposalRequest lets the bidder retract a pending proposal.
type WithdrawProposalRequest struct {
	Actor      models.Actor `json:"-"`
	ProposalID uuid.UUID    `json:"-" validate:"required"`
}

// ListProposalsRequest lists the proposals of a job visible to the caller.
type ListProposalsRequest struct {
	Actor models.Actor `json:"-"`
	JobID uuid.UUID    `json:"-" validate:"required"`
}

type ProposalResponse struct {
	ID           uuid.UUID             `json:"id"`
	JobID        uuid.UUID             `json:"job_id"`
	FreelancerID uuid.UUID             `json:"freelancer_id"`
	CoverLetter  string                `json:"cover_letter"`
	BidAmount    float64               `json:"bid_amount"`
	DeliveryDays int                   `json:"delivery_days"`
	Status       models.ProposalStatus `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// AcceptProposalResponse returns the job after acceptance plus the accepted proposal.
type AcceptProposalResponse struct {
	Job      JobResponse      `json:"job"`
	Proposal ProposalResponse `json:"proposal"`
}
