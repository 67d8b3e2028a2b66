// internal/transport/dto/job_dto.go
package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// --- Job Request DTOs ---

// CreateJobRequest defines the structure for posting a new job.
type CreateJobRequest struct {
	Actor           models.Actor `json:"-"` // Set internally by handler from auth context
	Title           string       `json:"title" validate:"required,max=200"`
	Description     string       `json:"description" validate:"required,max=10000"`
	Budget          float64      `json:"budget" validate:"required,gt=0"`
	Category        string       `json:"category" validate:"omitempty,max=100"`
	ExperienceLevel string       `json:"experience_level" validate:"omitempty,oneof=Entry Intermediate Expert"`
	Deadline        Date         `json:"deadline"`
}

// EditJobRequest updates the editable fields of an open job.
type EditJobRequest struct {
	Actor           models.Actor `json:"-"`
	JobID           uuid.UUID    `json:"-" validate:"required"`
	Title           *string      `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string      `json:"description,omitempty" validate:"omitempty,max=10000"`
	Budget          *float64     `json:"budget,omitempty"`
	Category        *string      `json:"category,omitempty" validate:"omitempty,max=100"`
	ExperienceLevel *string      `json:"experience_level,omitempty" validate:"omitempty,oneof=Entry Intermediate Expert"`
	Deadline        *Date        `json:"deadline,omitempty"`
}

// JobActionRequest identifies a job and the caller acting on it (repost, delete, cancel, approve).
type JobActionRequest struct {
	Actor models.Actor `json:"-"`
	JobID uuid.UUID    `json:"-" validate:"required"`
}

// GetJobByIDRequest defines the structure for getting a job by ID.
// Proposals are filtered by what Actor may see.
type GetJobByIDRequest struct {
	Actor models.Actor `json:"-"`
	ID    uuid.UUID    `json:"-" validate:"required"`
}

// ListJobsRequest defines parameters for browsing jobs.
type ListJobsRequest struct {
	Status          *models.JobStatus `form:"status" validate:"omitempty,oneof=open in-progress completed cancelled"`
	Category        string            `form:"category" validate:"omitempty,max=100"`
	ExperienceLevel string            `form:"experience_level" validate:"omitempty,oneof=Entry Intermediate Expert"`
	Search          string            `form:"search" validate:"omitempty,max=200"`
	MinBudget       *float64          `form:"min_budget" validate:"omitempty,gt=0"`
	MaxBudget       *float64          `form:"max_budget" validate:"omitempty,gt=0"`
	Limit           int               `form:"limit,default=20" validate:"omitempty,gte=0"`
	Offset          int               `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// ListMyJobsRequest lists jobs where the caller is the client or hired freelancer.
type ListMyJobsRequest struct {
	Actor  models.Actor `json:"-"`
	Limit  int          `form:"limit,default=20" validate:"omitempty,gte=0"`
	Offset int          `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// JobResponse defines the standard job data returned to the client.
type JobResponse struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Budget          float64            `json:"budget"`
	Category        string             `json:"category"`
	ExperienceLevel string             `json:"experience_level"`
	Deadline        Date               `json:"deadline"`
	Status          string             `json:"status"`
	ClientID        uuid.UUID          `json:"client_id"`
	FreelancerID    *uuid.UUID         `json:"freelancer_id,omitempty"`
	Submission      *SubmissionPayload `json:"submission,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SubmissionPayload is the freelancer's deliverable as seen by API clients.
type SubmissionPayload struct {
	URL         string    `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobDetailResponse is a job with its proposals and current payment.
type JobDetailResponse struct {
	JobResponse
	Proposals []ProposalResponse `json:"proposals"`
	Payment   *PaymentResponse   `json:"payment,omitempty"`
}
