package storage

import (
	"context"
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role   *models.UserRole
	Limit  int
	Offset int
}

// JobFilter narrows job listings. Zero values mean "no constraint".
type JobFilter struct {
	Status          *models.JobStatus
	Category        string
	ExperienceLevel string
	Search          string
	MinBudget       *float64
	MaxBudget       *float64
	ParticipantID   *uuid.UUID // Client or hired freelancer
	Limit           int
	Offset          int
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	Status *models.PaymentStatus
	Limit  int
	Offset int
}

// ConversationFilter selects the messages exchanged between two users,
// optionally scoped to a job and to messages newer than Since.
type ConversationFilter struct {
	JobID *uuid.UUID
	UserA uuid.UUID
	UserB uuid.UUID
	Since *time.Time
	Limit int
}

// ContactFilter narrows contact message listings. OwnerID and Email together
// match messages sent by that user or from that address.
type ContactFilter struct {
	OwnerID *uuid.UUID
	Email   string
	Status  *models.ContactStatus
	Limit   int
	Offset  int
}

// PaymentTotals aggregates payments for the admin console.
type PaymentTotals struct {
	ByStatus      map[models.PaymentStatus]int
	EscrowedTotal float64
	ReleasedTotal float64
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	ToggleVerified(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRole(ctx context.Context) (map[models.UserRole]int, error)
}

// JobRepository defines the interface for job data operations.
// Update is optimistic: it fails with ErrConflict when job.Version is stale.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error)
	List(ctx context.Context, filter JobFilter) ([]models.Job, error)
	Update(ctx context.Context, job *models.Job) (*models.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[models.JobStatus]int, error)
}

// ProposalRepository defines the interface for proposal data operations.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) (*models.Proposal, error)
	// RejectPendingByJob rejects every pending proposal of the job except exceptID.
	RejectPendingByJob(ctx context.Context, jobID, exceptID uuid.UUID) (int, error)
}

// PaymentRepository defines the interface for payment data operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// GetLatestByJob returns the most recently created payment of the job.
	GetLatestByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error)
	Totals(ctx context.Context) (*PaymentTotals, error)
}

// ReviewRepository defines the interface for review data operations.
// Create fails with ErrDuplicate when the reviewer already reviewed the job.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	ListByReviewee(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
}

// MessageRepository is the append-only message store.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListConversation(ctx context.Context, filter ConversationFilter) ([]models.Message, error)
	// Inbox returns the latest message per counterpart of userID, newest first.
	Inbox(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error)
}

// ContactRepository stores contact form submissions, newest first.
// Respond fails with ErrConflict when the message is no longer pending.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
	List(ctx context.Context, filter ContactFilter) ([]models.ContactMessage, error)
	Respond(ctx context.Context, id uuid.UUID, response string) (*models.ContactMessage, error)
}

// Store groups the repositories and owns the transaction boundary.
// Repositories obtained from the Store passed to fn share one transaction.
type Store interface {
	Users() UserRepository
	Jobs() JobRepository
	Proposals() ProposalRepository
	Payments() PaymentRepository
	Reviews() ReviewRepository
	Messages() MessageRepository
	Contacts() ContactRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}
