package services

import (
	"context"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/transport/dto"

	"github.com/google/uuid"
)

// UserService covers accounts, sessions and profiles.
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, req *dto.LogoutRequest) error
	Authenticate(ctx context.Context, token string) (*AccessClaims, models.Actor, error)
	GetByID(ctx context.Context, req *dto.GetUserByIDRequest) (*models.User, error)
	GetProfile(ctx context.Context, req *dto.GetUserByIDRequest) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*models.User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) error
}

// JobService is the job record manager.
type JobService interface {
	CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*models.Job, error)
	EditJob(ctx context.Context, req *dto.EditJobRequest) (*models.Job, error)
	Repost(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, req *dto.JobActionRequest) error
	CancelJob(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error)
	GetJob(ctx context.Context, req *dto.GetJobByIDRequest) (*dto.JobDetailResponse, error)
	ListJobs(ctx context.Context, req *dto.ListJobsRequest) ([]models.Job, error)
	ListAllJobs(ctx context.Context, actor models.Actor, req *dto.ListJobsRequest) ([]models.Job, error)
	ListMyJobs(ctx context.Context, req *dto.ListMyJobsRequest) ([]models.Job, error)
}

// ProposalService is the proposal registry.
type ProposalService interface {
	SubmitProposal(ctx context.Context, req *dto.SubmitProposalRequest) (*models.Proposal, error)
	AcceptProposal(ctx context.Context, req *dto.ProposalDecisionRequest) (*models.Job, *models.Proposal, error)
	DeclineProposal(ctx context.Context, req *dto.ProposalDecisionRequest) (*models.Proposal, error)
	WithdrawProposal(ctx context.Context, req *dto.WithdrawProposalRequest) (*models.Proposal, error)
	ListProposals(ctx context.Context, req *dto.ListProposalsRequest) ([]models.Proposal, error)
}

// EscrowService is the escrow gate.
type EscrowService interface {
	Quote(ctx context.Context, req *dto.GetJobByIDRequest) (*dto.QuoteResponse, error)
	FundEscrow(ctx context.Context, req *dto.FundEscrowRequest) (*models.Payment, error)
	SubmitWork(ctx context.Context, req *dto.SubmitWorkRequest) (*models.Job, error)
	ApproveWork(ctx context.Context, req *dto.JobActionRequest) (*models.Job, *models.Payment, error)
	SetPaymentStatus(ctx context.Context, req *dto.SetPaymentStatusRequest) (*models.Payment, error)
	ApplyGatewayEvent(ctx context.Context, jobID uuid.UUID, status models.PaymentStatus, amountCents int64) error
	ListPayments(ctx context.Context, actor models.Actor, req *dto.ListPaymentsRequest) ([]models.Payment, error)
}

// ReviewService handles closure reviews.
type ReviewService interface {
	AddReview(ctx context.Context, req *dto.AddReviewRequest) (*models.Review, error)
	ListReviews(ctx context.Context, req *dto.ListReviewsRequest) ([]models.Review, float64, error)
}

// MessageService is the messaging collaborator.
type MessageService interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*models.Message, error)
	Conversation(ctx context.Context, req *dto.ConversationRequest) ([]models.Message, error)
	Inbox(ctx context.Context, req *dto.InboxRequest) ([]models.Message, error)
}

// ContactService handles the public contact form and its admin inbox.
type ContactService interface {
	Submit(ctx context.Context, req *dto.SubmitContactRequest) (*models.ContactMessage, error)
	ListMine(ctx context.Context, req *dto.ListMyContactsRequest) ([]models.ContactMessage, error)
	ListAll(ctx context.Context, req *dto.ListContactsRequest) ([]models.ContactMessage, error)
	Respond(ctx context.Context, req *dto.RespondContactRequest) (*models.ContactMessage, error)
}

// AdminService backs the admin console.
type AdminService interface {
	Stats(ctx context.Context, actor models.Actor) (*models.Stats, error)
	ListUsers(ctx context.Context, actor models.Actor, req *dto.ListUsersRequest) ([]models.User, error)
	VerifyUser(ctx context.Context, req *dto.VerifyUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, req *dto.DeleteUserRequest) error
}

// SessionStore keeps refresh tokens and revoked access tokens.
// ConsumeRefresh returns storage.ErrNotFound for unknown or expired tokens.
type SessionStore interface {
	SaveRefresh(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeRefresh(ctx context.Context, token string) (uuid.UUID, error)
	DeleteRefresh(ctx context.Context, token string) error
	RevokeAccess(ctx context.Context, jti string, ttl time.Duration) error
	IsAccessRevoked(ctx context.Context, jti string) (bool, error)
}

// Notifier pushes stored messages to connected recipients.
type Notifier interface {
	Publish(ctx context.Context, msg *models.Message) error
}
