package handlers_test

import (
	"context"

	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *MockUserService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserService) Authenticate(ctx context.Context, token string) (*services.AccessClaims, models.Actor, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Get(1).(models.Actor), args.Error(2)
	}
	return args.Get(0).(*services.AccessClaims), args.Get(1).(models.Actor), args.Error(2)
}

func (m *MockUserService) GetByID(ctx context.Context, req *dto.GetUserByIDRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, req *dto.GetUserByIDRequest) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileResponse), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	return m.Called(ctx, name, email, password).Error(0)
}

// --- Mock JobService ---
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) job(args mock.Arguments) (*models.Job, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobService) jobs(args mock.Arguments) ([]models.Job, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockJobService) CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) EditJob(ctx context.Context, req *dto.EditJobRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) Repost(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) DeleteJob(ctx context.Context, req *dto.JobActionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockJobService) CancelJob(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) GetJob(ctx context.Context, req *dto.GetJobByIDRequest) (*dto.JobDetailResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobDetailResponse), args.Error(1)
}

func (m *MockJobService) ListJobs(ctx context.Context, req *dto.ListJobsRequest) ([]models.Job, error) {
	return m.jobs(m.Called(ctx, req))
}

func (m *MockJobService) ListAllJobs(ctx context.Context, actor models.Actor, req *dto.ListJobsRequest) ([]models.Job, error) {
	return m.jobs(m.Called(ctx, actor, req))
}

func (m *MockJobService) ListMyJobs(ctx context.Context, req *dto.ListMyJobsRequest) ([]models.Job, error) {
	return m.jobs(m.Called(ctx, req))
}

// --- Mock ProposalService ---
type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) proposal(args mock.Arguments) (*models.Proposal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *MockProposalService) SubmitProposal(ctx context.Context, req *dto.SubmitProposalRequest) (*models.Proposal, error) {
	return m.proposal(m.Called(ctx, req))
}

func (m *MockProposalService) AcceptProposal(ctx context.Context, req *dto.ProposalDecisionRequest) (*models.Job, *models.Proposal, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Job), args.Get(1).(*models.Proposal), args.Error(2)
}

func (m *MockProposalService) DeclineProposal(ctx context.Context, req *dto.ProposalDecisionRequest) (*models.Proposal, error) {
	return m.proposal(m.Called(ctx, req))
}

func (m *MockProposalService) WithdrawProposal(ctx context.Context, req *dto.WithdrawProposalRequest) (*models.Proposal, error) {
	return m.proposal(m.Called(ctx, req))
}

func (m *MockProposalService) ListProposals(ctx context.Context, req *dto.ListProposalsRequest) ([]models.Proposal, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

// --- Mock EscrowService ---
type MockEscrowService struct {
	mock.Mock
}

func (m *MockEscrowService) Quote(ctx context.Context, req *dto.GetJobByIDRequest) (*dto.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuoteResponse), args.Error(1)
}

func (m *MockEscrowService) FundEscrow(ctx context.Context, req *dto.FundEscrowRequest) (*models.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockEscrowService) SubmitWork(ctx context.Context, req *dto.SubmitWorkRequest) (*models.Job, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockEscrowService) ApproveWork(ctx context.Context, req *dto.JobActionRequest) (*models.Job, *models.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Job), args.Get(1).(*models.Payment), args.Error(2)
}

func (m *MockEscrowService) SetPaymentStatus(ctx context.Context, req *dto.SetPaymentStatusRequest) (*models.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockEscrowService) ApplyGatewayEvent(ctx context.Context, jobID uuid.UUID, status models.PaymentStatus, amountCents int64) error {
	return m.Called(ctx, jobID, status, amountCents).Error(0)
}

func (m *MockEscrowService) ListPayments(ctx context.Context, actor models.Actor, req *dto.ListPaymentsRequest) ([]models.Payment, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

// --- Mock ReviewService ---
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) AddReview(ctx context.Context, req *dto.AddReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) ListReviews(ctx context.Context, req *dto.ListReviewsRequest) ([]models.Review, float64, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(float64), args.Error(2)
}

// --- Mock MessageService ---
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*models.Message, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) Conversation(ctx context.Context, req *dto.ConversationRequest) ([]models.Message, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) Inbox(ctx context.Context, req *dto.InboxRequest) ([]models.Message, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// --- Mock AdminService ---
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Stats(ctx context.Context, actor models.Actor) (*models.Stats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

func (m *MockAdminService) ListUsers(ctx context.Context, actor models.Actor, req *dto.ListUsersRequest) ([]models.User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockAdminService) VerifyUser(ctx context.Context, req *dto.VerifyUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, req *dto.DeleteUserRequest) error {
	return m.Called(ctx, req).Error(0)
}

var (
	_ services.UserService     = (*MockUserService)(nil)
	_ services.JobService      = (*MockJobService)(nil)
	_ services.ProposalService = (*MockProposalService)(nil)
	_ services.EscrowService   = (*MockEscrowService)(nil)
	_ services.ReviewService   = (*MockReviewService)(nil)
	_ services.MessageService  = (*MockMessageService)(nil)
	_ services.AdminService    = (*MockAdminService)(nil)
)

// newTestRouter returns a router that authenticates every request as actor.
// --- Mock ContactService ---
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, req *dto.SubmitContactRequest) (*models.ContactMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessage), args.Error(1)
}

func (m *MockContactService) ListMine(ctx context.Context, req *dto.ListMyContactsRequest) ([]models.ContactMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContactMessage), args.Error(1)
}

func (m *MockContactService) ListAll(ctx context.Context, req *dto.ListContactsRequest) ([]models.ContactMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContactMessage), args.Error(1)
}

func (m *MockContactService) Respond(ctx context.Context, req *dto.RespondContactRequest) (*models.ContactMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessage), args.Error(1)
}

func newTestRouter(actor *models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if actor != nil {
		a := *actor
		router.Use(func(c *gin.Context) {
			middleware.SetActor(c, a)
			c.Next()
		})
	}
	return router
}
