package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"freelance-marketplace/internal/api/handlers"
	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupEscrowRouter(actor *models.Actor, escrow *MockEscrowService, proposals *MockProposalService) *gin.Engine {
	router := newTestRouter(actor)
	v := validator.New()
	eh := handlers.NewEscrowHandler(escrow, v)
	router.GET("/jobs/:id/quote", eh.Quote)
	router.POST("/jobs/:id/fund", eh.FundEscrow)
	router.POST("/jobs/:id/submit", eh.SubmitWork)
	router.PUT("/jobs/:id/approve", eh.ApproveWork)
	ph := handlers.NewProposalHandler(proposals, v)
	router.GET("/jobs/:id/proposals", ph.ListProposals)
	router.POST("/jobs/:id/proposals", ph.SubmitProposal)
	router.PUT("/jobs/:id/accept/:proposalId", ph.AcceptProposal)
	router.PUT("/jobs/:id/decline/:proposalId", ph.DeclineProposal)
	router.PUT("/proposals/:id/withdraw", ph.WithdrawProposal)
	return router
}

func TestQuoteHandler(t *testing.T) {
	client := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	jobID := uuid.New()
	escrow := new(MockEscrowService)
	escrow.On("Quote", mock.Anything, &dto.GetJobByIDRequest{Actor: client, ID: jobID}).
		Return(&dto.QuoteResponse{JobID: jobID, Principal: 1000, FeePercent: 3, Fee: 30, TotalDue: 1030}, nil)

	w := doJSON(t, setupEscrowRouter(&client, escrow, nil), http.MethodGet, "/jobs/"+jobID.String()+"/quote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1030.0, resp.TotalDue)
	escrow.AssertExpectations(t)
}

func TestFundEscrowHandler(t *testing.T) {
	client := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	jobID := uuid.New()

	t.Run("funded", func(t *testing.T) {
		escrow := new(MockEscrowService)
		escrow.On("FundEscrow", mock.Anything, &dto.FundEscrowRequest{Actor: client, JobID: jobID, Amount: 1000}).
			Return(&models.Payment{ID: uuid.New(), JobID: jobID, Amount: 1000, Fee: 30, Status: models.PaymentStatusEscrow}, nil)

		w := doJSON(t, setupEscrowRouter(&client, escrow, nil), http.MethodPost, "/jobs/"+jobID.String()+"/fund", gin.H{"amount": 1000})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"status":"escrow"`)
		escrow.AssertExpectations(t)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		escrow := new(MockEscrowService)
		escrow.On("FundEscrow", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: amount must equal the job budget", services.ErrValidation))
		w := doJSON(t, setupEscrowRouter(&client, escrow, nil), http.MethodPost, "/jobs/"+jobID.String()+"/fund", gin.H{"amount": 999})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, services.KindValidation, decodeError(t, w).Kind)
	})

	t.Run("already funded", func(t *testing.T) {
		escrow := new(MockEscrowService)
		escrow.On("FundEscrow", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: escrow already funded", services.ErrInvalidState))
		w := doJSON(t, setupEscrowRouter(&client, escrow, nil), http.MethodPost, "/jobs/"+jobID.String()+"/fund", gin.H{"amount": 1000})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, services.KindState, decodeError(t, w).Kind)
	})

	t.Run("missing amount", func(t *testing.T) {
		escrow := new(MockEscrowService)
		w := doJSON(t, setupEscrowRouter(&client, escrow, nil), http.MethodPost, "/jobs/"+jobID.String()+"/fund", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		escrow.AssertNotCalled(t, "FundEscrow", mock.Anything, mock.Anything)
	})
}

func TestSubmitWorkHandler_RejectsBadURL(t *testing.T) {
	freelancer := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer, Verified: true}
	escrow := new(MockEscrowService)
	w := doJSON(t, setupEscrowRouter(&freelancer, escrow, nil), http.MethodPost, "/jobs/"+uuid.NewString()+"/submit",
		gin.H{"url": "not a url", "description": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "URL")
}

func TestApproveWorkHandler(t *testing.T) {
	client := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	job := sampleJob(client.ID)
	job.Status = models.JobStatusCompleted
	payment := &models.Payment{ID: uuid.New(), JobID: job.ID, Amount: 500, Status: models.PaymentStatusReleased}

	escrow := new(MockEscrowService)
	escrow.On("ApproveWork", mock.Anything, &dto.JobActionRequest{Actor: client, JobID: job.ID}).Return(job, payment, nil).Once()
	escrow.On("ApproveWork", mock.Anything, &dto.JobActionRequest{Actor: client, JobID: job.ID}).
		Return(nil, nil, fmt.Errorf("%w: job is completed", services.ErrInvalidState)).Once()
	router := setupEscrowRouter(&client, escrow, nil)

	w := doJSON(t, router, http.MethodPut, "/jobs/"+job.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ApproveWorkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Job.Status)
	assert.Equal(t, models.PaymentStatusReleased, resp.Payment.Status)

	w = doJSON(t, router, http.MethodPut, "/jobs/"+job.ID.String()+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	escrow.AssertExpectations(t)
}

func TestProposalHandlers(t *testing.T) {
	client := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	freelancer := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer, Verified: true}
	job := sampleJob(client.ID)
	proposal := &models.Proposal{ID: uuid.New(), JobID: job.ID, FreelancerID: freelancer.ID, BidAmount: 450, DeliveryDays: 7, Status: models.ProposalStatusPending}

	t.Run("submit", func(t *testing.T) {
		svc := new(MockProposalService)
		svc.On("SubmitProposal", mock.Anything, mock.MatchedBy(func(req *dto.SubmitProposalRequest) bool {
			return req.JobID == job.ID && req.Actor == freelancer && req.BidAmount == 450
		})).Return(proposal, nil)
		w := doJSON(t, setupEscrowRouter(&freelancer, nil, svc), http.MethodPost, "/jobs/"+job.ID.String()+"/proposals",
			gin.H{"cover_letter": "I can do it", "bid_amount": 450, "delivery_days": 7})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("duplicate bid", func(t *testing.T) {
		svc := new(MockProposalService)
		svc.On("SubmitProposal", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: already submitted", services.ErrConflict))
		w := doJSON(t, setupEscrowRouter(&freelancer, nil, svc), http.MethodPost, "/jobs/"+job.ID.String()+"/proposals",
			gin.H{"cover_letter": "again", "bid_amount": 450, "delivery_days": 7})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, services.KindConflict, decodeError(t, w).Kind)
	})

	t.Run("accept", func(t *testing.T) {
		svc := new(MockProposalService)
		hired := *job
		hired.Status = models.JobStatusInProgress
		hired.FreelancerID = &freelancer.ID
		accepted := *proposal
		accepted.Status = models.ProposalStatusAccepted
		svc.On("AcceptProposal", mock.Anything, &dto.ProposalDecisionRequest{Actor: client, JobID: job.ID, ProposalID: proposal.ID}).
			Return(&hired, &accepted, nil)

		w := doJSON(t, setupEscrowRouter(&client, nil, svc), http.MethodPut,
			fmt.Sprintf("/jobs/%s/accept/%s", job.ID, proposal.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.AcceptProposalResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "in-progress", resp.Job.Status)
		assert.Equal(t, freelancer.ID, *resp.Job.FreelancerID)
		assert.Equal(t, models.ProposalStatusAccepted, resp.Proposal.Status)
	})

	t.Run("decline with bad proposal id", func(t *testing.T) {
		svc := new(MockProposalService)
		w := doJSON(t, setupEscrowRouter(&client, nil, svc), http.MethodPut, "/jobs/"+job.ID.String()+"/decline/xyz", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "DeclineProposal", mock.Anything, mock.Anything)
	})

	t.Run("withdraw by someone else", func(t *testing.T) {
		svc := new(MockProposalService)
		svc.On("WithdrawProposal", mock.Anything, &dto.WithdrawProposalRequest{Actor: client, ProposalID: proposal.ID}).
			Return(nil, fmt.Errorf("%w: only the bidder may withdraw", services.ErrForbidden))
		w := doJSON(t, setupEscrowRouter(&client, nil, svc), http.MethodPut, "/proposals/"+proposal.ID.String()+"/withdraw", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		svc := new(MockProposalService)
		svc.On("ListProposals", mock.Anything, &dto.ListProposalsRequest{Actor: client, JobID: job.ID}).
			Return([]models.Proposal{*proposal}, nil)
		w := doJSON(t, setupEscrowRouter(&client, nil, svc), http.MethodGet, "/jobs/"+job.ID.String()+"/proposals", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp []dto.ProposalResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
	})
}
