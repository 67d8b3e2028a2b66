package handlers

import (
	"net/http"

	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProposalHandler holds dependencies for bidding operations.
type ProposalHandler struct {
	service   services.ProposalService
	validator *validator.Validate
}

// NewProposalHandler creates a new ProposalHandler.
func NewProposalHandler(service services.ProposalService, validate *validator.Validate) *ProposalHandler {
	return &ProposalHandler{
		service:   service,
		validator: validate,
	}
}

// ListProposals godoc
// @Summary      List proposals on a job
// @Description  The job owner and admins see every proposal; freelancers see only their own.
// @Tags         proposals
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      200 {array}   dto.ProposalResponse
// @Failure      400 {object}  ErrorResponse "Invalid ID format"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Router       /jobs/{id}/proposals [get]
// @Security     BearerAuth
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	proposals, err := h.service.ListProposals(c.Request.Context(), &dto.ListProposalsRequest{Actor: actor, JobID: jobID})
	if err != nil {
		respondError(c, "ListProposals", err)
		return
	}
	c.JSON(http.StatusOK, services.MapProposalsToResponse(proposals))
}

// SubmitProposal godoc
// @Summary      Bid on a job
// @Description  A verified freelancer submits one proposal per open job.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Param        proposal body      dto.SubmitProposalRequest true  "Proposal"
// @Success      201 {object}  dto.ProposalResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      403 {object}  ErrorResponse "Caller is not a verified freelancer"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Failure      409 {object}  ErrorResponse "Job not open or already bid"
// @Router       /jobs/{id}/proposals [post]
// @Security     BearerAuth
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}
	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Actor = actor
	req.JobID = jobID
	if !validateRequest(c, h.validator, &req) {
		return
	}

	proposal, err := h.service.SubmitProposal(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "SubmitProposal", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapProposalToResponse(proposal))
}

func (h *ProposalHandler) decisionRequest(c *gin.Context) (*dto.ProposalDecisionRequest, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return nil, false
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return nil, false
	}
	proposalID, ok := uuidParam(c, "proposalId", "proposal")
	if !ok {
		return nil, false
	}
	return &dto.ProposalDecisionRequest{Actor: actor, JobID: jobID, ProposalID: proposalID}, true
}

// AcceptProposal godoc
// @Summary      Accept a proposal
// @Description  Hires the bidder, moves the job to in-progress and rejects the other pending proposals.
// @Tags         proposals
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Param        proposalId path      string true  "Proposal ID" Format(uuid)
// @Success      200 {object}  dto.AcceptProposalResponse
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job or proposal not found"
// @Failure      409 {object}  ErrorResponse "Job not open or proposal not pending"
// @Router       /jobs/{id}/accept/{proposalId} [put]
// @Security     BearerAuth
func (h *ProposalHandler) AcceptProposal(c *gin.Context) {
	req, ok := h.decisionRequest(c)
	if !ok {
		return
	}

	job, proposal, err := h.service.AcceptProposal(c.Request.Context(), req)
	if err != nil {
		respondError(c, "AcceptProposal", err)
		return
	}
	c.JSON(http.StatusOK, dto.AcceptProposalResponse{
		Job:      services.MapJobToResponse(job),
		Proposal: services.MapProposalToResponse(proposal),
	})
}

// DeclineProposal godoc
// @Summary      Decline a proposal
// @Tags         proposals
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Param        proposalId path      string true  "Proposal ID" Format(uuid)
// @Success      200 {object}  dto.ProposalResponse
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job or proposal not found"
// @Failure      409 {object}  ErrorResponse "Proposal already accepted"
// @Router       /jobs/{id}/decline/{proposalId} [put]
// @Security     BearerAuth
func (h *ProposalHandler) DeclineProposal(c *gin.Context) {
	req, ok := h.decisionRequest(c)
	if !ok {
		return
	}

	proposal, err := h.service.DeclineProposal(c.Request.Context(), req)
	if err != nil {
		respondError(c, "DeclineProposal", err)
		return
	}
	c.JSON(http.StatusOK, services.MapProposalToResponse(proposal))
}

// WithdrawProposal godoc
// @Summary      Withdraw a proposal
// @Description  The bidder retracts a pending proposal.
// @Tags         proposals
// @Produce      json
// @Param        id path      string true  "Proposal ID" Format(uuid)
// @Success      200 {object}  dto.ProposalResponse
// @Failure      403 {object}  ErrorResponse "Not the bidder"
// @Failure      404 {object}  ErrorResponse "Proposal Not Found"
// @Failure      409 {object}  ErrorResponse "Proposal is not pending"
// @Router       /proposals/{id}/withdraw [put]
// @Security     BearerAuth
func (h *ProposalHandler) WithdrawProposal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	proposalID, ok := uuidParam(c, "id", "proposal")
	if !ok {
		return
	}

	proposal, err := h.service.WithdrawProposal(c.Request.Context(), &dto.WithdrawProposalRequest{Actor: actor, ProposalID: proposalID})
	if err != nil {
		respondError(c, "WithdrawProposal", err)
		return
	}
	c.JSON(http.StatusOK, services.MapProposalToResponse(proposal))
}
