package handlers

import (
	"net/http"

	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// EscrowHandler holds dependencies for funding, delivery and payout.
type EscrowHandler struct {
	service   services.EscrowService
	validator *validator.Validate
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(service services.EscrowService, validate *validator.Validate) *EscrowHandler {
	return &EscrowHandler{
		service:   service,
		validator: validate,
	}
}

// Quote godoc
// @Summary      Quote escrow funding
// @Description  Principal, platform fee and total the client pays to fund the job.
// @Tags         escrow
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.QuoteResponse
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Router       /jobs/{id}/quote [get]
// @Security     BearerAuth
func (h *EscrowHandler) Quote(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), &dto.GetJobByIDRequest{Actor: actor, ID: jobID})
	if err != nil {
		respondError(c, "Quote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// FundEscrow godoc
// @Summary      Fund the escrow
// @Description  The client deposits the job budget after hiring. The amount must equal the budget.
// @Tags         escrow
// @Accept       json
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Param        payment body      dto.FundEscrowRequest true  "Amount"
// @Success      201 {object}  dto.PaymentResponse
// @Failure      400 {object}  ErrorResponse "Amount does not match the budget"
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Failure      409 {object}  ErrorResponse "Job not in progress or already funded"
// @Router       /jobs/{id}/fund [post]
// @Security     BearerAuth
func (h *EscrowHandler) FundEscrow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}
	var req dto.FundEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Actor = actor
	req.JobID = jobID
	if !validateRequest(c, h.validator, &req) {
		return
	}

	payment, err := h.service.FundEscrow(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "FundEscrow", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapPaymentToResponse(payment))
}

// SubmitWork godoc
// @Summary      Submit the deliverable
// @Description  The hired freelancer submits work once the escrow is funded. Only one submission per job.
// @Tags         escrow
// @Accept       json
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Param        submission body      dto.SubmitWorkRequest true  "Deliverable"
// @Success      200 {object}  dto.JobResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      403 {object}  ErrorResponse "Not the hired freelancer"
// @Failure      409 {object}  ErrorResponse "Escrow not funded or work already submitted"
// @Router       /jobs/{id}/submit [post]
// @Security     BearerAuth
func (h *EscrowHandler) SubmitWork(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}
	var req dto.SubmitWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Actor = actor
	req.JobID = jobID
	if !validateRequest(c, h.validator, &req) {
		return
	}

	job, err := h.service.SubmitWork(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "SubmitWork", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobToResponse(job))
}

// ApproveWork godoc
// @Summary      Approve the work
// @Description  Releases the escrow to the freelancer and completes the job.
// @Tags         escrow
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.ApproveWorkResponse
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Failure      409 {object}  ErrorResponse "Nothing to approve"
// @Router       /jobs/{id}/approve [put]
// @Security     BearerAuth
func (h *EscrowHandler) ApproveWork(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	job, payment, err := h.service.ApproveWork(c.Request.Context(), &dto.JobActionRequest{Actor: actor, JobID: jobID})
	if err != nil {
		respondError(c, "ApproveWork", err)
		return
	}
	c.JSON(http.StatusOK, dto.ApproveWorkResponse{
		Job:     services.MapJobToResponse(job),
		Payment: services.MapPaymentToResponse(payment),
	})
}
