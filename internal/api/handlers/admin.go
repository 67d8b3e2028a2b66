package handlers

import (
	"net/http"

	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AdminHandler serves the admin console. Every route sits behind RequireRole(admin);
// the services check the role again.
type AdminHandler struct {
	admin     services.AdminService
	jobs      services.JobService
	escrow    services.EscrowService
	messages  services.MessageService
	validator *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin services.AdminService, jobs services.JobService, escrow services.EscrowService, messages services.MessageService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		jobs:      jobs,
		escrow:    escrow,
		messages:  messages,
		validator: validate,
	}
}

// Stats godoc
// @Summary      Platform statistics
// @Tags         admin
// @Produce      json
// @Success      200 {object}  models.Stats
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Router       /admin/stats [get]
// @Security     BearerAuth
func (h *AdminHandler) Stats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stats, err := h.admin.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "AdminStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        role query string false "Role" Enums(client, freelancer, admin)
// @Param        limit query int false "Pagination limit" default(50)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.UserResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListUsersRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}

	users, err := h.admin.ListUsers(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, "AdminListUsers", err)
		return
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, services.MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ListJobs godoc
// @Summary      List jobs in any status
// @Tags         admin
// @Produce      json
// @Param        status query string false "Job status" Enums(open, in-progress, completed, cancelled)
// @Param        limit query int false "Pagination limit" default(20)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.JobResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Router       /admin/jobs [get]
// @Security     BearerAuth
func (h *AdminHandler) ListJobs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListJobsRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}

	jobs, err := h.jobs.ListAllJobs(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, "AdminListJobs", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobsToResponse(jobs))
}

// ListPayments godoc
// @Summary      List payments
// @Tags         admin
// @Produce      json
// @Param        status query string false "Payment status" Enums(escrow, released, cancelled)
// @Param        limit query int false "Pagination limit" default(50)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.PaymentResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Router       /admin/payments [get]
// @Security     BearerAuth
func (h *AdminHandler) ListPayments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListPaymentsRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}

	payments, err := h.escrow.ListPayments(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, "AdminListPayments", err)
		return
	}
	c.JSON(http.StatusOK, services.MapPaymentsToResponse(payments))
}

// Inbox godoc
// @Summary      Admin inbox
// @Tags         admin
// @Produce      json
// @Param        limit query int false "Maximum conversations" default(50)
// @Success      200 {array}   dto.MessageResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Router       /admin/inbox [get]
// @Security     BearerAuth
func (h *AdminHandler) Inbox(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.InboxRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	msgs, err := h.messages.Inbox(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "AdminInbox", err)
		return
	}
	c.JSON(http.StatusOK, services.MapMessagesToResponse(msgs))
}

// VerifyUser godoc
// @Summary      Toggle a user's verified flag
// @Tags         admin
// @Produce      json
// @Param        userId path      string true  "User ID" Format(uuid)
// @Success      200 {object}  dto.UserResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Failure      404 {object}  ErrorResponse "User Not Found"
// @Router       /admin/verify/{userId} [put]
// @Security     BearerAuth
func (h *AdminHandler) VerifyUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	user, err := h.admin.VerifyUser(c.Request.Context(), &dto.VerifyUserRequest{Actor: actor, UserID: userID})
	if err != nil {
		respondError(c, "AdminVerifyUser", err)
		return
	}
	c.JSON(http.StatusOK, services.MapUserToResponse(user))
}

// SetPaymentStatus godoc
// @Summary      Override a payment status
// @Description  Moves an escrowed payment to released or cancelled.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path      string true  "Payment ID" Format(uuid)
// @Param        status body      dto.SetPaymentStatusRequest true  "Target status"
// @Success      200 {object}  dto.PaymentResponse
// @Failure      400 {object}  ErrorResponse "Invalid status"
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Failure      404 {object}  ErrorResponse "Payment Not Found"
// @Failure      409 {object}  ErrorResponse "Payment not in escrow"
// @Router       /admin/payments/{id} [put]
// @Security     BearerAuth
func (h *AdminHandler) SetPaymentStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	paymentID, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}
	var req dto.SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Actor = actor
	req.PaymentID = paymentID
	if !validateRequest(c, h.validator, &req) {
		return
	}

	payment, err := h.escrow.SetPaymentStatus(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "AdminSetPaymentStatus", err)
		return
	}
	c.JSON(http.StatusOK, services.MapPaymentToResponse(payment))
}

// CancelJob godoc
// @Summary      Cancel an open job
// @Tags         admin
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.JobResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Failure      409 {object}  ErrorResponse "Job is not open"
// @Router       /admin/jobs/{id}/cancel [put]
// @Security     BearerAuth
func (h *AdminHandler) CancelJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	job, err := h.jobs.CancelJob(c.Request.Context(), &dto.JobActionRequest{Actor: actor, JobID: jobID})
	if err != nil {
		respondError(c, "AdminCancelJob", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobToResponse(job))
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         admin
// @Param        id path      string true  "User ID" Format(uuid)
// @Success      204 "User deleted"
// @Failure      400 {object}  ErrorResponse "Cannot delete yourself"
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Failure      404 {object}  ErrorResponse "User Not Found"
// @Failure      409 {object}  ErrorResponse "User is hired on a job"
// @Router       /admin/users/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}

	if err := h.admin.DeleteUser(c.Request.Context(), &dto.DeleteUserRequest{Actor: actor, UserID: userID}); err != nil {
		respondError(c, "AdminDeleteUser", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteJob godoc
// @Summary      Delete a job
// @Tags         admin
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      204 "Job deleted"
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Router       /admin/jobs/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	if err := h.jobs.DeleteJob(c.Request.Context(), &dto.JobActionRequest{Actor: actor, JobID: jobID}); err != nil {
		respondError(c, "AdminDeleteJob", err)
		return
	}
	c.Status(http.StatusNoContent)
}
