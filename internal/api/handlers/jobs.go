package handlers

import (
	"net/http"

	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// JobHandler holds dependencies for job operations.
type JobHandler struct {
	service   services.JobService
	validator *validator.Validate
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(service services.JobService, validate *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   service,
		validator: validate,
	}
}

// CreateJob godoc
// @Summary      Post a new job
// @Description  Creates an open job owned by the caller. Only verified clients may post.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job body      dto.CreateJobRequest true  "Job details"
// @Success      201 {object}  dto.JobResponse "Job created successfully"
// @Failure      400 {object}  ErrorResponse "Bad Request - Invalid input"
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Failure      403 {object}  ErrorResponse "Caller is not a verified client"
// @Failure      500 {object}  ErrorResponse "Internal Server Error"
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	job, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "CreateJob", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapJobToResponse(job))
}

// ListJobs godoc
// @Summary      Browse jobs
// @Description  Lists jobs matching the filters. Defaults to open jobs, newest first.
// @Tags         jobs
// @Produce      json
// @Param        status query string false "Job status" Enums(open, in-progress, completed, cancelled)
// @Param        category query string false "Category"
// @Param        experience_level query string false "Experience level" Enums(Entry, Intermediate, Expert)
// @Param        search query string false "Text contained in title or description"
// @Param        min_budget query number false "Minimum budget"
// @Param        max_budget query number false "Maximum budget"
// @Param        limit query int false "Pagination limit" default(20)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.JobResponse
// @Failure      400 {object}  ErrorResponse "Bad Request - Invalid query parameters"
// @Router       /jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}
	jobs, err := h.service.ListJobs(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "ListJobs", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobsToResponse(jobs))
}

// ListMyJobs godoc
// @Summary      List the caller's jobs
// @Description  Jobs the caller posted or was hired on.
// @Tags         jobs
// @Produce      json
// @Param        limit query int false "Pagination limit" default(20)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.JobResponse
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Router       /jobs/my [get]
// @Security     BearerAuth
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListMyJobsRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	jobs, err := h.service.ListMyJobs(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "ListMyJobs", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobsToResponse(jobs))
}

// GetJobByID godoc
// @Summary      Get a job by ID
// @Description  Returns the job with the proposals the caller may see and its current payment.
// @Tags         jobs
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.JobDetailResponse "Successfully retrieved job"
// @Failure      400 {object}  ErrorResponse "Invalid ID format"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetJobByID(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	detail, err := h.service.GetJob(c.Request.Context(), &dto.GetJobByIDRequest{Actor: actor, ID: jobID})
	if err != nil {
		respondError(c, "GetJobByID", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// EditJob godoc
// @Summary      Edit a job
// @Description  Updates fields of an open job. Only the owner (or an admin) may edit.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Param        job body      dto.EditJobRequest true  "Fields to change"
// @Success      200 {object}  dto.JobResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Failure      409 {object}  ErrorResponse "Job is no longer open"
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) EditJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}
	var req dto.EditJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Actor = actor
	req.JobID = jobID
	if !validateRequest(c, h.validator, &req) {
		return
	}

	job, err := h.service.EditJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "EditJob", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobToResponse(job))
}

// DeleteJob godoc
// @Summary      Delete a job
// @Description  Removes a job with its proposals, payments, reviews and messages. Admin only.
// @Tags         jobs
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      204 "Job deleted"
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) DeleteJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	if err := h.service.DeleteJob(c.Request.Context(), &dto.JobActionRequest{Actor: actor, JobID: jobID}); err != nil {
		respondError(c, "DeleteJob", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RepostJob godoc
// @Summary      Repost a job
// @Description  Reopens an open or cancelled job with a deadline one week out.
// @Tags         jobs
// @Produce      json
// @Param        id path      string true  "Job ID" Format(uuid)
// @Success      200 {object}  dto.JobResponse
// @Failure      403 {object}  ErrorResponse "Not the owner"
// @Failure      404 {object}  ErrorResponse "Job Not Found"
// @Failure      409 {object}  ErrorResponse "Job cannot be reposted in its current state"
// @Router       /jobs/{id}/repost [post]
// @Security     BearerAuth
func (h *JobHandler) RepostJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "job")
	if !ok {
		return
	}

	job, err := h.service.Repost(c.Request.Context(), &dto.JobActionRequest{Actor: actor, JobID: jobID})
	if err != nil {
		respondError(c, "RepostJob", err)
		return
	}
	c.JSON(http.StatusOK, services.MapJobToResponse(job))
}
