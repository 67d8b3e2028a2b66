package handlers

import (
	"net/http"

	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	service   services.ReviewService
	validator *validator.Validate
}

func NewReviewHandler(service services.ReviewService, validate *validator.Validate) *ReviewHandler {
	return &ReviewHandler{
		service:   service,
		validator: validate,
	}
}

// ReviewListResponse is a user's received reviews with their mean rating.
type ReviewListResponse struct {
	Reviews       []dto.ReviewResponse `json:"reviews"`
	AverageRating float64              `json:"average_rating"`
}

// AddReview godoc
// @Summary      Review the counterpart of a completed job
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        review body      dto.AddReviewRequest true  "Review"
// @Success      201 {object}  dto.ReviewResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      403 {object}  ErrorResponse "Not a participant of the job"
// @Failure      409 {object}  ErrorResponse "Job not completed or already reviewed"
// @Router       /reviews [post]
// @Security     BearerAuth
func (h *ReviewHandler) AddReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.AddReviewRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	review, err := h.service.AddReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "AddReview", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapReviewToResponse(review))
}

// ListReviews godoc
// @Summary      List reviews received by a user
// @Tags         reviews
// @Produce      json
// @Param        userId path      string true  "User ID" Format(uuid)
// @Success      200 {object}  ReviewListResponse
// @Failure      400 {object}  ErrorResponse "Invalid ID format"
// @Failure      404 {object}  ErrorResponse "User Not Found"
// @Router       /reviews/{userId} [get]
// @Security     BearerAuth
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	userID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	reviews, avg, err := h.service.ListReviews(c.Request.Context(), &dto.ListReviewsRequest{UserID: userID})
	if err != nil {
		respondError(c, "ListReviews", err)
		return
	}
	resp := ReviewListResponse{Reviews: make([]dto.ReviewResponse, 0, len(reviews)), AverageRating: avg}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, services.MapReviewToResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, resp)
}
