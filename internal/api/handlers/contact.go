package handlers

import (
	"net/http"

	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ContactHandler serves the contact form and its admin inbox.
type ContactHandler struct {
	service   services.ContactService
	validator *validator.Validate
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service services.ContactService, validate *validator.Validate) *ContactHandler {
	return &ContactHandler{
		service:   service,
		validator: validate,
	}
}

// SubmitContact godoc
// @Summary      Send a message to the support team
// @Description  Open to anonymous visitors. A bearer token, when present, links the message to the account.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        message body      dto.SubmitContactRequest true  "Contact form"
// @Success      201 {object}  dto.ContactResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req dto.SubmitContactRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}
	if actor, err := middleware.GetActorFromContext(c); err == nil {
		req.Actor = &actor
	}

	msg, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "SubmitContact", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapContactToResponse(msg))
}

// ListMyContacts godoc
// @Summary      Contact messages sent by the caller
// @Tags         contact
// @Produce      json
// @Param        limit query int false "Pagination limit" default(50)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.ContactResponse
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Router       /contact/my-messages [get]
// @Security     BearerAuth
func (h *ContactHandler) ListMyContacts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListMyContactsRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	msgs, err := h.service.ListMine(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "ListMyContacts", err)
		return
	}
	c.JSON(http.StatusOK, services.MapContactsToResponse(msgs))
}

// ListContacts godoc
// @Summary      All contact messages (admin)
// @Tags         contact
// @Produce      json
// @Param        status query string false "Status" Enums(pending, responded)
// @Param        limit query int false "Pagination limit" default(50)
// @Param        offset query int false "Pagination offset" default(0)
// @Success      200 {array}   dto.ContactResponse
// @Failure      403 {object}  ErrorResponse "Not an admin"
// @Router       /contact/admin [get]
// @Security     BearerAuth
func (h *ContactHandler) ListContacts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListContactsRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	msgs, err := h.service.ListAll(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "ListContacts", err)
		return
	}
	c.JSON(http.StatusOK, services.MapContactsToResponse(msgs))
}

// RespondContact godoc
// @Summary      Answer a contact message (admin)
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        id path      string true  "Contact message ID" Format(uuid)
// @Param        body body      dto.RespondContactRequest true  "Response"
// @Success      200 {object}  dto.ContactResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      404 {object}  ErrorResponse "Message not found"
// @Failure      409 {object}  ErrorResponse "Already answered"
// @Router       /contact/{id}/respond [put]
// @Security     BearerAuth
func (h *ContactHandler) RespondContact(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contact message")
	if !ok {
		return
	}
	var req dto.RespondContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.Actor = actor
	req.ContactID = id
	if !validateRequest(c, h.validator, &req) {
		return
	}

	msg, err := h.service.Respond(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "RespondContact", err)
		return
	}
	c.JSON(http.StatusOK, services.MapContactToResponse(msg))
}
