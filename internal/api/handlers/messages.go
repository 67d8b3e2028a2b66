package handlers

import (
	"net/http"
	"time"

	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MessageStreamer upgrades a request into a push channel for userID.
type MessageStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID)
}

// MessageHandler holds dependencies for messaging operations.
type MessageHandler struct {
	service   services.MessageService
	streamer  MessageStreamer
	validator *validator.Validate
}

// NewMessageHandler creates a new MessageHandler. streamer may be nil, which disables the push endpoint.
func NewMessageHandler(service services.MessageService, streamer MessageStreamer, validate *validator.Validate) *MessageHandler {
	return &MessageHandler{
		service:   service,
		streamer:  streamer,
		validator: validate,
	}
}

// SendJobMessage godoc
// @Summary      Send a message about a job
// @Description  Both sender and receiver must be participants of the job unless the sender is an admin.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message body      dto.SendMessageRequest true  "Message with job_id"
// @Success      201 {object}  dto.MessageResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      403 {object}  ErrorResponse "Not a participant"
// @Failure      404 {object}  ErrorResponse "Job or receiver not found"
// @Router       /messages [post]
// @Security     BearerAuth
func (h *MessageHandler) SendJobMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}
	if req.JobID == nil || *req.JobID == uuid.Nil {
		respondBadRequest(c, "Field 'job_id' is required")
		return
	}
	req.Actor = actor
	h.send(c, &req)
}

// SendDirectMessage godoc
// @Summary      Send a direct message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message body      dto.SendMessageRequest true  "Message (job_id ignored)"
// @Success      201 {object}  dto.MessageResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      404 {object}  ErrorResponse "Receiver not found"
// @Router       /messages/direct [post]
// @Security     BearerAuth
func (h *MessageHandler) SendDirectMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}
	req.Actor = actor
	req.JobID = nil
	h.send(c, &req)
}

func (h *MessageHandler) send(c *gin.Context, req *dto.SendMessageRequest) {
	msg, err := h.service.SendMessage(c.Request.Context(), req)
	if err != nil {
		respondError(c, "SendMessage", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapMessageToResponse(msg))
}

// Inbox godoc
// @Summary      Latest message of each conversation
// @Tags         messages
// @Produce      json
// @Param        limit query int false "Maximum conversations" default(50)
// @Success      200 {array}   dto.MessageResponse
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Router       /messages/inbox [get]
// @Security     BearerAuth
func (h *MessageHandler) Inbox(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.InboxRequest
	if !bindQuery(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	msgs, err := h.service.Inbox(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Inbox", err)
		return
	}
	c.JSON(http.StatusOK, services.MapMessagesToResponse(msgs))
}

// DirectConversation godoc
// @Summary      Direct conversation with a user
// @Description  Oldest first. Pass since (RFC3339) to poll for newer messages.
// @Tags         messages
// @Produce      json
// @Param        userId path      string true  "Other user ID" Format(uuid)
// @Param        since query string false "Only messages after this time (RFC3339)"
// @Param        limit query int false "Maximum messages" default(100)
// @Success      200 {array}   dto.MessageResponse
// @Failure      400 {object}  ErrorResponse "Invalid parameters"
// @Router       /messages/direct/{userId} [get]
// @Security     BearerAuth
func (h *MessageHandler) DirectConversation(c *gin.Context) {
	otherID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	h.conversation(c, nil, otherID)
}

// JobConversation godoc
// @Summary      Conversation with a user about a job
// @Description  Oldest first. Pass since (RFC3339) to poll for newer messages.
// @Tags         messages
// @Produce      json
// @Param        jobId path      string true  "Job ID" Format(uuid)
// @Param        userId path      string true  "Other user ID" Format(uuid)
// @Param        since query string false "Only messages after this time (RFC3339)"
// @Param        limit query int false "Maximum messages" default(100)
// @Success      200 {array}   dto.MessageResponse
// @Failure      400 {object}  ErrorResponse "Invalid parameters"
// @Failure      403 {object}  ErrorResponse "Not a participant"
// @Router       /messages/job/{jobId}/{userId} [get]
// @Security     BearerAuth
func (h *MessageHandler) JobConversation(c *gin.Context) {
	jobID, ok := uuidParam(c, "jobId", "job")
	if !ok {
		return
	}
	otherID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	h.conversation(c, &jobID, otherID)
}

func (h *MessageHandler) conversation(c *gin.Context, jobID *uuid.UUID, otherID uuid.UUID) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ConversationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondBadRequest(c, "Invalid 'since': expected an RFC3339 timestamp")
			return
		}
		req.Since = &since
	}
	req.Actor = actor
	req.JobID = jobID
	req.OtherUserID = otherID
	if !validateRequest(c, h.validator, &req) {
		return
	}

	msgs, err := h.service.Conversation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Conversation", err)
		return
	}
	c.JSON(http.StatusOK, services.MapMessagesToResponse(msgs))
}

// Stream godoc
// @Summary      Live message stream
// @Description  Upgrades to a websocket that pushes new messages addressed to the caller. Pass the token as access_token when headers cannot be set.
// @Tags         messages
// @Param        access_token query string false "Access token"
// @Success      101 "Switching Protocols"
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Failure      404 {object}  ErrorResponse "Push disabled"
// @Router       /messages/stream [get]
// @Security     BearerAuth
func (h *MessageHandler) Stream(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if h.streamer == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Message push is disabled", Kind: services.KindNotFound})
		return
	}
	h.streamer.Serve(c.Writer, c.Request, actor.ID)
}
