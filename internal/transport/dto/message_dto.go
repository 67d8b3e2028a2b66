package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// SendMessageRequest posts a message, attached to a job when JobID is set.
type SendMessageRequest struct {
	Actor      models.Actor `json:"-"`
	JobID      *uuid.UUID   `json:"job_id,omitempty"`
	ReceiverID uuid.UUID    `json:"receiver_id" validate:"required"`
	Content    string       `json:"content" validate:"required,max=5000"`
}

// ConversationRequest fetches the messages between the caller and another user.
// Since supports incremental polling.
type ConversationRequest struct {
	Actor       models.Actor `json:"-"`
	JobID       *uuid.UUID   `json:"-"`
	OtherUserID uuid.UUID    `json:"-" validate:"required"`
	Since       *time.Time   `form:"-"` // Parsed by the handler from ?since=RFC3339
	Limit       int          `form:"limit,default=100" validate:"omitempty,gte=0,lte=500"`
}

type InboxRequest struct {
	Actor models.Actor `json:"-"`
	Limit int          `form:"limit,default=50" validate:"omitempty,gte=0,lte=200"`
}

type MessageResponse struct {
	ID         uuid.UUID  `json:"id"`
	JobID      *uuid.UUID `json:"job_id,omitempty"`
	SenderID   uuid.UUID  `json:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
}
