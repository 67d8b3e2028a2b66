package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// SubmitContactRequest is the public contact form. Actor is nil for anonymous senders.
type SubmitContactRequest struct {
	Actor   *models.Actor `json:"-"`
	Name    string        `json:"name" validate:"required,max=200"`
	Email   string        `json:"email" validate:"required,email"`
	Message string        `json:"message" validate:"required,max=5000"`
}

// ListMyContactsRequest lists what the caller sent through the contact form.
type ListMyContactsRequest struct {
	Actor  models.Actor `json:"-"`
	Limit  int          `form:"limit,default=50" validate:"omitempty,gte=0,lte=200"`
	Offset int          `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// ListContactsRequest defines filters for the admin contact listing.
type ListContactsRequest struct {
	Actor  models.Actor          `json:"-"`
	Status *models.ContactStatus `form:"status" validate:"omitempty,oneof=pending responded"`
	Limit  int                   `form:"limit,default=50" validate:"omitempty,gte=0,lte=200"`
	Offset int                   `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// RespondContactRequest answers a pending contact message.
type RespondContactRequest struct {
	Actor     models.Actor `json:"-"`
	ContactID uuid.UUID    `json:"-" validate:"required"`
	Response  string       `json:"response" validate:"required,max=5000"`
}

type ContactResponse struct {
	ID          uuid.UUID            `json:"id"`
	UserID      *uuid.UUID           `json:"user_id,omitempty"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Message     string               `json:"message"`
	Status      models.ContactStatus `json:"status"`
	Response    *string              `json:"response,omitempty"`
	RespondedAt *time.Time           `json:"responded_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}
