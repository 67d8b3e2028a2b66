package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"
)

type contactService struct {
	store storage.Store
}

// NewContactService creates a new instance of ContactService.
func NewContactService(store storage.Store) ContactService {
	return &contactService{store: store}
}

// Submit stores a contact form message as pending. Signed-in senders are linked
// to their account so the message shows up in their history.
func (s *contactService) Submit(ctx context.Context, req *dto.SubmitContactRequest) (*models.ContactMessage, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		return nil, fmt.Errorf("%w: name, email and message are required", ErrValidation)
	}

	msg := &models.ContactMessage{Name: name, Email: email, Message: message}
	if req.Actor != nil {
		id := req.Actor.ID
		msg.UserID = &id
	}
	created, err := s.store.Contacts().Create(ctx, msg)
	if err != nil {
		return nil, mapRepoError(err, "storing contact message")
	}
	log.Printf("Submit: Contact message %s received from %s", created.ID, created.Email)
	return created, nil
}

// ListMine returns the caller's messages, matched by account or by the caller's
// email for messages sent before signing in.
func (s *contactService) ListMine(ctx context.Context, req *dto.ListMyContactsRequest) ([]models.ContactMessage, error) {
	user, err := s.store.Users().GetByID(ctx, req.Actor.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s", req.Actor.ID))
	}
	id := user.ID
	contacts, err := s.store.Contacts().List(ctx, storage.ContactFilter{
		OwnerID: &id,
		Email:   user.Email,
		Limit:   req.Limit,
		Offset:  req.Offset,
	})
	if err != nil {
		return nil, mapRepoError(err, "listing own contact messages")
	}
	return contacts, nil
}

func (s *contactService) ListAll(ctx context.Context, req *dto.ListContactsRequest) ([]models.ContactMessage, error) {
	if err := requireAdmin(req.Actor, "ListContacts"); err != nil {
		return nil, err
	}
	contacts, err := s.store.Contacts().List(ctx, storage.ContactFilter{Status: req.Status, Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		return nil, mapRepoError(err, "listing contact messages")
	}
	return contacts, nil
}

// Respond answers a pending message. A message is answered once.
func (s *contactService) Respond(ctx context.Context, req *dto.RespondContactRequest) (*models.ContactMessage, error) {
	if err := requireAdmin(req.Actor, "RespondContact"); err != nil {
		return nil, err
	}
	response := strings.TrimSpace(req.Response)
	if response == "" {
		return nil, fmt.Errorf("%w: response is required", ErrValidation)
	}

	answered, err := s.store.Contacts().Respond(ctx, req.ContactID, response)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("%w: contact message %s was already answered", ErrInvalidState, req.ContactID)
		}
		return nil, mapRepoError(err, fmt.Sprintf("answering contact message %s", req.ContactID))
	}
	log.Printf("RespondContact: Admin %s answered contact message %s", req.Actor.ID, answered.ID)
	return answered, nil
}
