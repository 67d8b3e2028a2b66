package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"

	"github.com/google/uuid"
)

type messageService struct {
	store    storage.Store
	notifier Notifier
	pageSize int
}

// NewMessageService creates a new instance of MessageService. notifier may be nil.
func NewMessageService(store storage.Store, notifier Notifier, pageSize int) MessageService {
	return &messageService{store: store, notifier: notifier, pageSize: pageSize}
}

// isJobParticipant reports whether userID is the client, the hired freelancer,
// or a freelancer who bid on the job.
func isJobParticipant(ctx context.Context, store storage.Store, job *models.Job, userID uuid.UUID) (bool, error) {
	if job.IsClient(userID) || job.IsFreelancer(userID) {
		return true, nil
	}
	proposals, err := store.Proposals().ListByJob(ctx, job.ID)
	if err != nil {
		return false, mapRepoError(err, "listing proposals for participant check")
	}
	for _, p := range proposals {
		if p.FreelancerID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *messageService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}
	if req.ReceiverID == req.Actor.ID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	if _, err := s.store.Users().GetByID(ctx, req.ReceiverID); err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching receiver %s", req.ReceiverID))
	}

	if req.JobID != nil {
		job, err := s.store.Jobs().GetByID(ctx, *req.JobID)
		if err != nil {
			return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", *req.JobID))
		}
		if !req.Actor.IsAdmin() {
			for _, id := range []uuid.UUID{req.Actor.ID, req.ReceiverID} {
				ok, err := isJobParticipant(ctx, s.store, job, id)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, fmt.Errorf("%w: user %s is not a participant of job %s", ErrForbidden, id, job.ID)
				}
			}
		}
	}

	msg, err := s.store.Messages().Create(ctx, &models.Message{
		JobID:      req.JobID,
		SenderID:   req.Actor.ID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	})
	if err != nil {
		return nil, mapRepoError(err, "storing message")
	}

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, msg); err != nil {
			log.Printf("SendMessage: Push for message %s failed, recipient will see it on next poll: %v", msg.ID, err)
		}
	}
	return msg, nil
}

// Conversation returns the messages between the caller and another user, oldest first.
// Since narrows the result to messages created after it, for polling clients.
func (s *messageService) Conversation(ctx context.Context, req *dto.ConversationRequest) ([]models.Message, error) {
	if req.JobID != nil {
		job, err := s.store.Jobs().GetByID(ctx, *req.JobID)
		if err != nil {
			return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", *req.JobID))
		}
		if !req.Actor.IsAdmin() {
			ok, err := isJobParticipant(ctx, s.store, job, req.Actor.ID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: not a participant of job %s", ErrForbidden, job.ID)
			}
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	msgs, err := s.store.Messages().ListConversation(ctx, storage.ConversationFilter{
		JobID: req.JobID,
		UserA: req.Actor.ID,
		UserB: req.OtherUserID,
		Since: req.Since,
		Limit: limit,
	})
	if err != nil {
		return nil, mapRepoError(err, "listing conversation")
	}
	return msgs, nil
}

// Inbox returns the latest message of each of the caller's conversations.
func (s *messageService) Inbox(ctx context.Context, req *dto.InboxRequest) ([]models.Message, error) {
	msgs, err := s.store.Messages().Inbox(ctx, req.Actor.ID, req.Limit)
	if err != nil {
		return nil, mapRepoError(err, "loading inbox")
	}
	return msgs, nil
}
