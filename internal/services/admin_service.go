package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"
)

type adminService struct {
	store storage.Store
	rules Rules
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(store storage.Store, rules Rules) AdminService {
	return &adminService{store: store, rules: rules}
}

// Stats summarises users, jobs and payments. Commission is the fee earned on released payments.
func (s *adminService) Stats(ctx context.Context, actor models.Actor) (*models.Stats, error) {
	if err := requireAdmin(actor, "Stats"); err != nil {
		return nil, err
	}
	users, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		return nil, mapRepoError(err, "counting users")
	}
	jobs, err := s.store.Jobs().CountByStatus(ctx)
	if err != nil {
		return nil, mapRepoError(err, "counting jobs")
	}
	totals, err := s.store.Payments().Totals(ctx)
	if err != nil {
		return nil, mapRepoError(err, "aggregating payments")
	}
	return &models.Stats{
		UsersByRole:      users,
		JobsByStatus:     jobs,
		PaymentsByStatus: totals.ByStatus,
		EscrowedTotal:    roundCents(totals.EscrowedTotal),
		ReleasedTotal:    roundCents(totals.ReleasedTotal),
		Commission:       roundCents(totals.ReleasedTotal * s.rules.FeePercent / 100),
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context, actor models.Actor, req *dto.ListUsersRequest) ([]models.User, error) {
	if err := requireAdmin(actor, "ListUsers"); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx, storage.UserFilter{Role: req.Role, Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		return nil, mapRepoError(err, "listing users")
	}
	return users, nil
}

// VerifyUser toggles the verified flag.
func (s *adminService) VerifyUser(ctx context.Context, req *dto.VerifyUserRequest) (*models.User, error) {
	if err := requireAdmin(req.Actor, "VerifyUser"); err != nil {
		return nil, err
	}
	updated, err := s.store.Users().ToggleVerified(ctx, req.UserID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("toggling verification of user %s", req.UserID))
	}
	log.Printf("VerifyUser: Admin %s set verified=%t on user %s", req.Actor.ID, updated.Verified, updated.ID)
	return updated, nil
}

// DeleteUser removes an account and everything it owns. Freelancers hired on a job
// cannot be removed.
func (s *adminService) DeleteUser(ctx context.Context, req *dto.DeleteUserRequest) error {
	if err := requireAdmin(req.Actor, "DeleteUser"); err != nil {
		return err
	}
	if req.UserID == req.Actor.ID {
		return fmt.Errorf("%w: administrators cannot delete their own account", ErrValidation)
	}
	err := s.store.Users().Delete(ctx, req.UserID)
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: user is hired on a job", ErrConflict)
	}
	if err != nil {
		return mapRepoError(err, fmt.Sprintf("deleting user %s", req.UserID))
	}
	log.Printf("DeleteUser: Admin %s deleted user %s", req.Actor.ID, req.UserID)
	return nil
}
