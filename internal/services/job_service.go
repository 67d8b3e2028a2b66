package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"

	"github.com/google/uuid"
)

// Rules holds the tunable marketplace constants.
type Rules struct {
	FeePercent float64 // Service fee charged on top of the budget
	RepostDays int     // Deadline extension applied by Repost
	Now        func() time.Time
}

func (r Rules) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// DefaultRules are the marketplace defaults: 3% fee, 7 day repost window.
func DefaultRules() Rules {
	return Rules{FeePercent: 3, RepostDays: 7, Now: time.Now}
}

type jobService struct {
	store storage.Store
	rules Rules
}

// NewJobService creates a new instance of JobService.
func NewJobService(store storage.Store, rules Rules) JobService {
	return &jobService{store: store, rules: rules}
}

func (s *jobService) validateDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", ErrValidation)
	}
	if startOfDay(deadline).Before(startOfDay(s.rules.now())) {
		return fmt.Errorf("%w: deadline cannot be in the past", ErrValidation)
	}
	return nil
}

// CreateJob posts a new open job owned by the caller.
func (s *jobService) CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*models.Job, error) {
	actor := req.Actor
	if actor.Role != models.RoleClient && actor.Role != models.RoleAdmin {
		log.Printf("CreateJob: Forbidden attempt by %s with role %s", actor.ID, actor.Role)
		return nil, fmt.Errorf("%w: only clients can post jobs", ErrForbidden)
	}
	if !actor.Verified {
		return nil, fmt.Errorf("%w: account must be verified to post jobs", ErrForbidden)
	}

	if blank(req.Title) || blank(req.Description) {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if req.Budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", ErrValidation)
	}
	if err := s.validateDeadline(req.Deadline.Time); err != nil {
		return nil, err
	}

	job, err := s.store.Jobs().Create(ctx, &models.Job{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Budget:          roundCents(req.Budget),
		Category:        strings.TrimSpace(req.Category),
		ExperienceLevel: req.ExperienceLevel,
		Deadline:        startOfDay(req.Deadline.Time),
		Status:          models.JobStatusOpen,
		ClientID:        actor.ID,
	})
	if err != nil {
		return nil, mapRepoError(err, "creating job")
	}
	return job, nil
}

// EditJob updates an open job. Administrators may also edit descriptive fields of
// jobs that have left the open state; the budget is frozen once a freelancer is hired.
func (s *jobService) EditJob(ctx context.Context, req *dto.EditJobRequest) (*models.Job, error) {
	var updated *models.Job
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if !job.IsClient(req.Actor.ID) && !req.Actor.IsAdmin() {
			log.Printf("EditJob: Forbidden attempt by user %s on job %s owned by %s", req.Actor.ID, job.ID, job.ClientID)
			return fmt.Errorf("%w: only the job owner can edit it", ErrForbidden)
		}
		if job.Status != models.JobStatusOpen && !req.Actor.IsAdmin() {
			return fmt.Errorf("%w: job is %s, only open jobs can be edited", ErrInvalidState, job.Status)
		}

		if req.Title != nil {
			if blank(*req.Title) {
				return fmt.Errorf("%w: title cannot be empty", ErrValidation)
			}
			job.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			if blank(*req.Description) {
				return fmt.Errorf("%w: description cannot be empty", ErrValidation)
			}
			job.Description = strings.TrimSpace(*req.Description)
		}
		if req.Budget != nil {
			if *req.Budget <= 0 {
				return fmt.Errorf("%w: budget must be positive", ErrValidation)
			}
			if job.Status != models.JobStatusOpen && !sameAmount(*req.Budget, job.Budget) {
				return fmt.Errorf("%w: budget cannot change once a freelancer is hired", ErrInvalidState)
			}
			job.Budget = roundCents(*req.Budget)
		}
		if req.Category != nil {
			job.Category = strings.TrimSpace(*req.Category)
		}
		if req.ExperienceLevel != nil {
			job.ExperienceLevel = *req.ExperienceLevel
		}
		if req.Deadline != nil {
			if err := s.validateDeadline(req.Deadline.Time); err != nil {
				return err
			}
			job.Deadline = startOfDay(req.Deadline.Time)
		}

		updated, err = tx.Jobs().Update(ctx, job)
		if err != nil {
			return mapRepoError(err, "updating job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Repost reopens a stale listing and pushes its deadline RepostDays into the future.
// Jobs with a hired freelancer cannot be reposted.
func (s *jobService) Repost(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error) {
	var updated *models.Job
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if !job.IsClient(req.Actor.ID) && !req.Actor.IsAdmin() {
			return fmt.Errorf("%w: only the job owner can repost it", ErrForbidden)
		}
		if job.Status != models.JobStatusOpen && job.Status != models.JobStatusCancelled {
			return fmt.Errorf("%w: job is %s, only open or cancelled jobs can be reposted", ErrInvalidState, job.Status)
		}

		job.Status = models.JobStatusOpen
		job.Deadline = startOfDay(s.rules.now()).AddDate(0, 0, s.rules.RepostDays)
		updated, err = tx.Jobs().Update(ctx, job)
		if err != nil {
			return mapRepoError(err, "reposting job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Job %s reposted until %s", updated.ID, updated.Deadline.Format(dto.DateLayout))
	return updated, nil
}

// DeleteJob removes a job with its proposals, payments, reviews and messages.
func (s *jobService) DeleteJob(ctx context.Context, req *dto.JobActionRequest) error {
	if err := requireAdmin(req.Actor, "DeleteJob"); err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID); err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if err := tx.Jobs().Delete(ctx, req.JobID); err != nil {
			return mapRepoError(err, fmt.Sprintf("deleting job %s", req.JobID))
		}
		return nil
	})
}

// CancelJob withdraws an open listing. Pending proposals are rejected.
func (s *jobService) CancelJob(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error) {
	if err := requireAdmin(req.Actor, "CancelJob"); err != nil {
		return nil, err
	}
	var updated *models.Job
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if job.Status != models.JobStatusOpen {
			return fmt.Errorf("%w: job is %s, only open jobs can be cancelled", ErrInvalidState, job.Status)
		}
		job.Status = models.JobStatusCancelled
		if updated, err = tx.Jobs().Update(ctx, job); err != nil {
			return mapRepoError(err, "cancelling job")
		}
		if _, err := tx.Proposals().RejectPendingByJob(ctx, job.ID, uuid.Nil); err != nil {
			return mapRepoError(err, "rejecting proposals of cancelled job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// visibleProposals filters proposals to what the actor may see: the owner and
// administrators see all of them, anyone else only their own.
func visibleProposals(job *models.Job, actor models.Actor, proposals []models.Proposal) []models.Proposal {
	if actor.IsAdmin() || job.IsClient(actor.ID) {
		return proposals
	}
	own := []models.Proposal{}
	for _, p := range proposals {
		if p.FreelancerID == actor.ID {
			own = append(own, p)
		}
	}
	return own
}

// GetJob returns the job with its proposals and current payment.
func (s *jobService) GetJob(ctx context.Context, req *dto.GetJobByIDRequest) (*dto.JobDetailResponse, error) {
	job, err := s.store.Jobs().GetByID(ctx, req.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.ID))
	}

	detail := &dto.JobDetailResponse{JobResponse: MapJobToResponse(job), Proposals: []dto.ProposalResponse{}}

	proposals, err := s.store.Proposals().ListByJob(ctx, job.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing proposals of job %s", job.ID))
	}
	detail.Proposals = MapProposalsToResponse(visibleProposals(job, req.Actor, proposals))

	payment, err := s.store.Payments().GetLatestByJob(ctx, job.ID)
	switch {
	case err == nil:
		p := MapPaymentToResponse(payment)
		detail.Payment = &p
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, mapRepoError(err, fmt.Sprintf("fetching payment of job %s", job.ID))
	}
	return detail, nil
}

func jobFilterFrom(req *dto.ListJobsRequest) (storage.JobFilter, error) {
	if req.MinBudget != nil && req.MaxBudget != nil && *req.MinBudget > *req.MaxBudget {
		return storage.JobFilter{}, fmt.Errorf("%w: min_budget cannot exceed max_budget", ErrValidation)
	}
	return storage.JobFilter{
		Status:          req.Status,
		Category:        req.Category,
		ExperienceLevel: req.ExperienceLevel,
		Search:          strings.TrimSpace(req.Search),
		MinBudget:       req.MinBudget,
		MaxBudget:       req.MaxBudget,
		Limit:           req.Limit,
		Offset:          req.Offset,
	}, nil
}

// ListJobs browses the job board. Without a status filter only open jobs are listed.
func (s *jobService) ListJobs(ctx context.Context, req *dto.ListJobsRequest) ([]models.Job, error) {
	filter, err := jobFilterFrom(req)
	if err != nil {
		return nil, err
	}
	if filter.Status == nil {
		open := models.JobStatusOpen
		filter.Status = &open
	}
	jobs, err := s.store.Jobs().List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "listing jobs")
	}
	return jobs, nil
}

// ListAllJobs is the administrative listing across every status.
func (s *jobService) ListAllJobs(ctx context.Context, actor models.Actor, req *dto.ListJobsRequest) ([]models.Job, error) {
	if err := requireAdmin(actor, "ListAllJobs"); err != nil {
		return nil, err
	}
	filter, err := jobFilterFrom(req)
	if err != nil {
		return nil, err
	}
	jobs, err := s.store.Jobs().List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "listing all jobs")
	}
	return jobs, nil
}

// ListMyJobs lists the jobs the caller posted or was hired for.
func (s *jobService) ListMyJobs(ctx context.Context, req *dto.ListMyJobsRequest) ([]models.Job, error) {
	id := req.Actor.ID
	jobs, err := s.store.Jobs().List(ctx, storage.JobFilter{ParticipantID: &id, Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing jobs of user %s", id))
	}
	return jobs, nil
}
