package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"
)

type proposalService struct {
	store storage.Store
}

// NewProposalService creates a new instance of ProposalService.
func NewProposalService(store storage.Store) ProposalService {
	return &proposalService{store: store}
}

// SubmitProposal appends a pending bid to an open job.
func (s *proposalService) SubmitProposal(ctx context.Context, req *dto.SubmitProposalRequest) (*models.Proposal, error) {
	actor := req.Actor
	if actor.Role != models.RoleFreelancer {
		return nil, fmt.Errorf("%w: only freelancers can submit proposals", ErrForbidden)
	}
	if !actor.Verified {
		return nil, fmt.Errorf("%w: account must be verified to submit proposals", ErrForbidden)
	}
	if blank(req.CoverLetter) {
		return nil, fmt.Errorf("%w: cover letter is required", ErrValidation)
	}
	if req.BidAmount <= 0 || req.DeliveryDays <= 0 {
		return nil, fmt.Errorf("%w: bid amount and delivery time must be positive", ErrValidation)
	}

	var created *models.Proposal
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s for proposal", req.JobID))
		}
		if job.IsClient(actor.ID) {
			return fmt.Errorf("%w: clients cannot bid on their own job", ErrForbidden)
		}
		if job.Status != models.JobStatusOpen {
			log.Printf("SubmitProposal: Attempt to bid on non-open job %s (Status: %s)", job.ID, job.Status)
			return fmt.Errorf("%w: job is %s, not open for proposals", ErrInvalidState, job.Status)
		}

		created, err = tx.Proposals().Create(ctx, &models.Proposal{
			JobID:        job.ID,
			FreelancerID: actor.ID,
			CoverLetter:  strings.TrimSpace(req.CoverLetter),
			BidAmount:    roundCents(req.BidAmount),
			DeliveryDays: req.DeliveryDays,
			Status:       models.ProposalStatusPending,
		})
		if err != nil {
			return mapRepoError(err, "creating proposal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// lockProposal loads the job row for update and the proposal, checking they belong together.
func lockProposal(ctx context.Context, tx storage.Store, req *dto.ProposalDecisionRequest) (*models.Job, *models.Proposal, error) {
	job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
	if err != nil {
		return nil, nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
	}
	if !job.IsClient(req.Actor.ID) && !req.Actor.IsAdmin() {
		log.Printf("Proposal decision: Forbidden attempt by user %s on job %s owned by %s", req.Actor.ID, job.ID, job.ClientID)
		return nil, nil, fmt.Errorf("%w: only the job owner can decide on proposals", ErrForbidden)
	}
	proposal, err := tx.Proposals().GetByID(ctx, req.ProposalID)
	if err != nil {
		return nil, nil, mapRepoError(err, fmt.Sprintf("fetching proposal %s", req.ProposalID))
	}
	if proposal.JobID != job.ID {
		return nil, nil, fmt.Errorf("%w: proposal %s does not belong to job %s", ErrNotFound, proposal.ID, job.ID)
	}
	return job, proposal, nil
}

// AcceptProposal hires the bidder: the job moves to in-progress with the freelancer
// assigned, the proposal is accepted and every other pending proposal is rejected.
func (s *proposalService) AcceptProposal(ctx context.Context, req *dto.ProposalDecisionRequest) (*models.Job, *models.Proposal, error) {
	var (
		updatedJob *models.Job
		accepted   *models.Proposal
		rejected   int
	)
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, proposal, err := lockProposal(ctx, tx, req)
		if err != nil {
			return err
		}
		if job.Status != models.JobStatusOpen {
			log.Printf("AcceptProposal: Attempt on non-open job %s (Status: %s)", job.ID, job.Status)
			return fmt.Errorf("%w: job is %s, not open", ErrInvalidState, job.Status)
		}
		if proposal.Status != models.ProposalStatusPending {
			return fmt.Errorf("%w: proposal is %s, not pending", ErrInvalidState, proposal.Status)
		}

		if accepted, err = tx.Proposals().UpdateStatus(ctx, proposal.ID, models.ProposalStatusAccepted); err != nil {
			return mapRepoError(err, "accepting proposal")
		}

		freelancerID := proposal.FreelancerID
		job.FreelancerID = &freelancerID
		job.Status = models.JobStatusInProgress
		if updatedJob, err = tx.Jobs().Update(ctx, job); err != nil {
			return mapRepoError(err, "assigning freelancer")
		}

		if rejected, err = tx.Proposals().RejectPendingByJob(ctx, job.ID, proposal.ID); err != nil {
			return mapRepoError(err, "rejecting other proposals")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Proposal %s accepted, job %s in progress with freelancer %s (%d other proposals rejected)",
		accepted.ID, updatedJob.ID, accepted.FreelancerID, rejected)
	return updatedJob, accepted, nil
}

// DeclineProposal rejects a pending proposal. Declining a rejected proposal is a no-op.
func (s *proposalService) DeclineProposal(ctx context.Context, req *dto.ProposalDecisionRequest) (*models.Proposal, error) {
	var result *models.Proposal
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		_, proposal, err := lockProposal(ctx, tx, req)
		if err != nil {
			return err
		}
		switch proposal.Status {
		case models.ProposalStatusRejected:
			result = proposal
			return nil
		case models.ProposalStatusAccepted:
			return fmt.Errorf("%w: an accepted proposal cannot be declined", ErrInvalidState)
		}
		if result, err = tx.Proposals().UpdateStatus(ctx, proposal.ID, models.ProposalStatusRejected); err != nil {
			return mapRepoError(err, "declining proposal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WithdrawProposal lets the bidder retract a pending proposal.
func (s *proposalService) WithdrawProposal(ctx context.Context, req *dto.WithdrawProposalRequest) (*models.Proposal, error) {
	var result *models.Proposal
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		proposal, err := tx.Proposals().GetByID(ctx, req.ProposalID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching proposal %s", req.ProposalID))
		}
		// Serialize with accept/decline on the same job.
		if _, err := tx.Jobs().GetByIDForUpdate(ctx, proposal.JobID); err != nil {
			return mapRepoError(err, "locking job of proposal")
		}
		if proposal, err = tx.Proposals().GetByID(ctx, req.ProposalID); err != nil {
			return mapRepoError(err, fmt.Sprintf("re-reading proposal %s", req.ProposalID))
		}
		if proposal.FreelancerID != req.Actor.ID {
			return fmt.Errorf("%w: only the bidder can withdraw a proposal", ErrForbidden)
		}
		if proposal.Status != models.ProposalStatusPending {
			return fmt.Errorf("%w: proposal is %s, not pending", ErrInvalidState, proposal.Status)
		}
		if result, err = tx.Proposals().UpdateStatus(ctx, proposal.ID, models.ProposalStatusRejected); err != nil {
			return mapRepoError(err, "withdrawing proposal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListProposals lists a job's proposals in submission order, filtered to what the caller may see.
func (s *proposalService) ListProposals(ctx context.Context, req *dto.ListProposalsRequest) ([]models.Proposal, error) {
	job, err := s.store.Jobs().GetByID(ctx, req.JobID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
	}
	proposals, err := s.store.Proposals().ListByJob(ctx, job.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("listing proposals of job %s", job.ID))
	}
	return visibleProposals(job, req.Actor, proposals), nil
}
