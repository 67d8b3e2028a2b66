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

	"github.com/google/uuid"
)

type escrowService struct {
	store storage.Store
	rules Rules
}

// NewEscrowService creates a new instance of EscrowService.
func NewEscrowService(store storage.Store, rules Rules) EscrowService {
	return &escrowService{store: store, rules: rules}
}

func (s *escrowService) fee(budget float64) float64 {
	return roundCents(budget * s.rules.FeePercent / 100)
}

// Quote breaks down what the client pays to fund the job. The fee is informational;
// only the budget is escrowed.
func (s *escrowService) Quote(ctx context.Context, req *dto.GetJobByIDRequest) (*dto.QuoteResponse, error) {
	job, err := s.store.Jobs().GetByID(ctx, req.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.ID))
	}
	fee := s.fee(job.Budget)
	return &dto.QuoteResponse{
		JobID:      job.ID,
		Principal:  job.Budget,
		FeePercent: s.rules.FeePercent,
		Fee:        fee,
		TotalDue:   roundCents(job.Budget + fee),
	}, nil
}

// latestPayment returns the job's current payment, or nil when it has none.
func latestPayment(ctx context.Context, tx storage.Store, jobID uuid.UUID) (*models.Payment, error) {
	payment, err := tx.Payments().GetLatestByJob(ctx, jobID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching payment of job %s", jobID))
	}
	return payment, nil
}

// FundEscrow records the client's deposit of the job budget with the gateway.
func (s *escrowService) FundEscrow(ctx context.Context, req *dto.FundEscrowRequest) (*models.Payment, error) {
	var created *models.Payment
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if !job.IsClient(req.Actor.ID) {
			log.Printf("FundEscrow: Forbidden attempt by user %s on job %s owned by %s", req.Actor.ID, job.ID, job.ClientID)
			return fmt.Errorf("%w: only the job owner can fund escrow", ErrForbidden)
		}
		if job.Status != models.JobStatusInProgress {
			return fmt.Errorf("%w: job is %s, escrow is funded after hiring", ErrInvalidState, job.Status)
		}

		current, err := latestPayment(ctx, tx, job.ID)
		if err != nil {
			return err
		}
		if current != nil && current.Status != models.PaymentStatusCancelled {
			return fmt.Errorf("%w: job payment is already %s", ErrInvalidState, current.Status)
		}

		if !sameAmount(req.Amount, job.Budget) {
			return fmt.Errorf("%w: amount %.2f does not match the job budget %.2f", ErrValidation, req.Amount, job.Budget)
		}

		created, err = tx.Payments().Create(ctx, &models.Payment{
			JobID:        job.ID,
			ClientID:     job.ClientID,
			FreelancerID: *job.FreelancerID,
			Amount:       job.Budget,
			Fee:          s.fee(job.Budget),
			Status:       models.PaymentStatusEscrow,
		})
		if err != nil {
			return mapRepoError(err, "creating escrow payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Escrow funded for job %s: payment %s, amount %.2f", created.JobID, created.ID, created.Amount)
	return created, nil
}

// SubmitWork records the hired freelancer's deliverable once escrow is funded.
func (s *escrowService) SubmitWork(ctx context.Context, req *dto.SubmitWorkRequest) (*models.Job, error) {
	if blank(req.URL) {
		return nil, fmt.Errorf("%w: submission url is required", ErrValidation)
	}

	var updated *models.Job
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if !job.IsFreelancer(req.Actor.ID) {
			return fmt.Errorf("%w: only the hired freelancer can submit work", ErrForbidden)
		}
		if job.Status != models.JobStatusInProgress {
			return fmt.Errorf("%w: job is %s, not in progress", ErrInvalidState, job.Status)
		}
		if job.Submission != nil {
			return fmt.Errorf("%w: work has already been submitted", ErrInvalidState)
		}
		payment, err := latestPayment(ctx, tx, job.ID)
		if err != nil {
			return err
		}
		if payment == nil || payment.Status != models.PaymentStatusEscrow {
			return fmt.Errorf("%w: escrow must be funded before submitting work", ErrInvalidState)
		}

		job.Submission = &models.Submission{
			URL:         strings.TrimSpace(req.URL),
			Description: strings.TrimSpace(req.Description),
			CreatedAt:   s.rules.now().UTC(),
		}
		if updated, err = tx.Jobs().Update(ctx, job); err != nil {
			return mapRepoError(err, "recording submission")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// release moves an escrowed payment to released and completes the job.
func release(ctx context.Context, tx storage.Store, job *models.Job, payment *models.Payment) (*models.Job, *models.Payment, error) {
	if job.Status != models.JobStatusInProgress {
		return nil, nil, fmt.Errorf("%w: job is %s, not in progress", ErrInvalidState, job.Status)
	}
	if job.Submission == nil {
		return nil, nil, fmt.Errorf("%w: no work has been submitted", ErrInvalidState)
	}
	if payment == nil || !payment.Status.CanTransitionTo(models.PaymentStatusReleased) {
		return nil, nil, fmt.Errorf("%w: payment is not in escrow", ErrInvalidState)
	}

	released, err := tx.Payments().UpdateStatus(ctx, payment.ID, models.PaymentStatusReleased)
	if err != nil {
		return nil, nil, mapRepoError(err, "releasing payment")
	}
	job.Status = models.JobStatusCompleted
	completed, err := tx.Jobs().Update(ctx, job)
	if err != nil {
		return nil, nil, mapRepoError(err, "completing job")
	}
	return completed, released, nil
}

// ApproveWork releases the escrow and completes the job. It succeeds at most once per job.
func (s *escrowService) ApproveWork(ctx context.Context, req *dto.JobActionRequest) (*models.Job, *models.Payment, error) {
	var (
		completed *models.Job
		released  *models.Payment
	)
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if !job.IsClient(req.Actor.ID) && !req.Actor.IsAdmin() {
			return fmt.Errorf("%w: only the job owner can approve work", ErrForbidden)
		}
		payment, err := latestPayment(ctx, tx, job.ID)
		if err != nil {
			return err
		}
		completed, released, err = release(ctx, tx, job, payment)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Work approved for job %s, payment %s released", completed.ID, released.ID)
	return completed, released, nil
}

// transition applies a payment status change reported by an administrator or the gateway.
// Cancelling leaves the job in progress so the client can fund it again.
func transition(ctx context.Context, tx storage.Store, job *models.Job, payment *models.Payment, next models.PaymentStatus) (*models.Payment, error) {
	if !payment.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: payment cannot move from %s to %s", ErrInvalidState, payment.Status, next)
	}
	if next == models.PaymentStatusReleased {
		_, released, err := release(ctx, tx, job, payment)
		return released, err
	}
	cancelled, err := tx.Payments().UpdateStatus(ctx, payment.ID, next)
	if err != nil {
		return nil, mapRepoError(err, "cancelling payment")
	}
	return cancelled, nil
}

// SetPaymentStatus is the administrative payment override.
func (s *escrowService) SetPaymentStatus(ctx context.Context, req *dto.SetPaymentStatusRequest) (*models.Payment, error) {
	if err := requireAdmin(req.Actor, "SetPaymentStatus"); err != nil {
		return nil, err
	}
	var result *models.Payment
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		payment, err := tx.Payments().GetByID(ctx, req.PaymentID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching payment %s", req.PaymentID))
		}
		job, err := tx.Jobs().GetByIDForUpdate(ctx, payment.JobID)
		if err != nil {
			return mapRepoError(err, "locking job of payment")
		}
		if payment, err = tx.Payments().GetByID(ctx, req.PaymentID); err != nil {
			return mapRepoError(err, fmt.Sprintf("re-reading payment %s", req.PaymentID))
		}
		result, err = transition(ctx, tx, job, payment, req.Status)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("SetPaymentStatus: Admin %s moved payment %s to %s", req.Actor.ID, result.ID, result.Status)
	return result, nil
}

// ApplyGatewayEvent applies a status reported by the payment gateway to the job's
// current payment. The reported amount must match the payment; replayed events
// for a status already reached are ignored.
func (s *escrowService) ApplyGatewayEvent(ctx context.Context, jobID uuid.UUID, status models.PaymentStatus, amountCents int64) error {
	return s.store.InTx(ctx, func(tx storage.Store) error {
		job, err := tx.Jobs().GetByIDForUpdate(ctx, jobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s for gateway event", jobID))
		}
		payment, err := latestPayment(ctx, tx, job.ID)
		if err != nil {
			return err
		}
		if payment == nil {
			return fmt.Errorf("%w: job %s has no payment", ErrNotFound, jobID)
		}
		if want := toCents(payment.Amount); want != amountCents {
			log.Printf("ApplyGatewayEvent: Payment %s holds %d cents, gateway reported %d", payment.ID, want, amountCents)
			return fmt.Errorf("%w: gateway amount %d cents does not match payment of %d cents", ErrConflict, amountCents, want)
		}
		if payment.Status == status {
			log.Printf("ApplyGatewayEvent: Payment %s already %s, ignoring replay", payment.ID, status)
			return nil
		}
		if _, err := transition(ctx, tx, job, payment, status); err != nil {
			return err
		}
		log.Printf("ApplyGatewayEvent: Payment %s of job %s is now %s", payment.ID, jobID, status)
		return nil
	})
}

func (s *escrowService) ListPayments(ctx context.Context, actor models.Actor, req *dto.ListPaymentsRequest) ([]models.Payment, error) {
	if err := requireAdmin(actor, "ListPayments"); err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().List(ctx, storage.PaymentFilter{Status: req.Status, Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		return nil, mapRepoError(err, "listing payments")
	}
	return payments, nil
}
