package services_test

import (
	"sync"
	"testing"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_HappyPath(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	freelancer := e.user(t, "frank", models.RoleFreelancer, true)

	job := e.openJob(t, client, 1000)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Nil(t, job.FreelancerID)

	proposal := e.propose(t, freelancer, job, 900)
	assert.Equal(t, models.ProposalStatusPending, proposal.Status)
	e.requireFreelancerInvariant(t)

	job, accepted, err := e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: client, JobID: job.ID, ProposalID: proposal.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, job.Status)
	require.NotNil(t, job.FreelancerID)
	assert.Equal(t, freelancer.ID, *job.FreelancerID)
	assert.Equal(t, models.ProposalStatusAccepted, accepted.Status)
	e.requireFreelancerInvariant(t)

	payment, err := e.escrow.FundEscrow(e.ctx, &dto.FundEscrowRequest{Actor: client, JobID: job.ID, Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusEscrow, payment.Status)
	assert.Equal(t, 1000.0, payment.Amount)
	assert.Equal(t, 30.0, payment.Fee)

	job, err = e.escrow.SubmitWork(e.ctx, &dto.SubmitWorkRequest{Actor: freelancer, JobID: job.ID, URL: "https://example.com/site", Description: "done"})
	require.NoError(t, err)
	require.NotNil(t, job.Submission)
	assert.Equal(t, "done", job.Submission.Description)

	job, payment, err = e.escrow.ApproveWork(e.ctx, &dto.JobActionRequest{Actor: client, JobID: job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, models.PaymentStatusReleased, payment.Status)
	e.requireFreelancerInvariant(t)
}

func TestLifecycle_OutOfOrderFailsWithStateError(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	freelancer := e.user(t, "frank", models.RoleFreelancer, true)

	job := e.openJob(t, client, 1000)

	_, err := e.escrow.FundEscrow(e.ctx, &dto.FundEscrowRequest{Actor: client, JobID: job.ID, Amount: 1000})
	assert.ErrorIs(t, err, services.ErrInvalidState, "funding before hiring")

	job = e.hired(t, client, freelancer, 1000)

	_, err = e.escrow.SubmitWork(e.ctx, &dto.SubmitWorkRequest{Actor: freelancer, JobID: job.ID, URL: "https://example.com", Description: "early"})
	assert.ErrorIs(t, err, services.ErrInvalidState, "submitting before funding")
	stored, err := e.store.Jobs().GetByID(e.ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Submission)

	_, err = e.escrow.FundEscrow(e.ctx, &dto.FundEscrowRequest{Actor: client, JobID: job.ID, Amount: 1000})
	require.NoError(t, err)

	_, _, err = e.escrow.ApproveWork(e.ctx, &dto.JobActionRequest{Actor: client, JobID: job.ID})
	assert.ErrorIs(t, err, services.ErrInvalidState, "approving before submission")

	payment, err := e.store.Payments().GetLatestByJob(e.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusEscrow, payment.Status)
}

func TestApproveWork_OnlyOnce(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	freelancer := e.user(t, "frank", models.RoleFreelancer, true)
	job := e.hired(t, client, freelancer, 500)

	_, err := e.escrow.FundEscrow(e.ctx, &dto.FundEscrowRequest{Actor: client, JobID: job.ID, Amount: 500})
	require.NoError(t, err)
	_, err = e.escrow.SubmitWork(e.ctx, &dto.SubmitWorkRequest{Actor: freelancer, JobID: job.ID, URL: "https://example.com", Description: "done"})
	require.NoError(t, err)

	first, _, err := e.escrow.ApproveWork(e.ctx, &dto.JobActionRequest{Actor: client, JobID: job.ID})
	require.NoError(t, err)

	_, _, err = e.escrow.ApproveWork(e.ctx, &dto.JobActionRequest{Actor: client, JobID: job.ID})
	assert.ErrorIs(t, err, services.ErrInvalidState)
	assert.Equal(t, services.KindState, services.Kind(err))

	after, err := e.store.Jobs().GetByID(e.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, after.Version)
	assert.Equal(t, models.JobStatusCompleted, after.Status)
}

func TestAcceptProposal_ConcurrentExactlyOneWins(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	job := e.openJob(t, client, 1000)

	const bidders = 8
	proposals := make([]*models.Proposal, bidders)
	for i := range proposals {
		f := e.user(t, "bidder"+string(rune('a'+i)), models.RoleFreelancer, true)
		proposals[i] = e.propose(t, f, job, float64(900+i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		stateErrs int
	)
	for _, p := range proposals {
		wg.Add(1)
		go func(p *models.Proposal) {
			defer wg.Done()
			_, _, err := e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: client, JobID: job.ID, ProposalID: p.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case services.Kind(err) == services.KindState:
				stateErrs++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, bidders-1, stateErrs)

	list, err := e.store.Proposals().ListByJob(e.ctx, job.ID)
	require.NoError(t, err)
	accepted := 0
	for _, p := range list {
		if p.Status == models.ProposalStatusAccepted {
			accepted++
		} else {
			assert.Equal(t, models.ProposalStatusRejected, p.Status)
		}
	}
	assert.Equal(t, 1, accepted)
	e.requireFreelancerInvariant(t)
}

func TestApproveWork_ConcurrentExactlyOneWins(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	freelancer := e.user(t, "frank", models.RoleFreelancer, true)
	job := e.hired(t, client, freelancer, 300)
	_, err := e.escrow.FundEscrow(e.ctx, &dto.FundEscrowRequest{Actor: client, JobID: job.ID, Amount: 300})
	require.NoError(t, err)
	_, err = e.escrow.SubmitWork(e.ctx, &dto.SubmitWorkRequest{Actor: freelancer, JobID: job.ID, URL: "https://example.com", Description: "done"})
	require.NoError(t, err)

	const callers = 5
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := e.escrow.ApproveWork(e.ctx, &dto.JobActionRequest{Actor: client, JobID: job.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, services.ErrInvalidState)
	}
	assert.Equal(t, 1, successes)
}

func TestAcceptProposal_RejectsSiblings(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	f1 := e.user(t, "f1", models.RoleFreelancer, true)
	f2 := e.user(t, "f2", models.RoleFreelancer, true)
	job := e.openJob(t, client, 800)
	p1 := e.propose(t, f1, job, 700)
	p2 := e.propose(t, f2, job, 750)

	_, _, err := e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: client, JobID: job.ID, ProposalID: p1.ID})
	require.NoError(t, err)

	sibling, err := e.store.Proposals().GetByID(e.ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusRejected, sibling.Status)

	_, _, err = e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: client, JobID: job.ID, ProposalID: p2.ID})
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestAcceptProposal_Authorization(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "carol", models.RoleClient, true)
	other := e.user(t, "oscar", models.RoleClient, true)
	admin := e.user(t, "root", models.RoleAdmin, true)
	f := e.user(t, "frank", models.RoleFreelancer, true)
	job := e.openJob(t, client, 800)
	p := e.propose(t, f, job, 700)

	_, _, err := e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: other, JobID: job.ID, ProposalID: p.ID})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, _, err = e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: admin, JobID: job.ID, ProposalID: p.ID})
	assert.NoError(t, err)
}
