package services_test

import (
	"context"
	"testing"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/storage/memory"
	"freelance-marketplace/internal/transport/dto"

	"github.com/stretchr/testify/require"
)

// fixedNow is the clock every service test runs on.
var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type env struct {
	ctx       context.Context
	store     *memory.Store
	rules     services.Rules
	jobs      services.JobService
	proposals services.ProposalService
	escrow    services.EscrowService
	reviews   services.ReviewService
	contacts  services.ContactService
	admin     services.AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore().WithClock(func() time.Time { return fixedNow })
	rules := services.Rules{FeePercent: 3, RepostDays: 7, Now: func() time.Time { return fixedNow }}
	return &env{
		ctx:       context.Background(),
		store:     store,
		rules:     rules,
		jobs:      services.NewJobService(store, rules),
		proposals: services.NewProposalService(store),
		escrow:    services.NewEscrowService(store, rules),
		reviews:   services.NewReviewService(store),
		contacts:  services.NewContactService(store),
		admin:     services.NewAdminService(store, rules),
	}
}

func (e *env) user(t *testing.T, name string, role models.UserRole, verified bool) models.Actor {
	t.Helper()
	u, err := e.store.Users().Create(e.ctx, &models.User{
		Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role, Verified: verified,
	})
	require.NoError(t, err)
	return u.Actor()
}

func (e *env) openJob(t *testing.T, client models.Actor, budget float64) *models.Job {
	t.Helper()
	job, err := e.jobs.CreateJob(e.ctx, &dto.CreateJobRequest{
		Actor:       client,
		Title:       "Build a landing page",
		Description: "Responsive landing page with contact form",
		Budget:      budget,
		Category:    "Web",
		Deadline:    dto.NewDate(fixedNow.AddDate(0, 0, 14)),
	})
	require.NoError(t, err)
	return job
}

func (e *env) propose(t *testing.T, freelancer models.Actor, job *models.Job, bid float64) *models.Proposal {
	t.Helper()
	p, err := e.proposals.SubmitProposal(e.ctx, &dto.SubmitProposalRequest{
		Actor: freelancer, JobID: job.ID, CoverLetter: "I can do this", BidAmount: bid, DeliveryDays: 5,
	})
	require.NoError(t, err)
	return p
}

// hired returns a job in progress with freelancer f hired.
func (e *env) hired(t *testing.T, client, f models.Actor, budget float64) *models.Job {
	t.Helper()
	job := e.openJob(t, client, budget)
	p := e.propose(t, f, job, budget)
	updated, _, err := e.proposals.AcceptProposal(e.ctx, &dto.ProposalDecisionRequest{Actor: client, JobID: job.ID, ProposalID: p.ID})
	require.NoError(t, err)
	return updated
}

// requireFreelancerInvariant checks freelancer set iff status is in-progress or completed.
func (e *env) requireFreelancerInvariant(t *testing.T) {
	t.Helper()
	jobs, err := e.store.Jobs().List(e.ctx, storage.JobFilter{Limit: 1000})
	require.NoError(t, err)
	for _, j := range jobs {
		require.Equal(t, j.Status.HasFreelancer(), j.FreelancerID != nil, "job %s in status %s", j.ID, j.Status)
	}
}
