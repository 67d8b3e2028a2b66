package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"
)

// mapRepoError maps storage errors to service errors
func mapRepoError(err error, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return fmt.Errorf("%w: %s (duplicate)", ErrConflict, operation)
	}
	// Service errors raised inside a transaction pass through untouched.
	if Kind(err) != KindInternal {
		return err
	}
	log.Printf("Unexpected repository error during %s: %v", operation, err)
	return fmt.Errorf("internal error during %s: %w", operation, err)
}

// roundCents rounds a currency amount to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// toCents converts a currency amount to whole cents.
func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// sameAmount compares currency amounts to the cent.
func sameAmount(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// startOfDay truncates t to its UTC calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireAdmin(actor models.Actor, operation string) error {
	if !actor.IsAdmin() {
		log.Printf("%s: Forbidden attempt by %s (%s)", operation, actor.ID, actor.Role)
		return fmt.Errorf("%w: %s requires an administrator", ErrForbidden, operation)
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func MapUserToResponse(user *models.User) dto.UserResponse {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Verified:  user.Verified,
		Bio:       user.Bio,
		Skills:    skills,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func MapJobToResponse(job *models.Job) dto.JobResponse {
	resp := dto.JobResponse{
		ID:              job.ID,
		Title:           job.Title,
		Description:     job.Description,
		Budget:          job.Budget,
		Category:        job.Category,
		ExperienceLevel: job.ExperienceLevel,
		Deadline:        dto.NewDate(job.Deadline),
		Status:          string(job.Status),
		ClientID:        job.ClientID,
		FreelancerID:    job.FreelancerID,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
	if job.Submission != nil {
		resp.Submission = &dto.SubmissionPayload{
			URL:         job.Submission.URL,
			Description: job.Submission.Description,
			CreatedAt:   job.Submission.CreatedAt,
		}
	}
	return resp
}

func MapJobsToResponse(jobs []models.Job) []dto.JobResponse {
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, MapJobToResponse(&jobs[i]))
	}
	return out
}

func MapProposalToResponse(p *models.Proposal) dto.ProposalResponse {
	return dto.ProposalResponse{
		ID:           p.ID,
		JobID:        p.JobID,
		FreelancerID: p.FreelancerID,
		CoverLetter:  p.CoverLetter,
		BidAmount:    p.BidAmount,
		DeliveryDays: p.DeliveryDays,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func MapProposalsToResponse(ps []models.Proposal) []dto.ProposalResponse {
	out := make([]dto.ProposalResponse, 0, len(ps))
	for i := range ps {
		out = append(out, MapProposalToResponse(&ps[i]))
	}
	return out
}

func MapPaymentToResponse(p *models.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:           p.ID,
		JobID:        p.JobID,
		ClientID:     p.ClientID,
		FreelancerID: p.FreelancerID,
		Amount:       p.Amount,
		Fee:          p.Fee,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func MapPaymentsToResponse(ps []models.Payment) []dto.PaymentResponse {
	out := make([]dto.PaymentResponse, 0, len(ps))
	for i := range ps {
		out = append(out, MapPaymentToResponse(&ps[i]))
	}
	return out
}

func MapReviewToResponse(r *models.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:         r.ID,
		JobID:      r.JobID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

func MapMessageToResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		JobID:      m.JobID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

func MapMessagesToResponse(ms []models.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(ms))
	for i := range ms {
		out = append(out, MapMessageToResponse(&ms[i]))
	}
	return out
}

func MapContactToResponse(c *models.ContactMessage) dto.ContactResponse {
	return dto.ContactResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Email:       c.Email,
		Message:     c.Message,
		Status:      c.Status,
		Response:    c.Response,
		RespondedAt: c.RespondedAt,
		CreatedAt:   c.CreatedAt,
	}
}

func MapContactsToResponse(cs []models.ContactMessage) []dto.ContactResponse {
	out := make([]dto.ContactResponse, 0, len(cs))
	for i := range cs {
		out = append(out, MapContactToResponse(&cs[i]))
	}
	return out
}
