package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// scanEnum reads a string or []byte database value.
func scanEnum(name string, value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to scan %s: value is not string or []byte", name)
	}
}

// --- User Role Enum ---
type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleFreelancer UserRole = "freelancer"
	RoleAdmin      UserRole = "admin"
)

// Scan implements the sql.Scanner interface for UserRole
func (r *UserRole) Scan(value interface{}) error {
	strVal, err := scanEnum("UserRole", value)
	if err != nil {
		return err
	}
	v := UserRole(strVal)
	switch v {
	case RoleClient, RoleFreelancer, RoleAdmin:
		*r = v
		return nil
	default:
		return fmt.Errorf("invalid UserRole value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for UserRole
func (r UserRole) Value() (driver.Value, error) {
	return string(r), nil
}

// --- Job Status Enum ---
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value interface{}) error {
	strVal, err := scanEnum("JobStatus", value)
	if err != nil {
		return err
	}
	v := JobStatus(strVal)
	switch v {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		*s = v
		return nil
	default:
		return fmt.Errorf("invalid JobStatus value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// HasFreelancer reports whether a job in this status must have a hired freelancer.
func (s JobStatus) HasFreelancer() bool {
	return s == JobStatusInProgress || s == JobStatusCompleted
}

// --- Proposal Status Enum ---
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// Scan implements the sql.Scanner interface for ProposalStatus
func (s *ProposalStatus) Scan(value interface{}) error {
	strVal, err := scanEnum("ProposalStatus", value)
	if err != nil {
		return err
	}
	v := ProposalStatus(strVal)
	switch v {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected:
		*s = v
		return nil
	default:
		return fmt.Errorf("invalid ProposalStatus value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for ProposalStatus
func (s ProposalStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// --- Payment Status Enum ---
type PaymentStatus string

const (
	PaymentStatusEscrow    PaymentStatus = "escrow"    // Held by the gateway pending approval
	PaymentStatusReleased  PaymentStatus = "released"  // Paid out to the freelancer, terminal
	PaymentStatusCancelled PaymentStatus = "cancelled" // Refunded by administrative override
)

// Scan implements the sql.Scanner interface for PaymentStatus
func (s *PaymentStatus) Scan(value interface{}) error {
	strVal, err := scanEnum("PaymentStatus", value)
	if err != nil {
		return err
	}
	v := PaymentStatus(strVal)
	switch v {
	case PaymentStatusEscrow, PaymentStatusReleased, PaymentStatusCancelled:
		*s = v
		return nil
	default:
		return fmt.Errorf("invalid PaymentStatus value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for PaymentStatus
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// CanTransitionTo reports whether the payment may move from s to next.
// Only escrow→released and escrow→cancelled exist.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentStatusEscrow && (next == PaymentStatusReleased || next == PaymentStatusCancelled)
}

// --- Contact Status Enum ---
type ContactStatus string

const (
	ContactStatusPending   ContactStatus = "pending"
	ContactStatusResponded ContactStatus = "responded"
)

// Scan implements the sql.Scanner interface for ContactStatus
func (s *ContactStatus) Scan(value interface{}) error {
	strVal, err := scanEnum("ContactStatus", value)
	if err != nil {
		return err
	}
	v := ContactStatus(strVal)
	switch v {
	case ContactStatusPending, ContactStatusResponded:
		*s = v
		return nil
	default:
		return fmt.Errorf("invalid ContactStatus value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for ContactStatus
func (s ContactStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Actor is the authenticated caller of an operation, as resolved by the identity layer.
type Actor struct {
	ID       uuid.UUID
	Role     UserRole
	Verified bool
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// User represents an account on the marketplace.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	Verified     bool      `json:"verified" db:"verified"`
	Bio          string    `json:"bio" db:"bio"`
	Skills       []string  `json:"skills" db:"skills"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Actor returns the identity view of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Verified: u.Verified}
}

// Submission is the freelancer's declared deliverable for a job.
type Submission struct {
	URL         string    `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Job represents a posting owned by a client.
type Job struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description" db:"description"`
	Budget          float64     `json:"budget" db:"budget"`
	Category        string      `json:"category" db:"category"`
	ExperienceLevel string      `json:"experience_level" db:"experience_level"`
	Deadline        time.Time   `json:"deadline" db:"deadline"`
	Status          JobStatus   `json:"status" db:"status"`
	ClientID        uuid.UUID   `json:"client_id" db:"client_id"`
	FreelancerID    *uuid.UUID  `json:"freelancer_id,omitempty" db:"freelancer_id"` // Set on acceptance
	Submission      *Submission `json:"submission,omitempty" db:"-"`
	Version         int         `json:"-" db:"version"` // Optimistic concurrency counter
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// IsClient reports whether id owns the job.
func (j *Job) IsClient(id uuid.UUID) bool { return j.ClientID == id }

// IsFreelancer reports whether id is the hired freelancer.
func (j *Job) IsFreelancer(id uuid.UUID) bool {
	return j.FreelancerID != nil && *j.FreelancerID == id
}

// Proposal is a freelancer's bid against an open job.
type Proposal struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	JobID        uuid.UUID      `json:"job_id" db:"job_id"`
	FreelancerID uuid.UUID      `json:"freelancer_id" db:"freelancer_id"`
	CoverLetter  string         `json:"cover_letter" db:"cover_letter"`
	BidAmount    float64        `json:"bid_amount" db:"bid_amount"`
	DeliveryDays int            `json:"delivery_days" db:"delivery_days"`
	Status       ProposalStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Payment tracks the escrow status reported by the payment gateway.
type Payment struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	JobID        uuid.UUID     `json:"job_id" db:"job_id"`
	ClientID     uuid.UUID     `json:"client_id" db:"client_id"`
	FreelancerID uuid.UUID     `json:"freelancer_id" db:"freelancer_id"`
	Amount       float64       `json:"amount" db:"amount"`
	Fee          float64       `json:"fee" db:"fee"`
	Status       PaymentStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Review is an immutable rating left after a job completes.
type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	JobID      uuid.UUID `json:"job_id" db:"job_id"`
	ReviewerID uuid.UUID `json:"reviewer_id" db:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id" db:"reviewee_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Message is an opaque chat entry, either attached to a job or direct.
type Message struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	JobID      *uuid.UUID `json:"job_id,omitempty" db:"job_id"`
	SenderID   uuid.UUID  `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id" db:"receiver_id"`
	Content    string     `json:"content" db:"content"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// ContactMessage is a support request sent through the public contact form.
// UserID is set when the sender was signed in.
type ContactMessage struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	UserID      *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	Name        string        `json:"name" db:"name"`
	Email       string        `json:"email" db:"email"`
	Message     string        `json:"message" db:"message"`
	Status      ContactStatus `json:"status" db:"status"`
	Response    *string       `json:"response,omitempty" db:"response"`
	RespondedAt *time.Time    `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// Stats summarises marketplace activity for the admin console.
type Stats struct {
	UsersByRole      map[UserRole]int      `json:"users_by_role"`
	JobsByStatus     map[JobStatus]int     `json:"jobs_by_status"`
	PaymentsByStatus map[PaymentStatus]int `json:"payments_by_status"`
	EscrowedTotal    float64               `json:"escrowed_total"`
	ReleasedTotal    float64               `json:"released_total"`
	Commission       float64               `json:"commission"`
}
