// Package memory is an in-process storage.Store. Every operation runs under one
// lock, so transactions are serializable; a failed transaction restores the
// snapshot taken when it began.
package memory

import (
	"context"
	"sync"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	"github.com/google/uuid"
)

type tables struct {
	users     map[uuid.UUID]models.User
	jobs      map[uuid.UUID]models.Job
	proposals map[uuid.UUID]models.Proposal
	payments  map[uuid.UUID]models.Payment
	reviews   map[uuid.UUID]models.Review
	messages  []models.Message
	contacts  []models.ContactMessage
}

func newTables() *tables {
	return &tables{
		users:     map[uuid.UUID]models.User{},
		jobs:      map[uuid.UUID]models.Job{},
		proposals: map[uuid.UUID]models.Proposal{},
		payments:  map[uuid.UUID]models.Payment{},
		reviews:   map[uuid.UUID]models.Review{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		v.Skills = append([]string(nil), v.Skills...)
		c.users[k] = v
	}
	for k, v := range t.jobs {
		c.jobs[k] = copyJob(v)
	}
	for k, v := range t.proposals {
		c.proposals[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.reviews {
		c.reviews[k] = v
	}
	c.messages = append([]models.Message(nil), t.messages...)
	c.contacts = make([]models.ContactMessage, len(t.contacts))
	for i, m := range t.contacts {
		c.contacts[i] = copyContact(m)
	}
	return c
}

type state struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time
	last time.Time
}

// tick returns a strictly increasing timestamp so creation order is total.
func (st *state) tick() time.Time {
	t := st.now().UTC()
	if !t.After(st.last) {
		t = st.last.Add(time.Microsecond)
	}
	st.last = t
	return t
}

// Store implements storage.Store in memory.
type Store struct {
	st   *state
	inTx bool
}

var _ storage.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: &state{data: newTables(), now: time.Now}}
}

// WithClock replaces the time source, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.st.now = now
	return s
}

// lock serializes access unless the caller already holds the transaction lock.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.st.mu.Lock()
	return s.st.mu.Unlock
}

func (s *Store) Users() storage.UserRepository         { return &userRepo{s} }
func (s *Store) Jobs() storage.JobRepository           { return &jobRepo{s} }
func (s *Store) Proposals() storage.ProposalRepository { return &proposalRepo{s} }
func (s *Store) Payments() storage.PaymentRepository   { return &paymentRepo{s} }
func (s *Store) Reviews() storage.ReviewRepository     { return &reviewRepo{s} }
func (s *Store) Messages() storage.MessageRepository   { return &messageRepo{s} }
func (s *Store) Contacts() storage.ContactRepository   { return &contactRepo{s} }

// InTx runs fn with exclusive access. Nested calls reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	snapshot := s.st.data.clone()
	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.data = snapshot
		return err
	}
	return nil
}

func copyJob(j models.Job) models.Job {
	if j.FreelancerID != nil {
		id := *j.FreelancerID
		j.FreelancerID = &id
	}
	if j.Submission != nil {
		sub := *j.Submission
		j.Submission = &sub
	}
	return j
}

func copyContact(c models.ContactMessage) models.ContactMessage {
	if c.UserID != nil {
		id := *c.UserID
		c.UserID = &id
	}
	if c.Response != nil {
		r := *c.Response
		c.Response = &r
	}
	if c.RespondedAt != nil {
		t := *c.RespondedAt
		c.RespondedAt = &t
	}
	return c
}

func page[T any](items []T, limit, offset, defaultLimit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
