package memory

import (
	"context"
	"sort"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	"github.com/google/uuid"
)

// --- Users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	defer r.s.lock()()
	d := r.s.st.data
	for _, u := range d.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, storage.ErrDuplicate
		}
	}
	u := *user
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Skills = append([]string{}, user.Skills...)
	u.CreatedAt = r.s.st.tick()
	u.UpdatedAt = u.CreatedAt
	d.users[u.ID] = u
	return &u, nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.st.data.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.Skills = append([]string{}, u.Skills...)
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.st.data.users {
		if strings.EqualFold(u.Email, email) {
			u.Skills = append([]string{}, u.Skills...)
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *userRepo) List(_ context.Context, filter storage.UserFilter) ([]models.User, error) {
	defer r.s.lock()()
	users := []models.User{}
	for _, u := range r.s.st.data.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return page(users, filter.Limit, filter.Offset, 50), nil
}

func (r *userRepo) Update(_ context.Context, user *models.User) (*models.User, error) {
	defer r.s.lock()()
	d := r.s.st.data
	u, ok := d.users[user.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.Name = user.Name
	u.Bio = user.Bio
	u.Skills = append([]string{}, user.Skills...)
	u.UpdatedAt = r.s.st.tick()
	d.users[u.ID] = u
	return &u, nil
}

func (r *userRepo) ToggleVerified(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock()()
	d := r.s.st.data
	u, ok := d.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.Verified = !u.Verified
	u.UpdatedAt = r.s.st.tick()
	d.users[id] = u
	return &u, nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.users[id]; !ok {
		return storage.ErrNotFound
	}
	for _, j := range d.jobs {
		if j.IsFreelancer(id) {
			return storage.ErrConflict
		}
	}
	for jid, j := range d.jobs {
		if j.ClientID == id {
			deleteJobCascade(d, jid)
		}
	}
	for pid, p := range d.proposals {
		if p.FreelancerID == id {
			delete(d.proposals, pid)
		}
	}
	for pid, p := range d.payments {
		if p.ClientID == id || p.FreelancerID == id {
			delete(d.payments, pid)
		}
	}
	for rid, rv := range d.reviews {
		if rv.ReviewerID == id || rv.RevieweeID == id {
			delete(d.reviews, rid)
		}
	}
	kept := d.messages[:0]
	for _, m := range d.messages {
		if m.SenderID != id && m.ReceiverID != id {
			kept = append(kept, m)
		}
	}
	d.messages = kept
	for i, c := range d.contacts {
		if c.UserID != nil && *c.UserID == id {
			d.contacts[i].UserID = nil
		}
	}
	delete(d.users, id)
	return nil
}

func (r *userRepo) CountByRole(_ context.Context) (map[models.UserRole]int, error) {
	defer r.s.lock()()
	counts := map[models.UserRole]int{}
	for _, u := range r.s.st.data.users {
		counts[u.Role]++
	}
	return counts, nil
}

// --- Jobs ---

type jobRepo struct{ s *Store }

func (r *jobRepo) Create(_ context.Context, job *models.Job) (*models.Job, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.users[job.ClientID]; !ok {
		return nil, storage.ErrConflict
	}
	j := copyJob(*job)
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.Version = 1
	j.CreatedAt = r.s.st.tick()
	j.UpdatedAt = j.CreatedAt
	d.jobs[j.ID] = j
	out := copyJob(j)
	return &out, nil
}

func (r *jobRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	defer r.s.lock()()
	j, ok := r.s.st.data.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := copyJob(j)
	return &out, nil
}

// GetByIDForUpdate is GetByID: the transaction already holds the store lock.
func (r *jobRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.GetByID(ctx, id)
}

func matchesJob(j models.Job, f storage.JobFilter) bool {
	if f.Status != nil && j.Status != *f.Status {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.MinBudget != nil && j.Budget < *f.MinBudget {
		return false
	}
	if f.MaxBudget != nil && j.Budget > *f.MaxBudget {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.Title), q) && !strings.Contains(strings.ToLower(j.Description), q) {
			return false
		}
	}
	if f.ParticipantID != nil && j.ClientID != *f.ParticipantID && !j.IsFreelancer(*f.ParticipantID) {
		return false
	}
	return true
}

func (r *jobRepo) List(_ context.Context, filter storage.JobFilter) ([]models.Job, error) {
	defer r.s.lock()()
	jobs := []models.Job{}
	for _, j := range r.s.st.data.jobs {
		if matchesJob(j, filter) {
			jobs = append(jobs, copyJob(j))
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	return page(jobs, filter.Limit, filter.Offset, 20), nil
}

func (r *jobRepo) Update(_ context.Context, job *models.Job) (*models.Job, error) {
	defer r.s.lock()()
	d := r.s.st.data
	cur, ok := d.jobs[job.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if cur.Version != job.Version {
		return nil, storage.ErrConflict
	}
	j := copyJob(*job)
	j.ClientID = cur.ClientID
	j.CreatedAt = cur.CreatedAt
	j.Version = cur.Version + 1
	j.UpdatedAt = r.s.st.tick()
	d.jobs[j.ID] = j
	out := copyJob(j)
	return &out, nil
}

func deleteJobCascade(d *tables, id uuid.UUID) {
	delete(d.jobs, id)
	for pid, p := range d.proposals {
		if p.JobID == id {
			delete(d.proposals, pid)
		}
	}
	for pid, p := range d.payments {
		if p.JobID == id {
			delete(d.payments, pid)
		}
	}
	for rid, rv := range d.reviews {
		if rv.JobID == id {
			delete(d.reviews, rid)
		}
	}
	kept := d.messages[:0]
	for _, m := range d.messages {
		if m.JobID == nil || *m.JobID != id {
			kept = append(kept, m)
		}
	}
	d.messages = kept
}

func (r *jobRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.jobs[id]; !ok {
		return storage.ErrNotFound
	}
	deleteJobCascade(d, id)
	return nil
}

func (r *jobRepo) CountByStatus(_ context.Context) (map[models.JobStatus]int, error) {
	defer r.s.lock()()
	counts := map[models.JobStatus]int{}
	for _, j := range r.s.st.data.jobs {
		counts[j.Status]++
	}
	return counts, nil
}

// --- Proposals ---

type proposalRepo struct{ s *Store }

func (r *proposalRepo) Create(_ context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.jobs[proposal.JobID]; !ok {
		return nil, storage.ErrNotFound
	}
	for _, p := range d.proposals {
		if p.JobID == proposal.JobID && p.FreelancerID == proposal.FreelancerID {
			return nil, storage.ErrDuplicate
		}
	}
	p := *proposal
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.st.tick()
	p.UpdatedAt = p.CreatedAt
	d.proposals[p.ID] = p
	return &p, nil
}

func (r *proposalRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	defer r.s.lock()()
	p, ok := r.s.st.data.proposals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (r *proposalRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	defer r.s.lock()()
	out := []models.Proposal{}
	for _, p := range r.s.st.data.proposals {
		if p.JobID == jobID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *proposalRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.ProposalStatus) (*models.Proposal, error) {
	defer r.s.lock()()
	d := r.s.st.data
	p, ok := d.proposals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = r.s.st.tick()
	d.proposals[id] = p
	return &p, nil
}

func (r *proposalRepo) RejectPendingByJob(_ context.Context, jobID, exceptID uuid.UUID) (int, error) {
	defer r.s.lock()()
	d := r.s.st.data
	n := 0
	for id, p := range d.proposals {
		if p.JobID == jobID && id != exceptID && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusRejected
			p.UpdatedAt = r.s.st.tick()
			d.proposals[id] = p
			n++
		}
	}
	return n, nil
}

// --- Payments ---

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, payment *models.Payment) (*models.Payment, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.jobs[payment.JobID]; !ok {
		return nil, storage.ErrNotFound
	}
	if payment.Status == models.PaymentStatusEscrow {
		for _, p := range d.payments {
			if p.JobID == payment.JobID && p.Status == models.PaymentStatusEscrow {
				return nil, storage.ErrDuplicate
			}
		}
	}
	p := *payment
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.st.tick()
	p.UpdatedAt = p.CreatedAt
	d.payments[p.ID] = p
	return &p, nil
}

func (r *paymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	defer r.s.lock()()
	p, ok := r.s.st.data.payments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepo) GetLatestByJob(_ context.Context, jobID uuid.UUID) (*models.Payment, error) {
	defer r.s.lock()()
	var latest *models.Payment
	for _, p := range r.s.st.data.payments {
		if p.JobID != jobID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			cp := p
			latest = &cp
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (r *paymentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	defer r.s.lock()()
	d := r.s.st.data
	p, ok := d.payments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = r.s.st.tick()
	d.payments[id] = p
	return &p, nil
}

func (r *paymentRepo) List(_ context.Context, filter storage.PaymentFilter) ([]models.Payment, error) {
	defer r.s.lock()()
	out := []models.Payment{}
	for _, p := range r.s.st.data.payments {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset, 50), nil
}

func (r *paymentRepo) Totals(_ context.Context) (*storage.PaymentTotals, error) {
	defer r.s.lock()()
	totals := &storage.PaymentTotals{ByStatus: map[models.PaymentStatus]int{}}
	for _, p := range r.s.st.data.payments {
		totals.ByStatus[p.Status]++
		switch p.Status {
		case models.PaymentStatusEscrow:
			totals.EscrowedTotal += p.Amount
		case models.PaymentStatusReleased:
			totals.ReleasedTotal += p.Amount
		}
	}
	return totals, nil
}

// --- Reviews ---

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(_ context.Context, review *models.Review) (*models.Review, error) {
	defer r.s.lock()()
	d := r.s.st.data
	for _, rv := range d.reviews {
		if rv.JobID == review.JobID && rv.ReviewerID == review.ReviewerID {
			return nil, storage.ErrDuplicate
		}
	}
	rv := *review
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	rv.CreatedAt = r.s.st.tick()
	d.reviews[rv.ID] = rv
	return &rv, nil
}

func (r *reviewRepo) ListByReviewee(_ context.Context, userID uuid.UUID) ([]models.Review, error) {
	defer r.s.lock()()
	out := []models.Review{}
	for _, rv := range r.s.st.data.reviews {
		if rv.RevieweeID == userID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- Messages ---

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.users[msg.SenderID]; !ok {
		return nil, storage.ErrNotFound
	}
	if _, ok := d.users[msg.ReceiverID]; !ok {
		return nil, storage.ErrNotFound
	}
	m := *msg
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JobID != nil {
		id := *m.JobID
		m.JobID = &id
	}
	m.CreatedAt = r.s.st.tick()
	d.messages = append(d.messages, m)
	return &m, nil
}

func (r *messageRepo) ListConversation(_ context.Context, filter storage.ConversationFilter) ([]models.Message, error) {
	defer r.s.lock()()
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	out := []models.Message{}
	for _, m := range r.s.st.data.messages {
		pair := (m.SenderID == filter.UserA && m.ReceiverID == filter.UserB) ||
			(m.SenderID == filter.UserB && m.ReceiverID == filter.UserA)
		if !pair {
			continue
		}
		if filter.JobID == nil && m.JobID != nil {
			continue
		}
		if filter.JobID != nil && (m.JobID == nil || *m.JobID != *filter.JobID) {
			continue
		}
		if filter.Since != nil && !m.CreatedAt.After(*filter.Since) {
			continue
		}
		out = append(out, m)
		if filter.Since != nil && len(out) == limit {
			break
		}
	}
	if filter.Since == nil && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *messageRepo) Inbox(_ context.Context, userID uuid.UUID, limit int) ([]models.Message, error) {
	defer r.s.lock()()
	if limit <= 0 {
		limit = 50
	}
	latest := map[uuid.UUID]models.Message{}
	for _, m := range r.s.st.data.messages {
		var other uuid.UUID
		switch userID {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		// Messages are appended in creation order.
		latest[other] = m
	}
	out := make([]models.Message, 0, len(latest))
	for _, m := range latest {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Contact messages ---

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(_ context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if msg.UserID != nil {
		if _, ok := d.users[*msg.UserID]; !ok {
			return nil, storage.ErrNotFound
		}
	}
	c := copyContact(*msg)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Status = models.ContactStatusPending
	c.Response = nil
	c.RespondedAt = nil
	c.CreatedAt = r.s.st.tick()
	d.contacts = append(d.contacts, c)
	out := copyContact(c)
	return &out, nil
}

func (r *contactRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	defer r.s.lock()()
	for _, c := range r.s.st.data.contacts {
		if c.ID == id {
			out := copyContact(c)
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *contactRepo) List(_ context.Context, filter storage.ContactFilter) ([]models.ContactMessage, error) {
	defer r.s.lock()()
	contacts := r.s.st.data.contacts
	out := []models.ContactMessage{}
	// Newest first; contacts are appended in creation order.
	for i := len(contacts) - 1; i >= 0; i-- {
		c := contacts[i]
		if filter.OwnerID != nil || filter.Email != "" {
			byOwner := filter.OwnerID != nil && c.UserID != nil && *c.UserID == *filter.OwnerID
			byEmail := filter.Email != "" && strings.EqualFold(c.Email, filter.Email)
			if !byOwner && !byEmail {
				continue
			}
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, copyContact(c))
	}
	return page(out, filter.Limit, filter.Offset, 50), nil
}

func (r *contactRepo) Respond(_ context.Context, id uuid.UUID, response string) (*models.ContactMessage, error) {
	defer r.s.lock()()
	d := r.s.st.data
	for i, c := range d.contacts {
		if c.ID != id {
			continue
		}
		if c.Status != models.ContactStatusPending {
			return nil, storage.ErrConflict
		}
		now := r.s.st.tick()
		c.Status = models.ContactStatusResponded
		c.Response = &response
		c.RespondedAt = &now
		d.contacts[i] = c
		out := copyContact(c)
		return &out, nil
	}
	return nil, storage.ErrNotFound
}
