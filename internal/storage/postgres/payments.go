package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements the storage.PaymentRepository interface using PostgreSQL.
type PaymentRepo struct {
	db Querier
}

var _ storage.PaymentRepository = (*PaymentRepo)(nil)

var paymentColumns = []string{"id", "job_id", "client_id", "freelancer_id", "amount", "fee", "status", "created_at", "updated_at"}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(&p.ID, &p.JobID, &p.ClientID, &p.FreelancerID, &p.Amount, &p.Fee, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create records a payment. The partial unique index on (job_id) WHERE status = 'escrow'
// turns a second concurrent escrow into storage.ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	query, args, err := psql.Insert("payments").
		Columns(paymentColumns...).
		Values(payment.ID, payment.JobID, payment.ClientID, payment.FreelancerID, payment.Amount, payment.Fee, payment.Status, sqNow, sqNow).
		Suffix("RETURNING " + joinColumns(paymentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment insert: %w", err)
	}
	created, err := scanPayment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create payment: job already escrowed: %w", storage.ErrDuplicate)
		}
		log.Printf("Error creating payment for job %s: %v\n", payment.JobID, err)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	log.Printf("Payment created successfully with ID: %s (job %s, status %s)", created.ID, created.JobID, created.Status)
	return created, nil
}

func (r *PaymentRepo) getOne(ctx context.Context, b sq.SelectBuilder, what string) (*models.Payment, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment query: %w", err)
	}
	p, err := scanPayment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error retrieving payment %s: %v\n", what, err)
		return nil, fmt.Errorf("failed to get payment %s: %w", what, err)
	}
	return p, nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.getOne(ctx, psql.Select(paymentColumns...).From("payments").Where("id = ?", id), id.String())
}

func (r *PaymentRepo) GetLatestByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	b := psql.Select(paymentColumns...).From("payments").
		Where("job_id = ?", jobID).
		OrderBy("created_at DESC").
		Limit(1)
	return r.getOne(ctx, b, "for job "+jobID.String())
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	query, args, err := psql.Update("payments").
		Set("status", status).
		Set("updated_at", sqNow).
		Where("id = ?", id).
		Suffix("RETURNING " + joinColumns(paymentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment update: %w", err)
	}
	p, err := scanPayment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error updating payment %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	log.Printf("Payment %s moved to %s", p.ID, p.Status)
	return p, nil
}

func (r *PaymentRepo) List(ctx context.Context, filter storage.PaymentFilter) ([]models.Payment, error) {
	b := psql.Select(paymentColumns...).From("payments").OrderBy("created_at DESC")
	if filter.Status != nil {
		b = b.Where(sq.Eq{"status": *filter.Status})
	}
	query, args, err := applyPage(b, filter.Limit, filter.Offset, 50).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying payments: %v\n", err)
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepo) Totals(ctx context.Context) (*storage.PaymentTotals, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM payments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	defer rows.Close()

	totals := &storage.PaymentTotals{ByStatus: map[models.PaymentStatus]int{}}
	for rows.Next() {
		var (
			status models.PaymentStatus
			n      int
			sum    float64
		)
		if err := rows.Scan(&status, &n, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan payment totals: %w", err)
		}
		totals.ByStatus[status] = n
		switch status {
		case models.PaymentStatusEscrow:
			totals.EscrowedTotal = sum
		case models.PaymentStatusReleased:
			totals.ReleasedTotal = sum
		}
	}
	return totals, rows.Err()
}
