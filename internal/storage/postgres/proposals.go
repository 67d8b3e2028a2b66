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

// ProposalRepo implements the storage.ProposalRepository interface using PostgreSQL.
type ProposalRepo struct {
	db Querier
}

var _ storage.ProposalRepository = (*ProposalRepo)(nil)

var proposalColumns = []string{"id", "job_id", "freelancer_id", "cover_letter", "bid_amount", "delivery_days", "status", "created_at", "updated_at"}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	if err := row.Scan(&p.ID, &p.JobID, &p.FreelancerID, &p.CoverLetter, &p.BidAmount, &p.DeliveryDays, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create saves a new proposal. A second bid by the same freelancer yields storage.ErrDuplicate.
func (r *ProposalRepo) Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	query, args, err := psql.Insert("proposals").
		Columns(proposalColumns...).
		Values(proposal.ID, proposal.JobID, proposal.FreelancerID, proposal.CoverLetter, proposal.BidAmount,
			proposal.DeliveryDays, proposal.Status, sqNow, sqNow).
		Suffix("RETURNING " + joinColumns(proposalColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build proposal insert: %w", err)
	}

	created, err := scanProposal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create proposal: already submitted: %w", storage.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("failed to create proposal: invalid job or freelancer: %w", storage.ErrNotFound)
		}
		log.Printf("Error creating proposal: %v\n", err)
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	log.Printf("Proposal created successfully with ID: %s", created.ID)
	return created, nil
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	query, args, err := psql.Select(proposalColumns...).From("proposals").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build proposal query: %w", err)
	}
	p, err := scanProposal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Proposal not found with ID: %s\n", id)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error retrieving proposal by ID %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get proposal by ID %s: %w", id, err)
	}
	return p, nil
}

// ListByJob returns the proposals of a job in submission order.
func (r *ProposalRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	query, args, err := psql.Select(proposalColumns...).From("proposals").
		Where("job_id = ?", jobID).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build proposal list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying proposals for job %s: %v\n", jobID, err)
		return nil, fmt.Errorf("failed to list proposals by job: %w", err)
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

func (r *ProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) (*models.Proposal, error) {
	query, args, err := psql.Update("proposals").
		Set("status", status).
		Set("updated_at", sqNow).
		Where("id = ?", id).
		Suffix("RETURNING " + joinColumns(proposalColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build proposal update: %w", err)
	}
	p, err := scanProposal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error updating proposal %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to update proposal %s: %w", id, err)
	}
	return p, nil
}

func (r *ProposalRepo) RejectPendingByJob(ctx context.Context, jobID, exceptID uuid.UUID) (int, error) {
	query, args, err := psql.Update("proposals").
		Set("status", models.ProposalStatusRejected).
		Set("updated_at", sqNow).
		Where(sq.Eq{"job_id": jobID, "status": models.ProposalStatusPending}).
		Where(sq.NotEq{"id": exceptID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build proposal rejection: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		log.Printf("Error rejecting pending proposals for job %s: %v\n", jobID, err)
		return 0, fmt.Errorf("failed to reject pending proposals: %w", err)
	}
	return int(cmdTag.RowsAffected()), nil
}
