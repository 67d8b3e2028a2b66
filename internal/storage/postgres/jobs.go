// internal/storage/postgres/jobs.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobRepo implements the storage.JobRepository interface using PostgreSQL.
type JobRepo struct {
	db Querier
}

// Compile-time check to ensure JobRepo implements JobRepository
var _ storage.JobRepository = (*JobRepo)(nil)

var jobColumns = []string{
	"id", "title", "description", "budget", "category", "experience_level", "deadline", "status",
	"client_id", "freelancer_id", "submission_url", "submission_description", "submitted_at",
	"version", "created_at", "updated_at",
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		job         models.Job
		subURL      *string
		subDesc     *string
		submittedAt *time.Time
	)
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Budget,
		&job.Category,
		&job.ExperienceLevel,
		&job.Deadline,
		&job.Status,
		&job.ClientID,
		&job.FreelancerID, // Will scan as NULL if not set
		&subURL,
		&subDesc,
		&submittedAt,
		&job.Version,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if subURL != nil && submittedAt != nil {
		job.Submission = &models.Submission{URL: *subURL, CreatedAt: *submittedAt}
		if subDesc != nil {
			job.Submission.Description = *subDesc
		}
	}
	return &job, nil
}

// submissionArgs flattens an optional submission into nullable column values.
func submissionArgs(s *models.Submission) (url, desc *string, at *time.Time) {
	if s == nil {
		return nil, nil, nil
	}
	return &s.URL, &s.Description, &s.CreatedAt
}

// Create saves a new job posting.
func (r *JobRepo) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New() // Generate ID server-side
	}
	subURL, subDesc, subAt := submissionArgs(job.Submission)
	query, args, err := psql.Insert("jobs").
		Columns(jobColumns...).
		Values(job.ID, job.Title, job.Description, job.Budget, job.Category, job.ExperienceLevel, job.Deadline, job.Status,
			job.ClientID, job.FreelancerID, subURL, subDesc, subAt, 1, sqNow, sqNow).
		Suffix("RETURNING " + joinColumns(jobColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build job insert: %w", err)
	}

	created, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Printf("Error creating job: Foreign key violation (client_id: %s): %v\n", job.ClientID, err)
			return nil, fmt.Errorf("failed to create job: invalid client ID: %w", storage.ErrConflict)
		}
		log.Printf("Error creating job: %v\n", err)
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Printf("Job created successfully with ID: %s", created.ID)
	return created, nil
}

func (r *JobRepo) getOne(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Job, error) {
	b := psql.Select(jobColumns...).From("jobs").Where("id = ?", id)
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build job query: %w", err)
	}

	job, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Job not found with ID: %s\n", id)
			return nil, storage.ErrNotFound
		}
		log.Printf("Error scanning job by ID %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get job by ID %s: %w", id, err)
	}
	return job, nil
}

// GetByID retrieves a specific job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.getOne(ctx, id, false)
}

// GetByIDForUpdate retrieves a job and locks its row until the transaction ends.
func (r *JobRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.getOne(ctx, id, true)
}

// buildJobListQuery constructs the listing query for the given filter.
func buildJobListQuery(filter storage.JobFilter) (string, []interface{}, error) {
	b := psql.Select(jobColumns...).From("jobs").OrderBy("created_at DESC")

	if filter.Status != nil {
		b = b.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.Category != "" {
		b = b.Where(sq.Eq{"category": filter.Category})
	}
	if filter.ExperienceLevel != "" {
		b = b.Where(sq.Eq{"experience_level": filter.ExperienceLevel})
	}
	if filter.MinBudget != nil {
		b = b.Where(sq.GtOrEq{"budget": *filter.MinBudget})
	}
	if filter.MaxBudget != nil {
		b = b.Where(sq.LtOrEq{"budget": *filter.MaxBudget})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		b = b.Where(sq.Or{sq.ILike{"title": pattern}, sq.ILike{"description": pattern}})
	}
	if filter.ParticipantID != nil {
		b = b.Where(sq.Or{sq.Eq{"client_id": *filter.ParticipantID}, sq.Eq{"freelancer_id": *filter.ParticipantID}})
	}

	return applyPage(b, filter.Limit, filter.Offset, 20).ToSql()
}

// List retrieves jobs matching the filter, newest first.
func (r *JobRepo) List(ctx context.Context, filter storage.JobFilter) ([]models.Job, error) {
	query, args, err := buildJobListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build job list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying jobs: %v\n", err)
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{} // Return empty slice, not nil
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Printf("Error scanning jobs: %v\n", err)
			return nil, fmt.Errorf("failed to scan jobs: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Update writes every mutable column of the job, guarded by its version.
func (r *JobRepo) Update(ctx context.Context, job *models.Job) (*models.Job, error) {
	subURL, subDesc, subAt := submissionArgs(job.Submission)
	query, args, err := psql.Update("jobs").
		Set("title", job.Title).
		Set("description", job.Description).
		Set("budget", job.Budget).
		Set("category", job.Category).
		Set("experience_level", job.ExperienceLevel).
		Set("deadline", job.Deadline).
		Set("status", job.Status).
		Set("freelancer_id", job.FreelancerID).
		Set("submission_url", subURL).
		Set("submission_description", subDesc).
		Set("submitted_at", subAt).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sqNow).
		Where(sq.Eq{"id": job.ID, "version": job.Version}).
		Suffix("RETURNING " + joinColumns(jobColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build job update: %w", err)
	}

	updated, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the job is gone or another writer bumped the version.
			var exists bool
			if existsErr := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, job.ID).Scan(&exists); existsErr == nil && exists {
				log.Printf("Job %s update lost a concurrent modification (version %d)", job.ID, job.Version)
				return nil, storage.ErrConflict
			}
			return nil, storage.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			log.Printf("Error updating job %s: Foreign key violation: %v\n", job.ID, err)
			return nil, fmt.Errorf("failed to update job: invalid reference: %w", storage.ErrConflict)
		}
		log.Printf("Error updating job %s: %v\n", job.ID, err)
		return nil, fmt.Errorf("failed to update job %s: %w", job.ID, err)
	}

	log.Printf("Job updated successfully: %s (status %s)", updated.ID, updated.Status)
	return updated, nil
}

// Delete removes a job by its ID. Proposals, payments and messages cascade.
func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		log.Printf("Error deleting job %s: %v\n", id, err)
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Printf("Job not found for deletion with ID: %s\n", id)
		return storage.ErrNotFound
	}

	log.Printf("Job deleted successfully: %s", id)
	return nil
}

// CountByStatus returns the number of jobs per status.
func (r *JobRepo) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := map[models.JobStatus]int{}
	for rows.Next() {
		var status models.JobStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
