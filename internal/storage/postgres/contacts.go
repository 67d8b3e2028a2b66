package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContactRepo implements the storage.ContactRepository interface using PostgreSQL.
type ContactRepo struct {
	db Querier
}

var _ storage.ContactRepository = (*ContactRepo)(nil)

var contactColumns = []string{"id", "user_id", "name", "email", "message", "status", "response", "responded_at", "created_at"}

func scanContact(row pgx.Row) (*models.ContactMessage, error) {
	var c models.ContactMessage
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Message, &c.Status, &c.Response, &c.RespondedAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	query, args, err := psql.Insert("contact_messages").
		Columns("id", "user_id", "name", "email", "message", "status", "created_at").
		Values(msg.ID, msg.UserID, msg.Name, msg.Email, msg.Message, models.ContactStatusPending, sqNow).
		Suffix("RETURNING " + joinColumns(contactColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact insert: %w", err)
	}
	created, err := scanContact(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("failed to store contact message: unknown user: %w", storage.ErrNotFound)
		}
		log.Printf("Error storing contact message from %s: %v\n", msg.Email, err)
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	return created, nil
}

func (r *ContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	query, args, err := psql.Select(contactColumns...).From("contact_messages").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact query: %w", err)
	}
	c, err := scanContact(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error retrieving contact message %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get contact message %s: %w", id, err)
	}
	return c, nil
}

func buildContactListQuery(filter storage.ContactFilter) (string, []interface{}, error) {
	b := psql.Select(contactColumns...).From("contact_messages").OrderBy("created_at DESC", "id DESC")
	owner := sq.Or{}
	if filter.OwnerID != nil {
		owner = append(owner, sq.Eq{"user_id": *filter.OwnerID})
	}
	if filter.Email != "" {
		owner = append(owner, sq.Expr("lower(email) = ?", strings.ToLower(filter.Email)))
	}
	if len(owner) > 0 {
		b = b.Where(owner)
	}
	if filter.Status != nil {
		b = b.Where(sq.Eq{"status": *filter.Status})
	}
	return applyPage(b, filter.Limit, filter.Offset, 50).ToSql()
}

func (r *ContactRepo) List(ctx context.Context, filter storage.ContactFilter) ([]models.ContactMessage, error) {
	query, args, err := buildContactListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build contact list query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying contact messages: %v\n", err)
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	contacts := []models.ContactMessage{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// Respond answers a pending message. The status guard in the WHERE clause makes
// a second concurrent response miss the row.
func (r *ContactRepo) Respond(ctx context.Context, id uuid.UUID, response string) (*models.ContactMessage, error) {
	query, args, err := psql.Update("contact_messages").
		Set("status", models.ContactStatusResponded).
		Set("response", response).
		Set("responded_at", sqNow).
		Where(sq.Eq{"id": id, "status": models.ContactStatusPending}).
		Suffix("RETURNING " + joinColumns(contactColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact update: %w", err)
	}
	c, err := scanContact(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		log.Printf("Contact message %s answered", c.ID)
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("Error answering contact message %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to answer contact message %s: %w", id, err)
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("contact message %s already answered: %w", id, storage.ErrConflict)
}
