package postgres

import (
	"context"
	"fmt"
	"log"
	"slices"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MessageRepo implements the storage.MessageRepository interface using PostgreSQL.
type MessageRepo struct {
	db Querier
}

var _ storage.MessageRepository = (*MessageRepo)(nil)

var messageColumns = []string{"id", "job_id", "sender_id", "receiver_id", "content", "created_at"}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(&m.ID, &m.JobID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()
	msgs := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	query, args, err := psql.Insert("messages").
		Columns(messageColumns...).
		Values(msg.ID, msg.JobID, msg.SenderID, msg.ReceiverID, msg.Content, sqNow).
		Suffix("RETURNING " + joinColumns(messageColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build message insert: %w", err)
	}
	created, err := scanMessage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("failed to store message: unknown job or user: %w", storage.ErrNotFound)
		}
		log.Printf("Error storing message: %v\n", err)
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return created, nil
}

// buildConversationQuery selects the messages between two users. With Since it reads
// forward from the cursor, oldest first; without it the newest page is selected newest
// first and ListConversation restores chronological order.
func buildConversationQuery(filter storage.ConversationFilter) (string, []interface{}, error) {
	b := psql.Select(messageColumns...).From("messages").
		Where(sq.Or{
			sq.Eq{"sender_id": filter.UserA, "receiver_id": filter.UserB},
			sq.Eq{"sender_id": filter.UserB, "receiver_id": filter.UserA},
		})
	if filter.Since != nil {
		b = b.OrderBy("created_at ASC", "id ASC")
	} else {
		b = b.OrderBy("created_at DESC", "id DESC")
	}
	if filter.JobID != nil {
		b = b.Where(sq.Eq{"job_id": *filter.JobID})
	} else {
		b = b.Where(sq.Eq{"job_id": nil})
	}
	if filter.Since != nil {
		b = b.Where(sq.Gt{"created_at": *filter.Since})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	return b.Limit(uint64(limit)).ToSql()
}

func (r *MessageRepo) ListConversation(ctx context.Context, filter storage.ConversationFilter) ([]models.Message, error) {
	query, args, err := buildConversationQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build conversation query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying conversation %s/%s: %v\n", filter.UserA, filter.UserB, err)
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	messages, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	if filter.Since == nil {
		slices.Reverse(messages)
	}
	return messages, nil
}

func (r *MessageRepo) Inbox(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	// Latest message per counterpart, newest conversations first.
	query := `
		SELECT ` + joinColumns(messageColumns) + ` FROM (
			SELECT DISTINCT ON (CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END) ` + joinColumns(messageColumns) + `
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
			ORDER BY CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END, created_at DESC
		) latest
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		log.Printf("Error querying inbox for %s: %v\n", userID, err)
		return nil, fmt.Errorf("failed to query inbox: %w", err)
	}
	return collectMessages(rows)
}
