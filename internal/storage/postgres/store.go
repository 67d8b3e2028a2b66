package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"freelance-marketplace/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builds Postgres-flavoured ($1, $2, ...) statements.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store implements storage.Store on a pgx pool or an open transaction.
type Store struct {
	pool *pgxpool.Pool
	db   Querier
	inTx bool
}

// NewStore creates a Store backed by the connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Users() storage.UserRepository         { return &UserRepo{db: s.db} }
func (s *Store) Jobs() storage.JobRepository           { return &JobRepo{db: s.db} }
func (s *Store) Proposals() storage.ProposalRepository { return &ProposalRepo{db: s.db} }
func (s *Store) Payments() storage.PaymentRepository   { return &PaymentRepo{db: s.db} }
func (s *Store) Reviews() storage.ReviewRepository     { return &ReviewRepo{db: s.db} }
func (s *Store) Messages() storage.MessageRepository   { return &MessageRepo{db: s.db} }
func (s *Store) Contacts() storage.ContactRepository   { return &ContactRepo{db: s.db} }

// InTx runs fn inside a transaction. Nested calls reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	// --- Transaction Start ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		log.Printf("Store.InTx: Error beginning transaction: %v", err)
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op after a successful commit

	if err := fn(&Store{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	// --- Commit Transaction ---
	if err := tx.Commit(ctx); err != nil {
		log.Printf("Store.InTx: Error committing transaction: %v", err)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "40001" { // serialization_failure
			return fmt.Errorf("commit transaction: %w", storage.ErrConflict)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports a unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports a foreign_key_violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// applyPage adds LIMIT/OFFSET with the given default limit.
func applyPage(b sq.SelectBuilder, limit, offset, defaultLimit int) sq.SelectBuilder {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return b.Limit(uint64(limit)).Offset(uint64(offset))
}
