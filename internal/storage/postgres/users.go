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

// UserRepo implements the storage.UserRepository interface using PostgreSQL.
type UserRepo struct {
	db Querier
}

// Compile-time check to ensure UserRepo implements UserRepository
var _ storage.UserRepository = (*UserRepo)(nil)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "verified", "bio", "skills", "created_at", "updated_at"}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Verified, &u.Bio, &u.Skills, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	return &u, nil
}

// Create saves a new user. A taken email yields storage.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}
	query, args, err := psql.Insert("users").
		Columns("id", "name", "email", "password_hash", "role", "verified", "bio", "skills", "created_at", "updated_at").
		Values(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Verified, user.Bio, user.Skills, sqNow, sqNow).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user insert: %w", err)
	}

	created, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("Error creating user: duplicate email %s", user.Email)
			return nil, fmt.Errorf("failed to create user: email already registered: %w", storage.ErrDuplicate)
		}
		log.Printf("Error creating user: %v\n", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error scanning user by ID %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, including the password hash.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where("lower(email) = lower(?)", email).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error scanning user by email %s: %v\n", email, err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// List returns users, newest first.
func (r *UserRepo) List(ctx context.Context, filter storage.UserFilter) ([]models.User, error) {
	b := psql.Select(userColumns...).From("users").OrderBy("created_at DESC")
	if filter.Role != nil {
		b = b.Where("role = ?", *filter.Role)
	}
	query, args, err := applyPage(b, filter.Limit, filter.Offset, 50).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying users: %v\n", err)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update writes the mutable profile fields. The verification flag is only changed by ToggleVerified.
func (r *UserRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query, args, err := psql.Update("users").
		Set("name", user.Name).
		Set("bio", user.Bio).
		Set("skills", user.Skills).
		Set("updated_at", sqNow).
		Where("id = ?", user.ID).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user update: %w", err)
	}
	updated, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error updating user %s: %v\n", user.ID, err)
		return nil, fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return updated, nil
}

// ToggleVerified flips the verification flag in a single statement.
func (r *UserRepo) ToggleVerified(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query, args, err := psql.Update("users").
		Set("verified", sq.Expr("NOT verified")).
		Set("updated_at", sqNow).
		Where("id = ?", id).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build verification toggle: %w", err)
	}
	updated, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		log.Printf("Error toggling verification of user %s: %v\n", id, err)
		return nil, fmt.Errorf("failed to toggle verification of user %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a user. Jobs owned by the user cascade.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("failed to delete user %s: still referenced: %w", id, storage.ErrConflict)
		}
		log.Printf("Error deleting user %s: %v\n", id, err)
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	log.Printf("User deleted successfully: %s", id)
	return nil
}

// CountByRole returns the number of users per role.
func (r *UserRepo) CountByRole(ctx context.Context) (map[models.UserRole]int, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	defer rows.Close()

	counts := map[models.UserRole]int{}
	for rows.Next() {
		var role models.UserRole
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("failed to scan user count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
