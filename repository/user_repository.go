package repository

import (
	"context"
	"fmt"

	"repbot/database"
	"repbot/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository provides access to persisted users
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// GetByTelegramID retrieves a user by their Telegram ID. Returns (nil, nil)
// when no such user exists.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `
		SELECT telegram_id, username, points, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.Username,
		&user.Points,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID %d: %w", telegramID, err)
	}

	return &user, nil
}

// Create creates a new user with zero points. Returns ErrAlreadyExists when
// a user with the same Telegram ID is already present.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username)
		VALUES ($1, $2)
		RETURNING telegram_id, username, points, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, telegramID, username).Scan(
		&user.TelegramID,
		&user.Username,
		&user.Points,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user with telegram ID %d: %w", telegramID, err)
	}

	return &user, nil
}

// ApplyDelta atomically adds delta to a user's points, flooring the result
// at 0, and returns the pre-update and post-update totals from the same
// statement. Returns ErrNotFound when no such user exists.
func (r *UserRepository) ApplyDelta(ctx context.Context, telegramID int64, delta int64) (oldPoints, newPoints int64, err error) {
	// Single-statement read-modify-write: the row is locked by the inner
	// select, so concurrent deltas against the same user cannot lose updates
	// or observe a stale pre-update value.
	query := `
		UPDATE users u
		SET points = GREATEST(0, u.points + $1), updated_at = NOW()
		FROM (SELECT telegram_id, points FROM users WHERE telegram_id = $2 FOR UPDATE) old
		WHERE u.telegram_id = old.telegram_id
		RETURNING old.points, u.points
	`

	err = r.q.QueryRow(ctx, query, delta, telegramID).Scan(&oldPoints, &newPoints)
	if err == pgx.ErrNoRows {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to apply point delta for user %d: %w", telegramID, err)
	}

	return oldPoints, newPoints, nil
}

// SetPoints atomically sets a user's points to value and returns the
// pre-update and post-update totals. Returns ErrNotFound when no such user
// exists. The caller must pass a non-negative value.
func (r *UserRepository) SetPoints(ctx context.Context, telegramID int64, value int64) (oldPoints, newPoints int64, err error) {
	query := `
		UPDATE users u
		SET points = $1, updated_at = NOW()
		FROM (SELECT telegram_id, points FROM users WHERE telegram_id = $2 FOR UPDATE) old
		WHERE u.telegram_id = old.telegram_id
		RETURNING old.points, u.points
	`

	err = r.q.QueryRow(ctx, query, value, telegramID).Scan(&oldPoints, &newPoints)
	if err == pgx.ErrNoRows {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to set points for user %d: %w", telegramID, err)
	}

	return oldPoints, newPoints, nil
}

// Delete removes a user. Returns true when a row was removed.
func (r *UserRepository) Delete(ctx context.Context, telegramID int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user %d: %w", telegramID, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListByPoints returns up to limit users ordered by points descending.
// Ties are broken by creation time then Telegram ID so the order is
// deterministic across calls.
func (r *UserRepository) ListByPoints(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT telegram_id, username, points, created_at, updated_at
		FROM users
		ORDER BY points DESC, created_at ASC, telegram_id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by points: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// ListAll returns all users in insertion order
func (r *UserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT telegram_id, username, points, created_at, updated_at
		FROM users
		ORDER BY created_at ASC, telegram_id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.TelegramID,
			&user.Username,
			&user.Points,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
