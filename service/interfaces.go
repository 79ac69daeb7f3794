package service

import (
	"context"
	"errors"

	"repbot/models"
	"repbot/ranking"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByTelegramID retrieves a user by their Telegram ID, (nil, nil) when absent
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// Create creates a new user with zero points
	Create(ctx context.Context, telegramID int64, username string) (*models.User, error)

	// ApplyDelta atomically adds delta to a user's points, flooring at 0,
	// and returns the pre-update and post-update totals
	ApplyDelta(ctx context.Context, telegramID int64, delta int64) (oldPoints, newPoints int64, err error)

	// SetPoints atomically sets a user's points and returns the pre-update
	// and post-update totals
	SetPoints(ctx context.Context, telegramID int64, value int64) (oldPoints, newPoints int64, err error)

	// Delete removes a user, reporting whether a row was removed
	Delete(ctx context.Context, telegramID int64) (bool, error)

	// ListByPoints returns up to limit users ordered by points descending
	// with a deterministic tie-break
	ListByPoints(ctx context.Context, limit int) ([]*models.User, error)

	// ListAll returns all users in insertion order
	ListAll(ctx context.Context) ([]*models.User, error)
}

// AuditLogRepository defines the interface for the append-only action log
type AuditLogRepository interface {
	// Append writes a new entry; the store assigns id and timestamp
	Append(ctx context.Context, entry *models.AuditEntry) error

	// Recent returns up to n entries, most recent first
	Recent(ctx context.Context, n int) ([]*models.AuditEntry, error)
}

var (
	// ErrNotRegistered means the requesting user has no record
	ErrNotRegistered = errors.New("user is not registered")

	// ErrTargetNotFound means the targeted user has no record
	ErrTargetNotFound = errors.New("target user not found")

	// ErrInvalidValue means a caller-supplied point value is not acceptable
	ErrInvalidValue = errors.New("invalid point value")
)

// RegisterOutcome reports the result of a registration attempt.
// AlreadyRegistered is a normal outcome, not an error.
type RegisterOutcome struct {
	User              *models.User
	AlreadyRegistered bool
}

// MutationResult reports the result of a point mutation, including the rank
// transition detected across the atomic update.
type MutationResult struct {
	NewPoints   int64
	OldRank     ranking.Rank
	NewRank     ranking.Rank
	RankChanged bool
}

// Status is the read-only view of one user's standing
type Status struct {
	User         *models.User
	Rank         ranking.Rank
	Achievements []string
}

// LeaderboardEntry is one row of the rendered leaderboard
type LeaderboardEntry struct {
	Position     int
	User         *models.User
	Rank         ranking.Rank
	Achievements []string
}

// ReputationService defines the engine boundary consumed by the dispatcher
type ReputationService interface {
	// Register creates the user with zero points, or reports AlreadyRegistered
	Register(ctx context.Context, telegramID int64, username string) (*RegisterOutcome, error)

	// GetStatus returns points, rank and achievements for a registered user
	GetStatus(ctx context.Context, telegramID int64) (*Status, error)

	// ApplyDelta adds a signed delta to the target's points (floored at 0)
	// and detects the rank transition
	ApplyDelta(ctx context.Context, actorID, targetID, delta int64) (*MutationResult, error)

	// SetPoints assigns an absolute non-negative point value to the target
	// and detects the rank transition
	SetPoints(ctx context.Context, actorID, targetID, value int64) (*MutationResult, error)

	// DeleteUser removes the target; prior audit entries remain
	DeleteUser(ctx context.Context, actorID, targetID int64) error

	// Leaderboard returns up to limit users ordered by points descending
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)

	// RecentLog returns the most recent audit entries, newest first.
	// Identities are raw ids; display-name resolution is the caller's concern.
	RecentLog(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}
