package service

import (
	"context"
	"errors"
	"fmt"

	"repbot/metrics"
	"repbot/models"
	"repbot/ranking"
	"repbot/repository"

	log "github.com/sirupsen/logrus"
)

// reputationService implements the ReputationService interface
type reputationService struct {
	users    UserRepository
	auditLog AuditLogRepository
	ranks    *ranking.Table
	recorder metrics.Recorder
}

// NewReputationService creates a new reputation service
func NewReputationService(users UserRepository, auditLog AuditLogRepository, ranks *ranking.Table, recorder metrics.Recorder) ReputationService {
	return &reputationService{
		users:    users,
		auditLog: auditLog,
		ranks:    ranks,
		recorder: recorder,
	}
}

// Register creates the user with zero points. Registering twice is a no-op
// reported through the AlreadyRegistered field.
func (s *reputationService) Register(ctx context.Context, telegramID int64, username string) (*RegisterOutcome, error) {
	existing, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return &RegisterOutcome{User: existing, AlreadyRegistered: true}, nil
	}

	user, err := s.users.Create(ctx, telegramID, username)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// Lost a registration race; same outcome as the check above
		existing, err := s.users.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user after create race: %w", err)
		}
		return &RegisterOutcome{User: existing, AlreadyRegistered: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.RecordMutation(models.AuditActionRegister)
	s.appendAudit(ctx, models.AuditActionRegister, telegramID, telegramID)

	return &RegisterOutcome{User: user}, nil
}

// GetStatus returns points, rank and achievements for a registered user
func (s *reputationService) GetStatus(ctx context.Context, telegramID int64) (*Status, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotRegistered
	}

	return &Status{
		User:         user,
		Rank:         s.ranks.RankOf(user.Points),
		Achievements: ranking.Achievements(user.Points),
	}, nil
}

// ApplyDelta adds a signed delta to the target's points. Decrements floor at
// 0; the floor is not an error and never reports a rank change by itself.
func (s *reputationService) ApplyDelta(ctx context.Context, actorID, targetID, delta int64) (*MutationResult, error) {
	oldPoints, newPoints, err := s.users.ApplyDelta(ctx, targetID, delta)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply point delta: %w", err)
	}

	action := models.AuditActionIncrement
	if delta < 0 {
		action = models.AuditActionDecrement
	}
	s.recorder.RecordMutation(action)
	s.appendAudit(ctx, action, actorID, targetID)

	return s.mutationResult(oldPoints, newPoints), nil
}

// SetPoints assigns an absolute point value to the target. The value must be
// non-negative; there is deliberately no upper cap beyond the top rank's
// sentinel band.
func (s *reputationService) SetPoints(ctx context.Context, actorID, targetID, value int64) (*MutationResult, error) {
	if value < 0 {
		return nil, ErrInvalidValue
	}

	oldPoints, newPoints, err := s.users.SetPoints(ctx, targetID, value)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set points: %w", err)
	}

	s.recorder.RecordMutation(models.AuditActionSet)
	s.appendAudit(ctx, models.AuditActionSet, actorID, targetID)

	return s.mutationResult(oldPoints, newPoints), nil
}

// DeleteUser removes the target. Audit entries referencing the target remain
// as historical record.
func (s *reputationService) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	removed, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !removed {
		return ErrTargetNotFound
	}

	s.recorder.RecordMutation(models.AuditActionDelete)
	s.appendAudit(ctx, models.AuditActionDelete, actorID, targetID)

	return nil
}

// Leaderboard returns up to limit users ordered by points descending
func (s *reputationService) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	users, err := s.users.ListByPoints(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := make([]*LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &LeaderboardEntry{
			Position:     i + 1,
			User:         user,
			Rank:         s.ranks.RankOf(user.Points),
			Achievements: ranking.Achievements(user.Points),
		})
	}

	return entries, nil
}

// RecentLog returns the most recent audit entries, newest first
func (s *reputationService) RecentLog(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	entries, err := s.auditLog.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent log: %w", err)
	}

	return entries, nil
}

// mutationResult derives the rank transition from the pre-update and
// post-update totals returned by the same atomic update.
func (s *reputationService) mutationResult(oldPoints, newPoints int64) *MutationResult {
	oldRank := s.ranks.RankOf(oldPoints)
	newRank := s.ranks.RankOf(newPoints)
	return &MutationResult{
		NewPoints:   newPoints,
		OldRank:     oldRank,
		NewRank:     newRank,
		RankChanged: oldRank.Name != newRank.Name,
	}
}

// appendAudit records a committed mutation in the log. A failure here is
// non-fatal: the mutation already committed and is reported as successful;
// the gap is only observable in logs and metrics.
func (s *reputationService) appendAudit(ctx context.Context, action models.AuditAction, actorID, targetID int64) {
	entry := &models.AuditEntry{
		Action:   action,
		ActorID:  actorID,
		TargetID: targetID,
	}
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.recorder.RecordAuditAppendFailure()
		log.WithError(err).WithFields(log.Fields{
			"action":   action,
			"actorID":  actorID,
			"targetID": targetID,
		}).Warn("Audit append failed after committed mutation")
	}
}
