package repository

import (
	"context"
	"fmt"

	"repbot/database"
	"repbot/models"
)

// AuditLogRepository provides access to the append-only reputation log.
// The log exposes no update or delete operations.
type AuditLogRepository struct {
	q queryable
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db.Pool}
}

// Append writes a new entry. The store assigns the id and timestamp and
// fills them into entry.
func (r *AuditLogRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO reputation_log (action, actor_id, target_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.Action,
		entry.ActorID,
		entry.TargetID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append audit entry for target %d: %w", entry.TargetID, err)
	}

	return nil
}

// Recent returns up to n entries, most recent first
func (r *AuditLogRepository) Recent(ctx context.Context, n int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, action, actor_id, target_id, created_at
		FROM reputation_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.ActorID,
			&entry.TargetID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
