package models

import (
	"time"
)

// AuditAction identifies the kind of mutating operation recorded in the log
type AuditAction string

const (
	AuditActionRegister  AuditAction = "register"
	AuditActionIncrement AuditAction = "increment"
	AuditActionDecrement AuditAction = "decrement"
	AuditActionSet       AuditAction = "set"
	AuditActionDelete    AuditAction = "delete"
)

// AuditEntry is an immutable record of one mutating action.
// Entries are never updated or deleted; the id and timestamp are assigned
// by the store at append time.
type AuditEntry struct {
	ID        int64       `db:"id"`
	Action    AuditAction `db:"action"`
	ActorID   int64       `db:"actor_id"`
	TargetID  int64       `db:"target_id"`
	CreatedAt time.Time   `db:"created_at"`
}
