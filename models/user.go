package models

import (
	"time"
)

// User represents a registered chat participant with reputation points
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Points     int64     `db:"points"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
