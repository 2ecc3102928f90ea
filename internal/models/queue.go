package models

import "time"

// QueueEntry marks a user as waiting for a match. The autoincrement ID
// doubles as the FIFO ordering column: the matcher always consumes the
// lowest ID first. A user holds at most one entry (unique index).
type QueueEntry struct {
	ID     uint  `gorm:"primaryKey"`
	UserID int64 `gorm:"not null;uniqueIndex"`

	CreatedAt time.Time
}
