package models

import "time"

// Rating is one 1-5 score given after a session ended.
// At most one rating per (rater, session) pair; the rated user's
// aggregate sum/count is bumped in the same transaction.
type Rating struct {
	ID        uint  `gorm:"primaryKey"`
	RaterID   int64 `gorm:"not null;uniqueIndex:udx_rating_once,priority:1"`
	RatedID   int64 `gorm:"not null"`
	SessionID uint  `gorm:"not null;uniqueIndex:udx_rating_once,priority:2"`
	Score     int   `gorm:"not null"`

	CreatedAt time.Time
}
