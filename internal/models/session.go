package models

import "time"

// Session represents one pairing between exactly two users.
// For any user at most one session with Ended=false may exist; the
// storage layer enforces this inside the match transaction.
// Sessions are never deleted; the transcript references them forever.
type Session struct {
	ID      uint  `gorm:"primaryKey"`
	User1ID int64 `gorm:"not null;index:idx_session_u1"`
	User2ID int64 `gorm:"not null;index:idx_session_u2"`
	Ended   bool  `gorm:"not null;default:false"`

	CreatedAt time.Time
	EndedAt   *time.Time
}

// Partner returns the other participant's ID, or 0 when uid is not a
// participant of this session.
func (s *Session) Partner(uid int64) int64 {
	switch uid {
	case s.User1ID:
		return s.User2ID
	case s.User2ID:
		return s.User1ID
	}
	return 0
}
