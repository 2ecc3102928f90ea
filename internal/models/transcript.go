package models

import "time"

// TranscriptEntry is one relayed payload, recorded after confirmed
// delivery. Append-only: entries are never mutated or deleted, and
// transcript retrieval orders strictly by ID.
type TranscriptEntry struct {
	ID        uint  `gorm:"primaryKey"`
	SessionID uint  `gorm:"not null;index"`
	SenderID  int64 `gorm:"not null"`
	// Display freezes the sender's displayed identity at send time, so
	// later renames do not rewrite history shown to moderators.
	Display string `gorm:"type:text;not null"`
	// Label is the human-readable transcript line: the text verbatim,
	// or a bracketed kind tag for media.
	Label string `gorm:"type:text;not null"`

	CreatedAt time.Time
}
