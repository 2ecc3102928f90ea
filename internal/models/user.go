package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User represents one account keyed by its Telegram chat ID.
// Lifetime counters and moderation flags live here; they are only ever
// mutated through atomic column updates in the storage layer.
type User struct {
	// TelegramID is the platform identity and primary key.
	TelegramID int64 `gorm:"primaryKey;autoIncrement:false"`
	// Name is the chosen nickname, or a generated pseudonym when the
	// user skipped registration.
	Name   string `gorm:"type:text;not null"`
	Gender string `gorm:"type:text"`
	Age    int
	// Language selects the localization bundle for this user.
	Language string `gorm:"type:text;not null;default:'en'"`

	// ChatsCount is the number of sessions this user took part in.
	ChatsCount int `gorm:"not null;default:0"`
	// MessagesSent is the number of payloads relayed from this user.
	MessagesSent int `gorm:"not null;default:0"`

	IsBanned bool `gorm:"not null;default:false"`
	IsAdmin  bool `gorm:"not null;default:false"`

	// ReferredBy is the Telegram ID of the referring user, if any.
	ReferredBy *int64 `gorm:"index"`
	RefCount   int    `gorm:"not null;default:0"`

	RatingSum   int `gorm:"not null;default:0"`
	RatingCount int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a pseudonym when no nickname was chosen, so a
// user row is always displayable.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Name == "" {
		u.Name = "Guest-" + strings.Split(uuid.New().String(), "-")[0]
	}
	return nil
}

// Display renders the identity the partner sees: name, gender icon, age.
func (u *User) Display() string {
	icon := "👤"
	switch u.Gender {
	case GenderMale:
		icon = "👦"
	case GenderFemale:
		icon = "👧"
	}
	if u.Age > 0 {
		return fmt.Sprintf("%s %s %d", u.Name, icon, u.Age)
	}
	return fmt.Sprintf("%s %s", u.Name, icon)
}

// AvgRating formats the aggregate rating, e.g. "4.5 ⭐ (12)".
func (u *User) AvgRating() string {
	if u.RatingCount == 0 {
		return "no ratings yet"
	}
	return fmt.Sprintf("%.1f ⭐ (%d)", float64(u.RatingSum)/float64(u.RatingCount), u.RatingCount)
}
