// Package storage is the single source of truth for users, sessions,
// the waiting queue, transcripts, reports and ratings. All invariants
// with a race window (match decision, counter bumps, once-per-session
// ratings and reports) are enforced here, inside database transactions.
package storage

import (
	"context"

	"anonchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MatchOutcome is the result of one atomic match decision.
type MatchOutcome struct {
	Matched   bool
	PartnerID int64
	SessionID uint
}

// Stats is a snapshot of the global counters shown in the stats and
// admin panel views.
type Stats struct {
	Users          int64
	Banned         int64
	ActiveSessions int64
	Waiting        int64
	TotalSessions  int64
	Reports        int64
	PendingReports int64
}

// ConvState is the ephemeral per-user wizard state kept in Redis.
// Losing it is harmless: the user just repeats the current prompt.
type ConvState struct {
	State string            `json:"state"`
	Data  map[string]string `json:"data,omitempty"`
}

type Storage interface {
	// Users
	GetUser(uid int64) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUserName(uid int64, name string) error
	UpdateUserLanguage(uid int64, lang string) error
	IncrementRefCount(uid int64) error
	IncrementMessagesSent(uid int64) error
	SetBanned(uid int64, banned bool) error
	ActiveUserIDs() ([]int64, error)
	IdleUserIDs() ([]int64, error)

	// Pairing
	MatchOrEnqueue(uid int64) (MatchOutcome, error)
	CancelQueue(uid int64) (bool, error)
	InQueue(uid int64) (bool, error)
	ActiveSessionFor(uid int64) (*models.Session, error)
	EndSession(uid int64) (*models.Session, error)

	// Transcript
	AppendTranscript(entry *models.TranscriptEntry) error
	Transcript(sessionID uint) ([]models.TranscriptEntry, error)

	// Moderation
	CreateRating(rating *models.Rating) error
	CreateReport(report *models.Report) error
	GetReport(id uint) (*models.Report, error)
	SetReportStatus(id uint, status string) error
	PendingReports() ([]models.Report, error)

	// Misc
	GlobalStats() (Stats, error)

	// Conversational state (Redis, ephemeral)
	SetConvState(ctx context.Context, uid int64, state ConvState) error
	GetConvState(ctx context.Context, uid int64) (*ConvState, error)
	ClearConvState(ctx context.Context, uid int64) error
}

// Service implements Storage over Postgres (GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{DB: db, Redis: rdb}
}

// Migrate creates or updates the five relations plus the queue.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.QueueEntry{},
		&models.TranscriptEntry{},
		&models.Rating{},
		&models.Report{},
	)
}
