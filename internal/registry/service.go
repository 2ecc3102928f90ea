// Package registry resolves platform identities into users: creation
// through the registration wizard, referral linkage, renames, and the
// ban check every entry point runs first.
package registry

import (
	"errors"
	"unicode/utf8"

	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"

	"go.uber.org/zap"
)

// ErrInvalidName rejects nicknames outside the 2-30 character range.
var ErrInvalidName = errors.New("name must be between 2 and 30 characters")

// ErrInvalidAge rejects ages outside the 13-99 range.
var ErrInvalidAge = errors.New("age must be between 13 and 99")

type Service struct {
	storage storage.Storage
	log     *zap.Logger
}

func NewService(s storage.Storage, log *zap.Logger) *Service {
	return &Service{storage: s, log: log}
}

// Resolve loads the user for uid, models.ErrNotFound when unregistered.
func (s *Service) Resolve(uid int64) (*models.User, error) {
	return s.storage.GetUser(uid)
}

// ResolveActive loads the user and rejects banned identities. Every
// operation entry point goes through this first.
func (s *Service) ResolveActive(uid int64) (*models.User, error) {
	user, err := s.storage.GetUser(uid)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, models.ErrBanned
	}
	return user, nil
}

// Register creates the user once the wizard collected name, gender and
// age. When a referral link was followed the referrer's counter is
// bumped and the updated referrer row is returned so the caller can
// notify them. A broken or self-referral is silently dropped.
func (s *Service) Register(uid int64, name, gender string, age int, lang string, referredBy *int64) (*models.User, *models.User, error) {
	if !ValidName(name) {
		return nil, nil, ErrInvalidName
	}
	if age < 13 || age > 99 {
		return nil, nil, ErrInvalidAge
	}

	if referredBy != nil && *referredBy == uid {
		referredBy = nil
	}
	var referrer *models.User
	if referredBy != nil {
		ref, err := s.storage.GetUser(*referredBy)
		if errors.Is(err, models.ErrNotFound) {
			referredBy = nil
		} else if err != nil {
			return nil, nil, err
		} else {
			referrer = ref
		}
	}

	if lang == "" {
		lang = "en"
	}
	user := &models.User{
		TelegramID: uid,
		Name:       name,
		Gender:     gender,
		Age:        age,
		Language:   lang,
		ReferredBy: referredBy,
	}
	if err := s.storage.CreateUser(user); err != nil {
		return nil, nil, err
	}

	if referrer != nil {
		if err := s.storage.IncrementRefCount(referrer.TelegramID); err != nil {
			return nil, nil, err
		}
		referrer.RefCount++
		s.log.Info("referral recorded",
			zap.Int64("user", uid),
			zap.Int64("referrer", referrer.TelegramID))
	}
	return user, referrer, nil
}

// Rename changes the chosen nickname.
func (s *Service) Rename(uid int64, name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	return s.storage.UpdateUserName(uid, name)
}

// SetLanguage switches the user's localization bundle.
func (s *Service) SetLanguage(uid int64, lang string) error {
	return s.storage.UpdateUserLanguage(uid, lang)
}

// Stats returns the global counters for the stats and admin views.
func (s *Service) Stats() (storage.Stats, error) {
	return s.storage.GlobalStats()
}

// ValidName reports whether a nickname fits the 2-30 character range.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 2 && n <= 30
}
