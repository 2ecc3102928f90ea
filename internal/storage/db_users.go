package storage

import (
	"errors"

	"anonchat/backend/internal/models"

	"gorm.io/gorm"
)

// GetUser loads a user by Telegram ID. Returns models.ErrNotFound for
// unknown identities so callers never see gorm sentinel errors.
func (s *Service) GetUser(uid int64) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "telegram_id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) UpdateUserName(uid int64, name string) error {
	return s.DB.Model(&models.User{}).
		Where("telegram_id = ?", uid).
		Update("name", name).Error
}

func (s *Service) UpdateUserLanguage(uid int64, lang string) error {
	return s.DB.Model(&models.User{}).
		Where("telegram_id = ?", uid).
		Update("language", lang).Error
}

// IncrementRefCount bumps the referral counter with an atomic column
// update; read-modify-write would lose updates under concurrency.
func (s *Service) IncrementRefCount(uid int64) error {
	return s.DB.Model(&models.User{}).
		Where("telegram_id = ?", uid).
		Update("ref_count", gorm.Expr("ref_count + 1")).Error
}

func (s *Service) IncrementMessagesSent(uid int64) error {
	return s.DB.Model(&models.User{}).
		Where("telegram_id = ?", uid).
		Update("messages_sent", gorm.Expr("messages_sent + 1")).Error
}

func (s *Service) SetBanned(uid int64, banned bool) error {
	res := s.DB.Model(&models.User{}).
		Where("telegram_id = ?", uid).
		Update("is_banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ActiveUserIDs returns every non-banned user, for admin broadcasts.
func (s *Service) ActiveUserIDs() ([]int64, error) {
	var ids []int64
	err := s.DB.Model(&models.User{}).
		Where("is_banned = ?", false).
		Order("telegram_id").
		Pluck("telegram_id", &ids).Error
	return ids, err
}

// IdleUserIDs returns non-banned users without an active session, the
// audience of the periodic promo broadcast.
func (s *Service) IdleUserIDs() ([]int64, error) {
	var ids []int64
	err := s.DB.Model(&models.User{}).
		Where("is_banned = ?", false).
		Where(`telegram_id NOT IN (
			SELECT user1_id FROM sessions WHERE ended = false
			UNION
			SELECT user2_id FROM sessions WHERE ended = false)`).
		Order("telegram_id").
		Pluck("telegram_id", &ids).Error
	return ids, err
}
