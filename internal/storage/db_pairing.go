package storage

import (
	"errors"
	"time"

	"anonchat/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchOrEnqueue runs one atomic match decision for uid: consume the
// oldest waiting entry from another user and open a session with it,
// or insert a queue entry for uid when nobody is waiting.
//
// The candidate row is taken with FOR UPDATE SKIP LOCKED so two
// concurrent seekers can never claim the same entry: the second
// transaction skips the locked row and either matches the next
// candidate or enqueues. A concurrent cancel of the candidate blocks
// on the same row lock, so exactly one of {matched, cancelled} wins.
func (s *Service) MatchOrEnqueue(uid int64) (MatchOutcome, error) {
	var out MatchOutcome
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.QueueEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("user_id <> ?", uid).
			Order("id").
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&models.QueueEntry{UserID: uid}).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.ErrAlreadyQueued
				}
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.QueueEntry{}, entry.ID).Error; err != nil {
			return err
		}
		session := models.Session{User1ID: uid, User2ID: entry.UserID}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("telegram_id IN ?", []int64{uid, entry.UserID}).
			Update("chats_count", gorm.Expr("chats_count + 1")).Error; err != nil {
			return err
		}

		out = MatchOutcome{Matched: true, PartnerID: entry.UserID, SessionID: session.ID}
		return nil
	})
	return out, err
}

// CancelQueue removes uid's queue entry. The second return is false
// when there was nothing to remove (already matched or never queued).
func (s *Service) CancelQueue(uid int64) (bool, error) {
	res := s.DB.Where("user_id = ?", uid).Delete(&models.QueueEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) InQueue(uid int64) (bool, error) {
	var n int64
	err := s.DB.Model(&models.QueueEntry{}).
		Where("user_id = ?", uid).
		Count(&n).Error
	return n > 0, err
}

// ActiveSessionFor returns uid's session with ended=false, or
// models.ErrNotFound when the user is idle.
func (s *Service) ActiveSessionFor(uid int64) (*models.Session, error) {
	var session models.Session
	err := s.DB.Where("ended = ?", false).
		Where("user1_id = ? OR user2_id = ?", uid, uid).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// EndSession marks uid's active session as ended and returns it.
// The session row is locked first so two concurrent leaves end it
// exactly once; the loser observes ErrNotFound.
func (s *Service) EndSession(uid int64) (*models.Session, error) {
	var session models.Session
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ended = ?", false).
			Where("user1_id = ? OR user2_id = ?", uid, uid).
			First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}
		now := time.Now()
		session.Ended = true
		session.EndedAt = &now
		return tx.Model(&models.Session{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{"ended": true, "ended_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
