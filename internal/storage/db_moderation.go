package storage

import (
	"errors"

	"anonchat/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) AppendTranscript(entry *models.TranscriptEntry) error {
	return s.DB.Create(entry).Error
}

// Transcript returns the full dialog of a session in strict insertion
// order, for moderation review.
func (s *Service) Transcript(sessionID uint) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	err := s.DB.Where("session_id = ?", sessionID).
		Order("id asc").
		Find(&entries).Error
	return entries, err
}

// CreateRating inserts the rating and bumps the rated user's aggregate
// in one transaction. A duplicate (rater, session) pair surfaces as
// models.ErrAlreadyRated and leaves the aggregates untouched.
func (s *Service) CreateRating(rating *models.Rating) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrAlreadyRated
			}
			return err
		}
		return tx.Model(&models.User{}).
			Where("telegram_id = ?", rating.RatedID).
			Updates(map[string]interface{}{
				"rating_sum":   gorm.Expr("rating_sum + ?", rating.Score),
				"rating_count": gorm.Expr("rating_count + 1"),
			}).Error
	})
}

func (s *Service) CreateReport(report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	if err := s.DB.Create(report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrAlreadyReported
		}
		return err
	}
	return nil
}

func (s *Service) GetReport(id uint) (*models.Report, error) {
	var report models.Report
	err := s.DB.First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) SetReportStatus(id uint, status string) error {
	res := s.DB.Model(&models.Report{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Service) PendingReports() ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("status = ?", models.ReportPending).
		Order("id asc").
		Find(&reports).Error
	return reports, err
}

// GlobalStats gathers the counters for the stats and admin views.
func (s *Service) GlobalStats() (Stats, error) {
	var st Stats
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.Users, s.DB.Model(&models.User{})},
		{&st.Banned, s.DB.Model(&models.User{}).Where("is_banned = ?", true)},
		{&st.ActiveSessions, s.DB.Model(&models.Session{}).Where("ended = ?", false)},
		{&st.Waiting, s.DB.Model(&models.QueueEntry{})},
		{&st.TotalSessions, s.DB.Model(&models.Session{})},
		{&st.Reports, s.DB.Model(&models.Report{})},
		{&st.PendingReports, s.DB.Model(&models.Report{}).Where("status = ?", models.ReportPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}
