// Package moderation handles the post-session workflow: rating
// capture, abuse reports with transcript review, and admin
// adjudication (ban / skip / close).
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"

	"go.uber.org/zap"
)

// Action is an admin decision on a report.
type Action string

const (
	ActionBan   Action = "ban"
	ActionSkip  Action = "skip"
	ActionClose Action = "close"
)

// ErrInvalidScore rejects ratings outside 1-5.
var ErrInvalidScore = errors.New("score must be between 1 and 5")

// ErrInvalidAction rejects adjudication actions outside ban/skip/close.
var ErrInvalidAction = errors.New("unknown adjudication action")

// Notifier delivers moderation notices (report digests to the admin,
// ban notices to the affected user). Failures are logged, not fatal:
// the stored state is what matters.
type Notifier interface {
	Notify(ctx context.Context, uid int64, text string) error
}

type Service struct {
	storage  storage.Storage
	notifier Notifier
	metrics  metrics.Collector
	log      *zap.Logger
	adminID  int64
}

func NewService(s storage.Storage, n Notifier, m metrics.Collector, log *zap.Logger, adminID int64) *Service {
	return &Service{storage: s, notifier: n, metrics: m, log: log, adminID: adminID}
}

// Rate records one 1-5 score from raterUID against ratedUID for the
// given session. Idempotent per (rater, session): a retry fails with
// ErrAlreadyRated and leaves the rated user's aggregate untouched.
func (s *Service) Rate(raterUID, ratedUID int64, sessionID uint, score int) error {
	if score < 1 || score > 5 {
		return ErrInvalidScore
	}
	rater, err := s.storage.GetUser(raterUID)
	if err != nil {
		return err
	}
	if rater.IsBanned {
		return models.ErrBanned
	}

	rating := &models.Rating{
		RaterID:   raterUID,
		RatedID:   ratedUID,
		SessionID: sessionID,
		Score:     score,
	}
	if err := s.storage.CreateRating(rating); err != nil {
		return err
	}
	s.metrics.RecordRating(score)
	return nil
}

// Report files an abuse report and sends the admin a digest with both
// identities and the full ordered transcript. Idempotent per
// (reporter, session).
func (s *Service) Report(ctx context.Context, reporterUID, reportedUID int64, sessionID uint) (uint, error) {
	reporter, err := s.storage.GetUser(reporterUID)
	if err != nil {
		return 0, err
	}
	if reporter.IsBanned {
		return 0, models.ErrBanned
	}
	reported, err := s.storage.GetUser(reportedUID)
	if err != nil {
		return 0, err
	}

	report := &models.Report{
		ReporterID: reporterUID,
		ReportedID: reportedUID,
		SessionID:  sessionID,
	}
	if err := s.storage.CreateReport(report); err != nil {
		return 0, err
	}
	s.metrics.RecordReport()

	entries, err := s.storage.Transcript(sessionID)
	if err != nil {
		return 0, err
	}
	digest := reportDigest(report.ID, reporter, reported, sessionID, entries)
	if s.adminID != 0 {
		if err := s.notifier.Notify(ctx, s.adminID, digest); err != nil {
			s.log.Warn("failed to notify admin about report",
				zap.Uint("report", report.ID), zap.Error(err))
		}
	}
	return report.ID, nil
}

// Adjudicate applies an admin decision to a pending report. Only the
// configured administrator may call it; ban flips the reported user's
// ban flag and notifies them, skip and close only move the status.
func (s *Service) Adjudicate(ctx context.Context, adminUID int64, reportID uint, action Action) error {
	if adminUID != s.adminID || s.adminID == 0 {
		return models.ErrForbidden
	}
	report, err := s.storage.GetReport(reportID)
	if err != nil {
		return err
	}

	switch action {
	case ActionBan:
		if err := s.storage.SetBanned(report.ReportedID, true); err != nil {
			return err
		}
		if err := s.storage.SetReportStatus(reportID, models.ReportBanned); err != nil {
			return err
		}
		if err := s.notifier.Notify(ctx, report.ReportedID, "🚫 You have been banned."); err != nil {
			s.log.Warn("failed to notify banned user",
				zap.Int64("user", report.ReportedID), zap.Error(err))
		}
		s.log.Info("user banned by adjudication",
			zap.Uint("report", reportID), zap.Int64("user", report.ReportedID))
		return nil
	case ActionSkip:
		return s.storage.SetReportStatus(reportID, models.ReportSkipped)
	case ActionClose:
		return s.storage.SetReportStatus(reportID, models.ReportClosed)
	}
	return ErrInvalidAction
}

// FormatTranscript renders a session dialog for review, one line per
// entry in strict insertion order.
func FormatTranscript(entries []models.TranscriptEntry) string {
	if len(entries) == 0 {
		return "(empty dialog)"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			e.CreatedAt.Format("15:04"), e.Display, e.Label))
	}
	return strings.Join(lines, "\n")
}

func reportDigest(reportID uint, reporter, reported *models.User, sessionID uint, entries []models.TranscriptEntry) string {
	return fmt.Sprintf(
		"🚨 REPORT #%d\n\n👤 From: %s (%d)\n🎯 Against: %s (%d)\n\n📋 Dialog of session #%d:\n%s\n%s",
		reportID,
		reporter.Display(), reporter.TelegramID,
		reported.Display(), reported.TelegramID,
		sessionID,
		strings.Repeat("─", 28),
		FormatTranscript(entries),
	)
}
