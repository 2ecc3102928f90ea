package models

import "time"

// Report statuses. A report starts pending and is moved exactly once
// by an admin adjudication.
const (
	ReportPending = "pending"
	ReportBanned  = "banned"
	ReportSkipped = "skipped"
	ReportClosed  = "closed"
)

// Report is one abuse report filed against a session partner.
// At most one report per (reporter, session) pair.
type Report struct {
	ID         uint  `gorm:"primaryKey"`
	ReporterID int64 `gorm:"not null;uniqueIndex:udx_report_once,priority:1"`
	ReportedID int64 `gorm:"not null"`
	SessionID  uint  `gorm:"not null;uniqueIndex:udx_report_once,priority:2"`
	Status     string `gorm:"type:text;not null;default:'pending'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
