// Package pairing is the queue-and-match state machine. Per user the
// states are Idle -> Queued -> Paired -> Idle, driven by Find and
// Leave; the match decision itself is delegated to one storage
// transaction so concurrent seekers can never split a waiting entry.
package pairing

import (
	"errors"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"

	"go.uber.org/zap"
)

// FindResult reports the outcome of a Find call: either the user was
// parked in the queue, or a session was opened against a waiting user.
type FindResult struct {
	Queued    bool
	PartnerID int64
	SessionID uint
}

// LeaveResult reports the outcome of a Leave call: a cancelled queue
// wait, or an ended session (with the partner to notify).
type LeaveResult struct {
	Cancelled bool
	PartnerID int64
	SessionID uint
}

type Engine struct {
	storage storage.Storage
	metrics metrics.Collector
	log     *zap.Logger
}

func NewEngine(s storage.Storage, m metrics.Collector, log *zap.Logger) *Engine {
	return &Engine{storage: s, metrics: m, log: log}
}

// Find enqueues uid or matches it with the longest-waiting candidate.
// Fails with ErrBanned, ErrAlreadyPaired or ErrAlreadyQueued. The
// precondition checks are advisory; the storage transaction and the
// queue's unique index close the races they leave open.
func (e *Engine) Find(uid int64) (FindResult, error) {
	user, err := e.storage.GetUser(uid)
	if err != nil {
		return FindResult{}, err
	}
	if user.IsBanned {
		return FindResult{}, models.ErrBanned
	}

	if _, err := e.storage.ActiveSessionFor(uid); err == nil {
		return FindResult{}, models.ErrAlreadyPaired
	} else if !errors.Is(err, models.ErrNotFound) {
		return FindResult{}, err
	}
	if queued, err := e.storage.InQueue(uid); err != nil {
		return FindResult{}, err
	} else if queued {
		return FindResult{}, models.ErrAlreadyQueued
	}

	out, err := e.storage.MatchOrEnqueue(uid)
	if err != nil {
		return FindResult{}, err
	}
	if !out.Matched {
		e.metrics.RecordEnqueue()
		e.log.Info("user queued", zap.Int64("user", uid))
		return FindResult{Queued: true}, nil
	}

	e.metrics.RecordMatch()
	e.log.Info("match made",
		zap.Int64("user", uid),
		zap.Int64("partner", out.PartnerID),
		zap.Uint("session", out.SessionID))
	return FindResult{PartnerID: out.PartnerID, SessionID: out.SessionID}, nil
}

// Leave cancels a queue wait or ends the active session. The session
// row and its transcript are kept for moderation review. Calling Leave
// with nothing to leave returns ErrNotInSession, never a storage error.
func (e *Engine) Leave(uid int64) (LeaveResult, error) {
	cancelled, err := e.storage.CancelQueue(uid)
	if err != nil {
		return LeaveResult{}, err
	}
	if cancelled {
		e.log.Info("queue wait cancelled", zap.Int64("user", uid))
		return LeaveResult{Cancelled: true}, nil
	}

	session, err := e.storage.EndSession(uid)
	if errors.Is(err, models.ErrNotFound) {
		return LeaveResult{}, models.ErrNotInSession
	}
	if err != nil {
		return LeaveResult{}, err
	}

	partner := session.Partner(uid)
	e.log.Info("session ended",
		zap.Int64("user", uid),
		zap.Int64("partner", partner),
		zap.Uint("session", session.ID))
	return LeaveResult{PartnerID: partner, SessionID: session.ID}, nil
}
