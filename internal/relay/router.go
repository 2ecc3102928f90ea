// Package relay forwards payloads between the two parties of an active
// session and records the transcript. Delivery is fire and forget: a
// partner-side send failure is logged and swallowed so the sender's
// experience never depends on the partner's connectivity.
package relay

import (
	"context"
	"errors"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"

	"go.uber.org/zap"
)

// Deliverer is the outbound capability the core calls; the transport
// layer implements it. The relayed payload reaches the partner
// unchanged in content.
type Deliverer interface {
	Deliver(ctx context.Context, uid int64, p models.Payload) error
}

type Router struct {
	storage   storage.Storage
	deliverer Deliverer
	metrics   metrics.Collector
	log       *zap.Logger
}

func NewRouter(s storage.Storage, d Deliverer, m metrics.Collector, log *zap.Logger) *Router {
	return &Router{storage: s, deliverer: d, metrics: m, log: log}
}

// Relay forwards the payload from senderUID to their session partner.
// Delivery is attempted first; the transcript entry and the sender's
// message counter are recorded only on confirmed delivery, so the
// transcript never claims a message the partner did not get.
func (r *Router) Relay(ctx context.Context, senderUID int64, p models.Payload) error {
	sender, err := r.storage.GetUser(senderUID)
	if err != nil {
		return err
	}
	if sender.IsBanned {
		return models.ErrBanned
	}

	session, err := r.storage.ActiveSessionFor(senderUID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotInSession
	}
	if err != nil {
		return err
	}
	partner := session.Partner(senderUID)

	if err := r.deliverer.Deliver(ctx, partner, p); err != nil {
		r.metrics.RecordDeliveryFailure()
		r.log.Warn("relay delivery failed, dropping",
			zap.Int64("sender", senderUID),
			zap.Int64("partner", partner),
			zap.String("kind", p.Kind.String()),
			zap.Error(err))
		return nil
	}

	entry := &models.TranscriptEntry{
		SessionID: session.ID,
		SenderID:  senderUID,
		Display:   sender.Display(),
		Label:     Label(p),
	}
	if err := r.storage.AppendTranscript(entry); err != nil {
		return err
	}
	if err := r.storage.IncrementMessagesSent(senderUID); err != nil {
		return err
	}
	r.metrics.RecordRelay(p.Kind.String())
	return nil
}
