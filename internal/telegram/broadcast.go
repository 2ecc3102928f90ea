package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// startBroadcast fans a message out to every non-banned user. Sending
// runs in the background so the admin chat stays responsive; the pause
// between sends keeps the bot under the platform rate limit.
func (b *BotService) startBroadcast(ctx context.Context, adminLang, text string) {
	ids, err := b.Storage.ActiveUserIDs()
	if err != nil {
		b.Log.Error("broadcast audience lookup failed", zap.Error(err))
		return
	}
	b.reply(b.AdminID, b.tf(adminLang, "broadcast_started", len(ids)))

	go func() {
		delivered, failed := 0, 0
		for _, uid := range ids {
			if ctx.Err() != nil {
				return
			}
			if err := b.client.Notify(ctx, uid, text); err != nil {
				failed++
			} else {
				delivered++
			}
			time.Sleep(b.BroadcastPause)
		}
		b.Log.Info("broadcast finished",
			zap.Int("delivered", delivered), zap.Int("failed", failed))
		b.reply(b.AdminID, b.tf(adminLang, "broadcast_done", delivered, failed))
	}()
}

// promoKeys rotate randomly between rounds so the nudge does not read
// like a broken record.
var promoKeys = []string{"promo_nudge", "promo_nudge_2", "promo_nudge_3"}

// StartPromo schedules the periodic nudge to users who are neither
// chatting nor waiting. The first round fires shortly after start; the
// returned cron owns the schedule, stop it on shutdown.
func (b *BotService) StartPromo(ctx context.Context, interval time.Duration) *cron.Cron {
	time.AfterFunc(time.Minute, func() { b.runPromo(ctx) })

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		b.runPromo(ctx)
	})
	if err != nil {
		b.Log.Error("promo schedule failed", zap.Error(err))
		return c
	}
	c.Start()
	return c
}

func (b *BotService) runPromo(ctx context.Context) {
	ids, err := b.Storage.IdleUserIDs()
	if err != nil {
		b.Log.Error("promo audience lookup failed", zap.Error(err))
		return
	}
	key := promoKeys[rand.Intn(len(promoKeys))]
	sent := 0
	for _, uid := range ids {
		if ctx.Err() != nil {
			return
		}
		user, err := b.Registry.Resolve(uid)
		if err != nil {
			continue
		}
		if err := b.client.Notify(ctx, uid, b.t(user.Language, key)); err == nil {
			sent++
		}
		time.Sleep(b.BroadcastPause)
	}
	b.Log.Info("promo round finished", zap.Int("sent", sent), zap.Int("audience", len(ids)))
}
