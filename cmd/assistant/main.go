// Command assistant runs the direct-reply LLM bot variant. It shares
// the Redis instance with the chat service but touches none of its
// pairing state.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"anonchat/backend/internal/assistant"
	"anonchat/backend/internal/config"
	"anonchat/backend/internal/llm"
	"anonchat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const greeting = "🤖 Hi! Send me a question or a photo.\n\n" +
	"/usage — today's quota\n/redeem <code> — activate a promo code\n/reset — forget our conversation"

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("failed to connect to Telegram", zap.Error(err))
	}

	svc := assistant.NewService(rdb,
		llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey),
		log, cfg.AdminID, cfg.LLMTextModel, cfg.LLMVisionModel)

	bot := &assistantBot{api: api, svc: svc, log: log}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := api.GetUpdatesChan(u)

	log.Info("assistant started", zap.String("username", api.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil && update.Message.Chat.IsPrivate() {
				bot.handle(ctx, update.Message)
			}
		}
	}
}

type assistantBot struct {
	api *tgbotapi.BotAPI
	svc *assistant.Service
	log *zap.Logger
}

func (b *assistantBot) handle(ctx context.Context, m *tgbotapi.Message) {
	uid := m.Chat.ID

	if m.IsCommand() {
		b.handleCommand(ctx, m)
		return
	}
	if len(m.Photo) > 0 {
		b.handlePhoto(ctx, m)
		return
	}
	if m.Text == "" {
		return
	}

	b.typing(uid)
	answer, err := b.svc.Ask(ctx, uid, m.Text)
	if errors.Is(err, assistant.ErrQuotaExceeded) {
		b.reply(uid, "⛔ Daily text quota reached. Come back tomorrow or redeem a promo code.")
		return
	}
	if err != nil {
		b.log.Error("ask failed", zap.Int64("user", uid), zap.Error(err))
		b.reply(uid, "⚠️ Something went wrong, try again.")
		return
	}
	b.reply(uid, answer)
}

func (b *assistantBot) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	uid := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())

	switch m.Command() {
	case "start":
		b.reply(uid, greeting)
	case "reset":
		if err := b.svc.Reset(ctx, uid); err != nil {
			b.log.Warn("reset failed", zap.Int64("user", uid), zap.Error(err))
		}
		b.reply(uid, "🧹 Conversation forgotten.")
	case "usage":
		text, images, plan, err := b.svc.Usage(ctx, uid)
		if err != nil {
			b.log.Error("usage failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		b.reply(uid, fmt.Sprintf("📊 Plan: %s\n💬 Text: %d/%d\n🖼 Images: %d/%d",
			plan.Name, text, plan.TextPerDay, images, plan.ImagesPerDay))
	case "promo":
		days, err := strconv.Atoi(args)
		if err != nil || days <= 0 {
			b.reply(uid, "Usage: /promo <days>")
			return
		}
		code, err := b.svc.GeneratePromo(ctx, uid, days)
		if errors.Is(err, models.ErrForbidden) {
			b.reply(uid, "No permission.")
			return
		}
		if err != nil {
			b.log.Error("promo generation failed", zap.Error(err))
			return
		}
		b.reply(uid, fmt.Sprintf("🎟 Promo code for %d premium days:\n`%s`", days, code))
	case "redeem":
		if args == "" {
			b.reply(uid, "Usage: /redeem <code>")
			return
		}
		days, err := b.svc.Redeem(ctx, uid, args)
		if errors.Is(err, assistant.ErrInvalidPromo) {
			b.reply(uid, "❌ Unknown or already used code.")
			return
		}
		if err != nil {
			b.log.Error("redeem failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		b.reply(uid, fmt.Sprintf("✨ Premium activated for %d days!", days))
	}
}

func (b *assistantBot) handlePhoto(ctx context.Context, m *tgbotapi.Message) {
	uid := m.Chat.ID
	b.typing(uid)

	dataURL, err := b.downloadPhoto(ctx, m.Photo[len(m.Photo)-1].FileID)
	if err != nil {
		b.log.Error("photo download failed", zap.Int64("user", uid), zap.Error(err))
		b.reply(uid, "⚠️ Could not read the photo, try again.")
		return
	}

	answer, err := b.svc.Describe(ctx, uid, m.Caption, dataURL)
	if errors.Is(err, assistant.ErrQuotaExceeded) {
		b.reply(uid, "⛔ Daily image quota reached. Come back tomorrow or redeem a promo code.")
		return
	}
	if err != nil {
		b.log.Error("describe failed", zap.Int64("user", uid), zap.Error(err))
		b.reply(uid, "⚠️ Something went wrong, try again.")
		return
	}
	b.reply(uid, answer)
}

// downloadPhoto fetches the image bytes from Telegram and packs them
// into a data URL for the vision endpoint.
func (b *assistantBot) downloadPhoto(ctx context.Context, fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func (b *assistantBot) reply(uid int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(uid, text)); err != nil {
		b.log.Warn("send failed", zap.Int64("user", uid), zap.Error(err))
	}
}

func (b *assistantBot) typing(uid int64) {
	_, _ = b.api.Request(tgbotapi.NewChatAction(uid, tgbotapi.ChatTyping))
}
