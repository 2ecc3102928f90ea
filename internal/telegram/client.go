package telegram

import (
	"context"

	"anonchat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Client implements the core's outbound capabilities (relay.Deliverer
// and moderation.Notifier) over the Telegram Bot API.
type Client struct {
	BotAPI *tgbotapi.BotAPI
	Log    *zap.Logger
}

func NewClient(api *tgbotapi.BotAPI, log *zap.Logger) *Client {
	return &Client{BotAPI: api, Log: log}
}

// Deliver sends a payload to uid, unchanged in content. Media is
// forwarded by file reference so the bot never re-uploads bytes.
func (c *Client) Deliver(ctx context.Context, uid int64, p models.Payload) error {
	var msg tgbotapi.Chattable
	switch p.Kind {
	case models.PayloadText:
		msg = tgbotapi.NewMessage(uid, "💬 "+p.Text)
	case models.PayloadPhoto:
		photo := tgbotapi.NewPhoto(uid, tgbotapi.FileID(p.FileID))
		photo.Caption = p.Caption
		msg = photo
	case models.PayloadVideo:
		video := tgbotapi.NewVideo(uid, tgbotapi.FileID(p.FileID))
		video.Caption = p.Caption
		msg = video
	case models.PayloadVoice:
		msg = tgbotapi.NewVoice(uid, tgbotapi.FileID(p.FileID))
	case models.PayloadSticker:
		msg = tgbotapi.NewSticker(uid, tgbotapi.FileID(p.FileID))
	case models.PayloadAnimation:
		msg = tgbotapi.NewAnimation(uid, tgbotapi.FileID(p.FileID))
	case models.PayloadDocument:
		doc := tgbotapi.NewDocument(uid, tgbotapi.FileID(p.FileID))
		doc.Caption = p.Caption
		msg = doc
	case models.PayloadVideoNote:
		msg = tgbotapi.NewVideoNote(uid, 0, tgbotapi.FileID(p.FileID))
	case models.PayloadAudio:
		msg = tgbotapi.NewAudio(uid, tgbotapi.FileID(p.FileID))
	default:
		return nil
	}
	if _, err := c.BotAPI.Send(msg); err != nil {
		return err
	}
	return nil
}

// Notify sends a plain text notice to uid.
func (c *Client) Notify(ctx context.Context, uid int64, text string) error {
	_, err := c.BotAPI.Send(tgbotapi.NewMessage(uid, text))
	return err
}
