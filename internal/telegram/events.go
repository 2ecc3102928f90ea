package telegram

import (
	"anonchat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// payloadFromMessage converts an inbound Telegram message into a
// relayable payload. The second return is false for kinds the relay
// does not carry (polls, locations, contacts and so on).
func payloadFromMessage(m *tgbotapi.Message) (models.Payload, bool) {
	switch {
	case m.Text != "":
		return models.TextPayload(m.Text), true
	case m.Photo != nil && len(m.Photo) > 0:
		// Last size is the largest rendition Telegram offers.
		return models.Payload{
			Kind:    models.PayloadPhoto,
			FileID:  m.Photo[len(m.Photo)-1].FileID,
			Caption: m.Caption,
		}, true
	case m.Video != nil:
		return models.Payload{
			Kind:    models.PayloadVideo,
			FileID:  m.Video.FileID,
			Caption: m.Caption,
		}, true
	case m.Voice != nil:
		return models.Payload{Kind: models.PayloadVoice, FileID: m.Voice.FileID}, true
	case m.Sticker != nil:
		return models.Payload{
			Kind:   models.PayloadSticker,
			FileID: m.Sticker.FileID,
			Emoji:  m.Sticker.Emoji,
		}, true
	case m.Animation != nil:
		return models.Payload{Kind: models.PayloadAnimation, FileID: m.Animation.FileID}, true
	case m.VideoNote != nil:
		return models.Payload{Kind: models.PayloadVideoNote, FileID: m.VideoNote.FileID}, true
	case m.Audio != nil:
		return models.Payload{Kind: models.PayloadAudio, FileID: m.Audio.FileID}, true
	case m.Document != nil:
		return models.Payload{
			Kind:     models.PayloadDocument,
			FileID:   m.Document.FileID,
			Caption:  m.Caption,
			FileName: m.Document.FileName,
		}, true
	}
	return models.Payload{}, false
}
