package telegram

import (
	"testing"

	"anonchat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestPayloadFromMessage_Text(t *testing.T) {
	p, ok := payloadFromMessage(&tgbotapi.Message{Text: "hello"})

	assert.True(t, ok)
	assert.Equal(t, models.PayloadText, p.Kind)
	assert.Equal(t, "hello", p.Text)
}

func TestPayloadFromMessage_PhotoPicksLargest(t *testing.T) {
	m := &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "large", Width: 800},
		},
		Caption: "sunset",
	}

	p, ok := payloadFromMessage(m)

	assert.True(t, ok)
	assert.Equal(t, models.PayloadPhoto, p.Kind)
	assert.Equal(t, "large", p.FileID)
	assert.Equal(t, "sunset", p.Caption)
}

func TestPayloadFromMessage_Sticker(t *testing.T) {
	m := &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "stk", Emoji: "😀"}}

	p, ok := payloadFromMessage(m)

	assert.True(t, ok)
	assert.Equal(t, models.PayloadSticker, p.Kind)
	assert.Equal(t, "😀", p.Emoji)
}

func TestPayloadFromMessage_Document(t *testing.T) {
	m := &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", FileName: "cv.pdf"}}

	p, ok := payloadFromMessage(m)

	assert.True(t, ok)
	assert.Equal(t, models.PayloadDocument, p.Kind)
	assert.Equal(t, "cv.pdf", p.FileName)
}

func TestPayloadFromMessage_Unsupported(t *testing.T) {
	_, ok := payloadFromMessage(&tgbotapi.Message{Location: &tgbotapi.Location{}})

	assert.False(t, ok)
}
