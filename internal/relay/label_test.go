package relay_test

import (
	"testing"

	"anonchat/backend/internal/models"
	"anonchat/backend/internal/relay"

	"github.com/stretchr/testify/assert"
)

func TestLabel_TextIsVerbatim(t *testing.T) {
	assert.Equal(t, "hello there", relay.Label(models.TextPayload("hello there")))
}

func TestLabel_Media(t *testing.T) {
	cases := []struct {
		name    string
		payload models.Payload
		want    string
	}{
		{"photo", models.Payload{Kind: models.PayloadPhoto}, "[📷 Photo]"},
		{"photo with caption", models.Payload{Kind: models.PayloadPhoto, Caption: "sunset"}, "[📷 Photo] | sunset"},
		{"video", models.Payload{Kind: models.PayloadVideo}, "[🎥 Video]"},
		{"voice", models.Payload{Kind: models.PayloadVoice}, "[🎤 Voice]"},
		{"sticker", models.Payload{Kind: models.PayloadSticker, Emoji: "😀"}, "[🎭 Sticker 😀]"},
		{"sticker without emoji", models.Payload{Kind: models.PayloadSticker}, "[🎭 Sticker]"},
		{"animation", models.Payload{Kind: models.PayloadAnimation}, "[GIF]"},
		{"document", models.Payload{Kind: models.PayloadDocument, FileName: "cv.pdf"}, "[📎 cv.pdf]"},
		{"document without name", models.Payload{Kind: models.PayloadDocument}, "[📎 Document]"},
		{"video note", models.Payload{Kind: models.PayloadVideoNote}, "[⭕ Video note]"},
		{"audio", models.Payload{Kind: models.PayloadAudio}, "[🎵 Audio]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, relay.Label(tc.payload))
		})
	}
}
