package relay

import "anonchat/backend/internal/models"

// Label classifies a payload into its transcript line: text verbatim,
// or a fixed bracketed tag for media, with the caption / file name
// appended where the original carried one.
func Label(p models.Payload) string {
	switch p.Kind {
	case models.PayloadText:
		return p.Text
	case models.PayloadPhoto:
		label := "[📷 Photo]"
		if p.Caption != "" {
			label += " | " + p.Caption
		}
		return label
	case models.PayloadVideo:
		return "[🎥 Video]"
	case models.PayloadVoice:
		return "[🎤 Voice]"
	case models.PayloadSticker:
		if p.Emoji != "" {
			return "[🎭 Sticker " + p.Emoji + "]"
		}
		return "[🎭 Sticker]"
	case models.PayloadAnimation:
		return "[GIF]"
	case models.PayloadDocument:
		if p.FileName != "" {
			return "[📎 " + p.FileName + "]"
		}
		return "[📎 Document]"
	case models.PayloadVideoNote:
		return "[⭕ Video note]"
	case models.PayloadAudio:
		return "[🎵 Audio]"
	}
	return "[unsupported]"
}
