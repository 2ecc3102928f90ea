package models

// PayloadKind is the closed set of relayable payload kinds. The relay
// router switches over it exhaustively; adding a kind is a compile-time
// checked change, not a string comparison.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadPhoto
	PayloadVideo
	PayloadVoice
	PayloadSticker
	PayloadAnimation
	PayloadDocument
	PayloadVideoNote
	PayloadAudio
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadPhoto:
		return "photo"
	case PayloadVideo:
		return "video"
	case PayloadVoice:
		return "voice"
	case PayloadSticker:
		return "sticker"
	case PayloadAnimation:
		return "animation"
	case PayloadDocument:
		return "document"
	case PayloadVideoNote:
		return "video_note"
	case PayloadAudio:
		return "audio"
	}
	return "unknown"
}

// Payload is one relayable message body. Text carries the message for
// PayloadText; media kinds carry the platform file reference plus the
// optional caption / sticker emoji / document file name.
type Payload struct {
	Kind     PayloadKind
	Text     string
	FileID   string
	Caption  string
	Emoji    string
	FileName string
}

// TextPayload is a convenience constructor for plain-text payloads.
func TextPayload(text string) Payload {
	return Payload{Kind: PayloadText, Text: text}
}

// EventKind tags an InboundEvent.
type EventKind int

const (
	// EventMessage is a relayable payload (text or media).
	EventMessage EventKind = iota
	// EventCommand is a slash command or menu button press.
	EventCommand
	// EventCallback is an inline-keyboard callback action.
	EventCallback
)

// InboundEvent is the core's view of one inbound platform event. The
// transport layer never hands framework envelopes past this point.
type InboundEvent struct {
	UserID int64
	Kind   EventKind

	// Payload is set for EventMessage.
	Payload Payload
	// Command and Args are set for EventCommand.
	Command string
	Args    string
	// Action is set for EventCallback.
	Action string
}
