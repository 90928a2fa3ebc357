package entity

// InboundMessage is the normalized view of a chat-platform update. It is
// derived, never persisted, and only constructed when the update carries one
// of the recognized message variants.
type InboundMessage struct {
	// Text is the message text or caption, trimmed; empty when the update
	// carried neither.
	Text string

	// From is the display identity of the sender: "@handle" when a username
	// is known, otherwise "first last", otherwise "unknown".
	From string

	// ChatID is the originating conversation, when known. Opaque to this
	// service; callback events may lack it entirely.
	ChatID *int64
}
