package entity

// LogEntry is one append-only record per actionable inbound message,
// including /off commands. Entries are never mutated after creation and the
// log is never pruned by this service.
type LogEntry struct {
	From       string `json:"from"`
	Body       string `json:"body"`
	ChatID     *int64 `json:"chatId,omitempty"`
	ReceivedAt int64  `json:"receivedAt"`
}
