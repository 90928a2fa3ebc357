package dto

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/presencelab/beacon-bridge/internal/domain/entity"
)

// messageVariants are the update shapes that carry a message directly, in
// priority order. callback_query is handled separately because its message
// value has to be synthesized.
var messageVariants = []string{
	"message",
	"edited_message",
	"channel_post",
	"edited_channel_post",
}

// NormalizeUpdate extracts a normalized InboundMessage from a raw
// chat-platform update of arbitrary shape.
//
// Returns nil when the payload is not valid JSON or none of the recognized
// variants is present; that signals "not actionable", not an error. The
// function is total: structurally unexpected input degrades to empty fields,
// never a panic.
func NormalizeUpdate(raw []byte) *entity.InboundMessage {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	update := gjson.ParseBytes(raw)
	if !update.IsObject() {
		return nil
	}

	var text string
	var sender, chat gjson.Result
	found := false

	for _, key := range messageVariants {
		m := update.Get(key)
		if !m.Exists() {
			continue
		}
		text = m.Get("text").String()
		if text == "" {
			text = m.Get("caption").String()
		}
		sender = m.Get("from")
		chat = m.Get("chat")
		found = true
		break
	}

	if !found {
		// A callback event carries no message text of its own; its attached
		// data payload stands in for it. The chat comes from the callback's
		// associated message, which may itself be absent.
		cq := update.Get("callback_query")
		if !cq.Exists() {
			return nil
		}
		text = cq.Get("data").String()
		sender = cq.Get("from")
		chat = cq.Get("message.chat")
	}

	msg := &entity.InboundMessage{
		Text: strings.TrimSpace(text),
		From: actorLabel(sender),
	}
	if id := chat.Get("id"); id.Exists() {
		chatID := id.Int()
		msg.ChatID = &chatID
	}
	return msg
}

// actorLabel derives the display identity for a sender: a unique handle when
// known, otherwise the joined name parts, otherwise "unknown". This is the
// single place the derivation lives; log entries and the beacon record both
// go through it.
func actorLabel(sender gjson.Result) string {
	if username := sender.Get("username").String(); username != "" {
		return "@" + username
	}
	parts := make([]string, 0, 2)
	for _, key := range []string{"first_name", "last_name"} {
		if v := sender.Get(key).String(); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return "unknown"
}

// TopLevelKeys lists the top-level keys of a raw update, for the
// last-parsed-update breadcrumb. Returns nil for payloads that are not JSON
// objects.
func TopLevelKeys(raw []byte) []string {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	update := gjson.ParseBytes(raw)
	if !update.IsObject() {
		return nil
	}
	var keys []string
	update.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}
