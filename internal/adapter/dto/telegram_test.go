package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUpdate_MessageVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		text string
		from string
	}{
		{
			name: "plain message",
			raw:  `{"message":{"text":"hello","from":{"username":"alice"},"chat":{"id":1}}}`,
			text: "hello",
			from: "@alice",
		},
		{
			name: "edited message",
			raw:  `{"edited_message":{"text":"fixed","from":{"username":"bob"},"chat":{"id":2}}}`,
			text: "fixed",
			from: "@bob",
		},
		{
			name: "channel post has no sender",
			raw:  `{"channel_post":{"text":"announce","chat":{"id":-100}}}`,
			text: "announce",
			from: "unknown",
		},
		{
			name: "edited channel post",
			raw:  `{"edited_channel_post":{"text":"re-announce","chat":{"id":-100}}}`,
			text: "re-announce",
			from: "unknown",
		},
		{
			name: "caption stands in for text",
			raw:  `{"message":{"caption":"a photo","from":{"username":"carol"},"chat":{"id":3}}}`,
			text: "a photo",
			from: "@carol",
		},
		{
			name: "callback query uses data payload",
			raw:  `{"callback_query":{"data":"/on 5m","from":{"username":"dave"},"message":{"chat":{"id":4}}}}`,
			text: "/on 5m",
			from: "@dave",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NormalizeUpdate([]byte(tt.raw))
			require.NotNil(t, msg)
			assert.Equal(t, tt.text, msg.Text)
			assert.Equal(t, tt.from, msg.From)
		})
	}
}

func TestNormalizeUpdate_NotActionable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"unrecognized variant", `{"update_id":5,"poll":{"id":"p1"}}`},
		{"invalid json", `{nope`},
		{"json array", `[1,2,3]`},
		{"json scalar", `"hi"`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, NormalizeUpdate([]byte(tt.raw)))
		})
	}
}

func TestNormalizeUpdate_StructurallyUnexpected(t *testing.T) {
	// Wrong types in expected places must degrade, not panic.
	tests := []struct {
		name string
		raw  string
		text string
		from string
	}{
		{
			name: "message is a string",
			raw:  `{"message":"what"}`,
			text: "",
			from: "unknown",
		},
		{
			name: "from is an array",
			raw:  `{"message":{"text":"hi","from":[1,2],"chat":{"id":9}}}`,
			text: "hi",
			from: "unknown",
		},
		{
			name: "numeric text coerces to string",
			raw:  `{"message":{"text":123,"chat":{"id":9}}}`,
			text: "123",
			from: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NormalizeUpdate([]byte(tt.raw))
			require.NotNil(t, msg)
			assert.Equal(t, tt.text, msg.Text)
			assert.Equal(t, tt.from, msg.From)
		})
	}
}

func TestNormalizeUpdate_ActorLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		from string
	}{
		{
			name: "username wins over names",
			raw:  `{"message":{"text":"x","from":{"username":"u","first_name":"First","last_name":"Last"}}}`,
			from: "@u",
		},
		{
			name: "first and last name joined",
			raw:  `{"message":{"text":"x","from":{"first_name":"First","last_name":"Last"}}}`,
			from: "First Last",
		},
		{
			name: "first name only",
			raw:  `{"message":{"text":"x","from":{"first_name":"First"}}}`,
			from: "First",
		},
		{
			name: "no identity",
			raw:  `{"message":{"text":"x","from":{}}}`,
			from: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NormalizeUpdate([]byte(tt.raw))
			require.NotNil(t, msg)
			assert.Equal(t, tt.from, msg.From)
		})
	}
}

func TestNormalizeUpdate_ChatID(t *testing.T) {
	msg := NormalizeUpdate([]byte(`{"message":{"text":"x","chat":{"id":-1001234}}}`))
	require.NotNil(t, msg)
	require.NotNil(t, msg.ChatID)
	assert.Equal(t, int64(-1001234), *msg.ChatID)

	msg = NormalizeUpdate([]byte(`{"message":{"text":"x"}}`))
	require.NotNil(t, msg)
	assert.Nil(t, msg.ChatID)
}

func TestNormalizeUpdate_TrimsText(t *testing.T) {
	msg := NormalizeUpdate([]byte(`{"message":{"text":"  /off  "}}`))
	require.NotNil(t, msg)
	assert.Equal(t, "/off", msg.Text)
}

func TestTopLevelKeys(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"update_id", "message"},
		TopLevelKeys([]byte(`{"update_id":1,"message":{}}`)),
	)
	assert.Nil(t, TopLevelKeys([]byte(`[1]`)))
	assert.Nil(t, TopLevelKeys([]byte(`{bad`)))
}
