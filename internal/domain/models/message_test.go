package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CleanMessageText_CollapsesWhitespace(t *testing.T) {
	got := CleanMessageText("  Hello,\n\n   we reviewed\tyour application  ")
	assert.Equal(t, "Hello, we reviewed your application", got)
}

func Test_CleanMessageText_StripsBracketPrefixAndEllipsis(t *testing.T) {
	got := CleanMessageText("[10:42] Thanks for applying...")
	assert.Equal(t, "Thanks for applying", got)

	got = CleanMessageText("(seen) Sounds good")
	assert.Equal(t, "Sounds good", got)
}

func Test_NewMessage_GeneratesIDAndCleansText(t *testing.T) {
	message := NewMessage("Acme HR", DirectionReceived, testNow,
		"  We would like   to invite you  ", nil, "https://internshala.com/chat")

	assert.NotEmpty(t, message.ID)
	assert.Equal(t, "We would like to invite you", message.CleanedText)
	assert.Equal(t, "  We would like   to invite you  ", message.RawText)

	other := NewMessage("Acme HR", DirectionReceived, testNow, "hi", nil, "")
	assert.NotEqual(t, message.ID, other.ID)
}
