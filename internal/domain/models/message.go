package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageDirection string

const (
	DirectionSent     MessageDirection = "sent"
	DirectionReceived MessageDirection = "received"
)

// Message is one chat message lifted out of a conversation thread. Direction
// is inferred from markup, never authoritative. Immutable once constructed.
type Message struct {
	ID          string           `json:"id"`
	Sender      string           `json:"sender"`
	Direction   MessageDirection `json:"direction"`
	Timestamp   time.Time        `json:"timestamp"`
	RawText     string           `json:"raw_text"`
	CleanedText string           `json:"cleaned_text"`
	Attachments []string         `json:"attachments"`
	SourceURL   string           `json:"source_url"`
}

func NewMessage(sender string, direction MessageDirection, timestamp time.Time,
	rawText string, attachments []string, sourceURL string) Message {

	return Message{
		ID:          uuid.NewString(),
		Sender:      sender,
		Direction:   direction,
		Timestamp:   timestamp,
		RawText:     rawText,
		CleanedText: CleanMessageText(rawText),
		Attachments: attachments,
		SourceURL:   sourceURL,
	}
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	bracketPrefixRe = regexp.MustCompile(`^\s*[\[\(].*?[\]\)]\s*`)
	trailingDotsRe  = regexp.MustCompile(`\s*\.\.\.\s*$`)
)

// CleanMessageText collapses whitespace and strips leading [..]/(..)
// fragments and trailing ellipses that chat markup injects around the text.
func CleanMessageText(raw string) string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	cleaned = bracketPrefixRe.ReplaceAllString(cleaned, "")
	cleaned = trailingDotsRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
