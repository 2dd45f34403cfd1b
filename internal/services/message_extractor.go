package services

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"internscout/internal/domain/models"
	"internscout/internal/extract"
	"internscout/internal/logger"
	"internscout/internal/metrics"
)

// chatSession is the slice of the browser session the extractor needs.
type chatSession interface {
	Navigate(ctx context.Context, url string) error
	OpenByClick(ctx context.Context, selector string, nth int) (bool, error)
	WaitVisible(selector string, timeoutMs float64) bool
	Count(selector string) int
	Content() (string, error)
	URL() string
}

const (
	messagesPath      = "/student/messages"
	chatSurfaceWaitMs = 15000
)

// chatSurfaceSelector matches any of the containers the messages page renders
// depending on layout variant.
const chatSurfaceSelector = ".messaging-container, .chat-container, .messages-list"

var (
	threadSelectors = []string{
		".chat-list .chat-item",
		".conversation-list .conversation",
		".message-threads .thread",
	}

	messageNodeSelectors = []string{
		".chat-messages .message",
		".conversation-messages .msg",
		".message-list .message-item",
		".messages .message-bubble",
	}

	messageContentField = extract.Field{
		Name:      "content",
		Selectors: []string{".message-text", ".message-content", ".msg-text", ".text", ".content"},
	}
	messageSenderField = extract.Field{
		Name:      "sender",
		Selectors: []string{".sender-name", ".message-sender", ".from", ".author"},
	}
	messageTimeField = extract.Field{
		Name:      "time",
		Selectors: []string{".timestamp", ".message-time", ".time", ".date"},
	}
	// Attachment links are spread across markup variants within one message,
	// so the candidates are unioned rather than taken first-match.
	messageAttachmentField = extract.Field{
		Name:      "attachments",
		Selectors: []string{".attachment a", ".file-link", ".document-link", "a[href*='attachment']"},
		Attr:      "href",
	}
)

// MessageExtractionOptions bound one extraction run. Zero limits mean
// unbounded, zero SinceDays means no age cutoff.
type MessageExtractionOptions struct {
	ConversationLimit    int
	PerConversationLimit int
	IncludeSent          bool
	IncludeReceived      bool
	SinceDays            int
}

// ExtractionReport counts the units a run handled. A unit is one conversation
// for message extraction and one listing card for scraping. Skipped units
// failed to yield a record; they never abort the run.
type ExtractionReport struct {
	Processed int
	Skipped   int
}

type MessageExtractor struct {
	session chatSession
	baseURL string
	now     func() time.Time
	log     *log.Entry
}

func NewMessageExtractor(session chatSession, baseURL string, traceID string) *MessageExtractor {
	return &MessageExtractor{
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		log:     logger.WithTrace(traceID),
	}
}

// ExtractAll walks every conversation thread on the messages page and lifts
// its messages out of the markup. A conversation that cannot be opened or
// parsed is counted as skipped and the walk moves on; only a dead session or
// a cancelled context aborts the run.
func (e *MessageExtractor) ExtractAll(ctx context.Context, opts MessageExtractionOptions) ([]models.Message, ExtractionReport, error) {
	var report ExtractionReport

	if err := e.session.Navigate(ctx, e.baseURL+messagesPath); err != nil {
		return nil, report, err
	}

	if !e.session.WaitVisible(chatSurfaceSelector, chatSurfaceWaitMs) {
		e.log.Warn("messages page did not render a chat surface")
		return nil, report, nil
	}

	threadSelector, threads := e.findThreads()
	if threads == 0 {
		e.log.Info("no conversation threads found")
		return nil, report, nil
	}

	if opts.ConversationLimit > 0 && threads > opts.ConversationLimit {
		threads = opts.ConversationLimit
	}
	e.log.Infof("extracting messages from %d conversations", threads)

	var messages []models.Message
	for i := 0; i < threads; i++ {
		select {
		case <-ctx.Done():
			return messages, report, ctx.Err()
		default:
		}

		extracted, ok, err := e.extractConversation(ctx, threadSelector, i, opts)
		if err != nil {
			return messages, report, err
		}
		if !ok {
			report.Skipped++
			metrics.RecordsSkipped.WithLabelValues("conversation").Inc()
			continue
		}

		report.Processed++
		messages = append(messages, extracted...)
		metrics.RecordsExtracted.WithLabelValues("message").Add(float64(len(extracted)))
	}

	e.log.Infof("extraction complete: %d messages from %d conversations, %d skipped",
		len(messages), report.Processed, report.Skipped)
	return messages, report, nil
}

// findThreads probes the thread selector candidates and returns the first one
// that matches anything, with its match count.
func (e *MessageExtractor) findThreads() (string, int) {
	for _, selector := range threadSelectors {
		if count := e.session.Count(selector); count > 0 {
			e.log.Debugf("found %d threads with selector %s", count, selector)
			return selector, count
		}
	}
	return "", 0
}

// extractConversation opens the nth thread and parses its messages. The bool
// reports whether the conversation was readable at all; a readable thread
// with zero extractable messages still counts as processed.
func (e *MessageExtractor) extractConversation(ctx context.Context, threadSelector string, nth int,
	opts MessageExtractionOptions) ([]models.Message, bool, error) {

	opened, err := e.session.OpenByClick(ctx, threadSelector, nth)
	if err != nil {
		return nil, false, err
	}
	if !opened {
		e.log.Warnf("could not open conversation %d", nth+1)
		return nil, false, nil
	}

	html, err := e.session.Content()
	if err != nil {
		return nil, false, err
	}
	if html == "" {
		e.log.Warnf("conversation %d rendered no content", nth+1)
		return nil, false, nil
	}

	doc, err := extract.Document(html)
	if err != nil {
		e.log.WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
			Warnf("failed to parse conversation %d: %v", nth+1, err)
		return nil, false, nil
	}

	nodes, found := extract.FirstMatch(doc.Selection, messageNodeSelectors...)
	if !found {
		e.log.Debugf("conversation %d has no recognizable messages", nth+1)
		return nil, true, nil
	}

	var cutoff time.Time
	if opts.SinceDays > 0 {
		cutoff = e.now().AddDate(0, 0, -opts.SinceDays)
	}

	sourceURL := e.session.URL()
	var messages []models.Message
	nodes.EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if opts.PerConversationLimit > 0 && len(messages) >= opts.PerConversationLimit {
			return false
		}

		direction := extract.Direction(node)
		if direction == models.DirectionSent && !opts.IncludeSent {
			return true
		}
		if direction == models.DirectionReceived && !opts.IncludeReceived {
			return true
		}

		message, ok := e.buildMessage(node, direction, sourceURL)
		if !ok {
			return true
		}
		if !cutoff.IsZero() && message.Timestamp.Before(cutoff) {
			return true
		}

		messages = append(messages, message)
		return true
	})

	return messages, true, nil
}

// buildMessage resolves the fields of one message node. A node without any
// textual content is not a message (reaction bubbles, typing indicators).
func (e *MessageExtractor) buildMessage(node *goquery.Selection, direction models.MessageDirection,
	sourceURL string) (models.Message, bool) {

	content, ok := extract.ResolveOrSelf(node, messageContentField)
	if !ok {
		return models.Message{}, false
	}

	sender, ok := extract.Resolve(node, messageSenderField)
	if !ok {
		sender = lo.Ternary(direction == models.DirectionSent, "You", "Company Representative")
	}

	timestamp := e.now()
	if timeText, ok := extract.Resolve(node, messageTimeField); ok {
		timestamp = models.ParseMessageTime(timeText, e.now())
	}

	attachments := extract.CollectAll(node, messageAttachmentField)

	return models.NewMessage(sender, direction, timestamp, content, attachments, sourceURL), true
}
