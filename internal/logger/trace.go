package logger

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const TraceIDField = "trace_id"

// NewTraceID returns a short identifier that correlates all log lines of one
// extraction run.
func NewTraceID() string {
	return uuid.NewString()[:8]
}

func WithTrace(traceID string) *log.Entry {
	return log.WithField(TraceIDField, traceID)
}
