package events

import "time"

var RunFinishedTopic = "RunFinishedEvent"

// RunFinished is published once per extraction job, successful or not, so the
// run ledger reflects every attempt.
type RunFinished struct {
	Kind       string
	Extracted  int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
	TraceID    string
}
