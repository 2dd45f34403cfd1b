package entities

import "time"

type ExtractionRun struct {
	ID         int `gorm:"primaryKey"`
	TraceID    string
	Kind       string
	Extracted  int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}
