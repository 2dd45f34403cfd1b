package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"internscout/internal/domain/events"
	"internscout/internal/entities"
	"internscout/internal/logger"
)

type runArchive interface {
	Add(ctx context.Context, run entities.ExtractionRun) error
}

// RunRecorder persists one ledger row per finished extraction job.
type RunRecorder struct {
	bus  EventBus.Bus
	runs runArchive
}

func NewRunRecorder(bus EventBus.Bus, runs runArchive) (*RunRecorder, error) {
	recorder := &RunRecorder{bus: bus, runs: runs}

	if err := bus.Subscribe(events.RunFinishedTopic, recorder.onRunFinished); err != nil {
		return nil, err
	}
	return recorder, nil
}

func (r *RunRecorder) onRunFinished(event events.RunFinished) {
	run := entities.ExtractionRun{
		TraceID:    event.TraceID,
		Kind:       event.Kind,
		Extracted:  event.Extracted,
		Skipped:    event.Skipped,
		StartedAt:  event.StartedAt,
		FinishedAt: event.FinishedAt,
	}

	if err := r.runs.Add(context.Background(), run); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record extraction run: %v", err)
	}
}
