package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"internscout/internal/domain/events"
	"internscout/internal/entities"
)

type mockRunArchive struct {
	mock.Mock
}

func (m *mockRunArchive) Add(ctx context.Context, run entities.ExtractionRun) error {
	return m.Called(ctx, run).Error(0)
}

func Test_RunRecorder_PersistsFinishedRuns(t *testing.T) {

	bus := EventBus.New()
	runs := &mockRunArchive{}
	runs.On("Add", mock.Anything, mock.MatchedBy(func(run entities.ExtractionRun) bool {
		return run.Kind == "messages" && run.Extracted == 12 && run.Skipped == 1 && run.TraceID == "test1234"
	})).Return(nil).Once()

	_, err := NewRunRecorder(bus, runs)
	assert.NoError(t, err)

	finished := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bus.Publish(events.RunFinishedTopic, events.RunFinished{
		Kind:       "messages",
		Extracted:  12,
		Skipped:    1,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		TraceID:    "test1234",
	})

	runs.AssertExpectations(t)
}
