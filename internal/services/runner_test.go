package services

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"internscout/internal/browser"
	"internscout/internal/config"
	"internscout/internal/limits"
)

func poolOf(t *testing.T, size int) []*browser.Session {
	rate, err := limits.NewRateLimiter(600, limits.SystemClock())
	assert.NoError(t, err)
	conc, err := limits.NewConcurrencyLimiter(size)
	assert.NoError(t, err)
	gate := limits.NewGate(rate, conc)

	sessions := make([]*browser.Session, size)
	for i := range sessions {
		sessions[i] = browser.NewSession(config.BrowserConfig{}, gate, "test1234")
	}
	return sessions
}

func Test_RunAll_WorksThroughEveryJob(t *testing.T) {

	runner := NewRunner(poolOf(t, 2), "test1234")

	var mu sync.Mutex
	ran := map[string]int{}
	job := func(kind string) Job {
		return Job{Kind: kind, Run: func(_ context.Context, _ *browser.Session) error {
			mu.Lock()
			defer mu.Unlock()
			ran[kind]++
			return nil
		}}
	}

	err := runner.RunAll(context.Background(), []Job{job("messages"), job("search"), job("export")})

	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"messages": 1, "search": 1, "export": 1}, ran)
}

func Test_RunAll_FirstErrorCancelsRemainingWork(t *testing.T) {

	runner := NewRunner(poolOf(t, 1), "test1234")

	var ran int
	jobs := []Job{
		{Kind: "messages", Run: func(_ context.Context, _ *browser.Session) error {
			ran++
			return errors.New("dead browser")
		}},
		{Kind: "search", Run: func(_ context.Context, _ *browser.Session) error {
			ran++
			return nil
		}},
	}

	err := runner.RunAll(context.Background(), jobs)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "messages job")
	assert.Equal(t, 1, ran)
}

func Test_RunAll_WithoutSessionsFails(t *testing.T) {

	runner := NewRunner(nil, "test1234")

	err := runner.RunAll(context.Background(), []Job{})
	assert.Error(t, err)
}
