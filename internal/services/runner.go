package services

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"internscout/internal/browser"
	"internscout/internal/logger"
)

// Job is one unit of extraction work bound to whichever session picks it up.
// Results leave through the job's own closure; the runner only moves work.
type Job struct {
	Kind string
	Run  func(ctx context.Context, session *browser.Session) error
}

// Runner fans jobs out over a pool of authenticated browser sessions. All
// sessions share one gate, so pooling raises throughput only up to the
// configured rate and concurrency ceilings.
type Runner struct {
	sessions []*browser.Session
	log      *log.Entry
}

func NewRunner(sessions []*browser.Session, traceID string) *Runner {
	return &Runner{sessions: sessions, log: logger.WithTrace(traceID)}
}

// RunAll works through the jobs on the session pool and blocks until all
// finish. The first fatal error cancels the remaining work; jobs contain
// their own partial failures and rarely surface one.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) error {
	if len(r.sessions) == 0 {
		return errors.New("no sessions to run jobs on")
	}

	queue := make(chan Job)
	group, groupCtx := errgroup.WithContext(ctx)

	for i, session := range r.sessions {
		worker := i + 1
		session := session
		group.Go(func() error {
			for job := range queue {
				r.log.Infof("session %d running %s job", worker, job.Kind)
				if err := job.Run(groupCtx, session); err != nil {
					return errors.Wrapf(err, "%s job", job.Kind)
				}
			}
			return nil
		})
	}

	group.Go(func() error {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}
		return nil
	})

	return group.Wait()
}
