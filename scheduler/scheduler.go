// Package scheduler runs the periodic maintenance jobs of the hub process.
package scheduler

import (
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/wfunc/gamestation/logger"
)

var ErrInvalidInterval = errors.New("job interval must be positive")

type Scheduler struct {
	sched gocron.Scheduler
}

func New() (*Scheduler, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(_ uuid.UUID, name string, err error) {
					logger.Log.Errorw("scheduled job failed", "job", name, "error", err)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Scheduler{sched: sched}, nil
}

// Every runs task every interval. A run that is still going when the next
// one is due makes the next one skip.
func (s *Scheduler) Every(name string, interval time.Duration, task func() error) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}
	logger.Log.Infow("job scheduled", "job", name, "interval", interval)
	return nil
}

// Names lists the scheduled jobs.
func (s *Scheduler) Names() []string {
	jobs := s.sched.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
