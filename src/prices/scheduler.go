package prices

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

// Job is a unit of scheduled work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs jobs on cron expressions with a seconds field.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Entry
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  logger.WithField("component", "scheduler"),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers job on schedule, e.g. "0 30 22 * * MON-FRI" or "@every 1h".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.WithField("job", job.Name()).Debug("Running job")

		if err := job.Run(); err != nil {
			s.log.WithError(err).WithField("job", job.Name()).Error("Job failed")
			return
		}
		s.log.WithField("job", job.Name()).Debug("Job completed")
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logger.Fields{
		"schedule": schedule,
		"job":      job.Name(),
	}).Info("Job registered")

	return nil
}

// RefreshJob adapts a Refresher to the scheduler.
type RefreshJob struct {
	Refresher *Refresher
	Timeout   time.Duration
}

func (j RefreshJob) Name() string {
	return "historical-price-refresh"
}

func (j RefreshJob) Run() error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := j.Refresher.Refresh(ctx)
	return err
}
