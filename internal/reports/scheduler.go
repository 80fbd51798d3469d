package reports

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/buildledger/buildledger-backend/internal/log"
)

// Scheduler runs the snapshot job nightly at 12:00 AM.
type Scheduler struct {
	service *Service
	logger  *log.Logger
	cron    *cron.Cron
}

func NewScheduler(service *Service, logger *log.Logger) *Scheduler {
	return &Scheduler{
		service: service,
		logger:  logger.WithComponent("scheduler"),
	}
}

func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	// (12:00 AM)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		s.logger.Info("nightly snapshot job started")
		if err := s.service.RunSnapshot(ctx); err != nil {
			s.logger.Error("nightly snapshot job failed", "error", err)
			return
		}
		s.logger.Info("nightly snapshot job completed")
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	s.logger.Info("cron scheduler started (running nightly at 12:00AM)")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}
