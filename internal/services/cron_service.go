package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron             *cron.Cron
	tripGeneratorSvc *TripGeneratorService
	generateSpec     string
	log              *logrus.Logger
}

// NewCronService creates a new CronService. generateSpec is a six-field
// cron expression with seconds precision.
func NewCronService(tripGeneratorSvc *TripGeneratorService, generateSpec string, log *logrus.Logger) *CronService {
	return &CronService{
		cron:             cron.New(cron.WithSeconds()),
		tripGeneratorSvc: tripGeneratorSvc,
		generateSpec:     generateSpec,
		log:              log,
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.generateSpec, s.generateTripsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule trip generation job: %w", err)
	}

	// Old trips roll off an hour after the generation pass.
	_, err = s.cron.AddFunc("0 0 3 * * *", s.cleanupTripsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule trip cleanup job: %w", err)
	}

	s.cron.Start()
	s.log.WithField("generate_spec", s.generateSpec).Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Cron service stopped")
}

// RunGenerateNow runs the trip generation job immediately. Exposed to
// the admin trigger endpoint.
func (s *CronService) RunGenerateNow() (int, error) {
	return s.tripGeneratorSvc.GenerateUpcoming()
}

func (s *CronService) generateTripsJob() {
	start := time.Now()
	generated, err := s.tripGeneratorSvc.GenerateUpcoming()
	if err != nil {
		s.log.WithError(err).Error("Trip generation job failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"generated": generated,
		"duration":  time.Since(start).String(),
	}).Info("Trip generation job completed")
}

func (s *CronService) cleanupTripsJob() {
	removed, err := s.tripGeneratorSvc.CleanupOldTrips()
	if err != nil {
		s.log.WithError(err).Error("Trip cleanup job failed")
		return
	}
	s.log.WithField("removed", removed).Info("Trip cleanup job completed")
}
