package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// TripGeneratorService materializes concrete dated trips from recurring
// schedules, keeping a rolling window of upcoming days populated.
type TripGeneratorService struct {
	recurringTripRepo *database.RecurringTripRepository
	tripRepo          *database.TripRepository
	daysAhead         int
	log               *logrus.Logger
}

// NewTripGeneratorService creates a new TripGeneratorService
func NewTripGeneratorService(
	recurringTripRepo *database.RecurringTripRepository,
	tripRepo *database.TripRepository,
	daysAhead int,
	log *logrus.Logger,
) *TripGeneratorService {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	return &TripGeneratorService{
		recurringTripRepo: recurringTripRepo,
		tripRepo:          tripRepo,
		daysAhead:         daysAhead,
		log:               log,
	}
}

// GenerateUpcoming materializes trips for every recurring schedule over
// the rolling window, starting today. Existing trips are skipped, so the
// job is safe to re-run at any time.
func (s *TripGeneratorService) GenerateUpcoming() (int, error) {
	schedules, err := s.recurringTripRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch recurring trips: %w", err)
	}

	generated := 0
	for i := range schedules {
		n, err := s.GenerateForSchedule(&schedules[i])
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"recurring_trip_id": schedules[i].ID,
				"bus_id":            schedules[i].BusID,
				"error":             err.Error(),
			}).Error("Trip generation failed for schedule")
			continue
		}
		generated += n
	}

	return generated, nil
}

// GenerateForSchedule materializes the rolling window for one schedule.
// Called on schedule creation and from the daily job.
func (s *TripGeneratorService) GenerateForSchedule(schedule *models.RecurringTrip) (int, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	generated := 0
	for offset := 0; offset < s.daysAhead; offset++ {
		date := today.AddDate(0, 0, offset)
		if !schedule.OperatesOn(date) {
			continue
		}

		dayEnd := date.AddDate(0, 0, 1)
		exists, err := s.tripRepo.ExistsForBusAndDate(schedule.BusID, date, dayEnd)
		if err != nil {
			return generated, fmt.Errorf("failed to check existing trip: %w", err)
		}
		if exists {
			continue
		}

		trip := &models.Trip{
			BusID:         schedule.BusID,
			TravelDate:    date,
			DepartureTime: schedule.DepartureTime,
			ArrivalTime:   schedule.ArrivalTime,
		}
		if err := s.tripRepo.Create(trip); err != nil {
			return generated, fmt.Errorf("failed to create trip for %s: %w", date.Format("2006-01-02"), err)
		}
		generated++
	}

	return generated, nil
}

// CleanupOldTrips removes materialized trips whose travel date has
// passed. Bookings and their history are untouched.
func (s *TripGeneratorService) CleanupOldTrips() (int64, error) {
	cutoff := time.Now().UTC().Truncate(24 * time.Hour)
	return s.tripRepo.DeleteOlderThan(cutoff)
}
