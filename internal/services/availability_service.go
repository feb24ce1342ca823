package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// ErrSeatCountMismatch signals that a bus's persisted seat rows do not
// match the count its configuration implies. Availability cannot be
// resolved over a corrupt seat template.
var ErrSeatCountMismatch = errors.New("persisted seat count does not match bus configuration")

// AvailabilityService resolves per-date seat availability. Status is
// pure set membership: a seat is booked for a date exactly when a
// non-canceled booking holds it inside that date's day window. Nothing
// is cached; every request recomputes against current booking rows.
type AvailabilityService struct {
	busRepo     *database.BusRepository
	seatRepo    *database.SeatRepository
	bookingRepo *database.BookingRepository
	layout      *SeatLayoutService
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	busRepo *database.BusRepository,
	seatRepo *database.SeatRepository,
	bookingRepo *database.BookingRepository,
	layout *SeatLayoutService,
) *AvailabilityService {
	return &AvailabilityService{
		busRepo:     busRepo,
		seatRepo:    seatRepo,
		bookingRepo: bookingRepo,
		layout:      layout,
	}
}

// DayWindow converts a YYYY-MM-DD travel date into its half-open UTC
// day interval [00:00, next day 00:00). Every date-scoped query in the
// system goes through this one definition.
func DayWindow(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return day, day.AddDate(0, 0, 1), nil
}

// Resolve returns the full seat chart of a bus with per-seat status for
// one travel date.
func (s *AvailabilityService) Resolve(busID, date string) (*models.SeatMap, error) {
	dayStart, dayEnd, err := DayWindow(date)
	if err != nil {
		return nil, err
	}

	bus, err := s.busRepo.GetByID(busID)
	if err != nil {
		return nil, err
	}

	seats, err := s.seatRepo.GetByBusID(busID)
	if err != nil {
		return nil, err
	}
	if len(seats) != bus.Configuration.TotalSeats() {
		return nil, fmt.Errorf("%w: bus %s has %d seats, configuration %s implies %d",
			ErrSeatCountMismatch, busID, len(seats), bus.Configuration, bus.Configuration.TotalSeats())
	}

	bookedIDs, err := s.bookingRepo.BookedSeatIDs(busID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]bool, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = true
	}

	return s.layout.BuildSeatMap(bus, seats, booked, date), nil
}

// AvailableCount returns how many seats of a bus remain open on a date.
// Used by search results; same membership rule as Resolve.
func (s *AvailabilityService) AvailableCount(busID, date string) (int, error) {
	dayStart, dayEnd, err := DayWindow(date)
	if err != nil {
		return 0, err
	}

	total, err := s.seatRepo.CountByBusID(busID)
	if err != nil {
		return 0, err
	}

	bookedIDs, err := s.bookingRepo.BookedSeatIDs(busID, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	return total - len(bookedIDs), nil
}
