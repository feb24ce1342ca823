package services

import (
	"database/sql"

	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// SearchResult is one bus serving a searched route on a travel date.
type SearchResult struct {
	Bus            models.Bus `json:"bus"`
	Date           string     `json:"date"`
	DepartureTime  string     `json:"departure_time"`
	ArrivalTime    string     `json:"arrival_time"`
	AvailableSeats int        `json:"available_seats"`
}

// SearchService finds buses serving a route on a date. A bus appears in
// results only when its recurring trip covers the date's weekday; buses
// without a schedule never surface.
type SearchService struct {
	busRepo           *database.BusRepository
	recurringTripRepo *database.RecurringTripRepository
	availability      *AvailabilityService
}

// NewSearchService creates a new SearchService
func NewSearchService(
	busRepo *database.BusRepository,
	recurringTripRepo *database.RecurringTripRepository,
	availability *AvailabilityService,
) *SearchService {
	return &SearchService{
		busRepo:           busRepo,
		recurringTripRepo: recurringTripRepo,
		availability:      availability,
	}
}

// Search returns the buses serving the route on the given date, with
// live seat availability. Route matching is case-insensitive on place
// names; an unknown route yields an empty result, not an error.
func (s *SearchService) Search(from, to, date string) ([]SearchResult, error) {
	dayStart, _, err := DayWindow(date)
	if err != nil {
		return nil, err
	}

	buses, err := s.busRepo.GetByRoute(from, to)
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	for _, bus := range buses {
		trip, err := s.recurringTripRepo.GetByBusID(bus.ID)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, err
		}
		if !trip.OperatesOn(dayStart) {
			continue
		}

		available, err := s.availability.AvailableCount(bus.ID, date)
		if err != nil {
			return nil, err
		}

		results = append(results, SearchResult{
			Bus:            bus,
			Date:           date,
			DepartureTime:  trip.DepartureTime,
			ArrivalTime:    trip.ArrivalTime,
			AvailableSeats: available,
		})
	}

	return results, nil
}
