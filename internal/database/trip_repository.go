package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// TripRepository handles database operations for materialized trips
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts a concrete dated trip
func (r *TripRepository) Create(trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}

	query := `
		INSERT INTO trips (id, bus_id, travel_date, departure_time, arrival_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(query,
		trip.ID, trip.BusID, trip.TravelDate, trip.DepartureTime, trip.ArrivalTime,
	).Scan(&trip.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

// ExistsForBusAndDate reports whether a trip is already materialized for a
// bus on a calendar day. Date comparison is the half-open day window.
func (r *TripRepository) ExistsForBusAndDate(busID string, dayStart, dayEnd time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM trips
		WHERE bus_id = $1 AND travel_date >= $2 AND travel_date < $3
	`
	if err := r.db.Get(&count, query, busID, dayStart, dayEnd); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteOlderThan removes materialized trips before the cutoff date.
func (r *TripRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM trips WHERE travel_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old trips: %w", err)
	}
	return result.RowsAffected()
}
