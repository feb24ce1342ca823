package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// RecurringTripRepository handles database operations for recurring trips
type RecurringTripRepository struct {
	db DB
}

// NewRecurringTripRepository creates a new RecurringTripRepository
func NewRecurringTripRepository(db DB) *RecurringTripRepository {
	return &RecurringTripRepository{db: db}
}

// Create inserts a recurring trip. A bus carries at most one; creating a
// second returns ErrRecurringTripExists.
func (r *RecurringTripRepository) Create(trip *models.RecurringTrip) error {
	existing, err := r.GetByBusID(trip.BusID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing recurring trip: %w", err)
	}
	if existing != nil {
		return ErrRecurringTripExists
	}

	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}

	query := `
		INSERT INTO recurring_trips (id, bus_id, operator_id, departure_time, arrival_time, days_of_week)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRow(query,
		trip.ID, trip.BusID, trip.OperatorID, trip.DepartureTime, trip.ArrivalTime, trip.DaysOfWeek,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRecurringTripExists
		}
		return fmt.Errorf("failed to create recurring trip: %w", err)
	}
	return nil
}

// GetByID retrieves a recurring trip by ID
func (r *RecurringTripRepository) GetByID(tripID string) (*models.RecurringTrip, error) {
	query := `
		SELECT id, bus_id, operator_id, departure_time, arrival_time, days_of_week,
		       created_at, updated_at
		FROM recurring_trips
		WHERE id = $1
	`

	trip := &models.RecurringTrip{}
	if err := r.db.Get(trip, query, tripID); err != nil {
		return nil, err
	}
	return trip, nil
}

// GetByBusID retrieves the recurring trip of a bus, or sql.ErrNoRows.
func (r *RecurringTripRepository) GetByBusID(busID string) (*models.RecurringTrip, error) {
	query := `
		SELECT id, bus_id, operator_id, departure_time, arrival_time, days_of_week,
		       created_at, updated_at
		FROM recurring_trips
		WHERE bus_id = $1
	`

	trip := &models.RecurringTrip{}
	if err := r.db.Get(trip, query, busID); err != nil {
		return nil, err
	}
	return trip, nil
}

// GetByOperatorID retrieves all recurring trips owned by an operator
func (r *RecurringTripRepository) GetByOperatorID(operatorID string) ([]models.RecurringTrip, error) {
	query := `
		SELECT id, bus_id, operator_id, departure_time, arrival_time, days_of_week,
		       created_at, updated_at
		FROM recurring_trips
		WHERE operator_id = $1
		ORDER BY created_at DESC
	`

	trips := []models.RecurringTrip{}
	if err := r.db.Select(&trips, query, operatorID); err != nil {
		return nil, err
	}
	return trips, nil
}

// GetAll retrieves every recurring trip. Used by the trip generator.
func (r *RecurringTripRepository) GetAll() ([]models.RecurringTrip, error) {
	query := `
		SELECT id, bus_id, operator_id, departure_time, arrival_time, days_of_week,
		       created_at, updated_at
		FROM recurring_trips
		ORDER BY created_at
	`

	trips := []models.RecurringTrip{}
	if err := r.db.Select(&trips, query); err != nil {
		return nil, err
	}
	return trips, nil
}

// Update updates a recurring trip's schedule fields
func (r *RecurringTripRepository) Update(trip *models.RecurringTrip) error {
	query := `
		UPDATE recurring_trips
		SET departure_time = $2, arrival_time = $3, days_of_week = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query,
		trip.ID, trip.DepartureTime, trip.ArrivalTime, trip.DaysOfWeek,
	).Scan(&trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update recurring trip: %w", err)
	}
	return nil
}

// Delete removes a recurring trip
func (r *RecurringTripRepository) Delete(tripID string) error {
	result, err := r.db.Exec(`DELETE FROM recurring_trips WHERE id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring trip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("recurring trip not found")
	}
	return nil
}
