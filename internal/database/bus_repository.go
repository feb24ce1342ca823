package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// BusRepository handles database operations for buses and their seat
// templates.
type BusRepository struct {
	db *sqlx.DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db *sqlx.DB) *BusRepository {
	return &BusRepository{db: db}
}

// CreateWithSeats inserts a bus together with its generated seat templates
// in a single transaction. A failure at any point leaves no partial seat
// rows behind.
func (r *BusRepository) CreateWithSeats(bus *models.Bus, seats []models.Seat) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if bus.ID == "" {
		bus.ID = uuid.New().String()
	}

	busQuery := `
		INSERT INTO buses (
			id, operator_id, name, number_plate, route_from, route_to,
			configuration, ac_type, price_seater, price_sleeper, seat_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowx(busQuery,
		bus.ID, bus.OperatorID, bus.Name, bus.NumberPlate, bus.RouteFrom, bus.RouteTo,
		bus.Configuration, bus.ACType, bus.PriceSeater, bus.PriceSleeper, bus.SeatCount,
	).Scan(&bus.CreatedAt, &bus.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePlate
		}
		return fmt.Errorf("failed to create bus: %w", err)
	}

	seatQuery := `
		INSERT INTO seats (id, bus_id, label, class, deck, row, side, position, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	for i := range seats {
		if seats[i].ID == "" {
			seats[i].ID = uuid.New().String()
		}
		seats[i].BusID = bus.ID

		err = tx.QueryRowx(seatQuery,
			seats[i].ID, seats[i].BusID, seats[i].Label, seats[i].Class,
			seats[i].Deck, seats[i].Row, seats[i].Side, seats[i].Position, seats[i].Price,
		).Scan(&seats[i].CreatedAt, &seats[i].UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create seat %s: %w", seats[i].Label, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(busID string) (*models.Bus, error) {
	query := `
		SELECT id, operator_id, name, number_plate, route_from, route_to,
		       configuration, ac_type, price_seater, price_sleeper, seat_count,
		       created_at, updated_at
		FROM buses
		WHERE id = $1
	`

	bus := &models.Bus{}
	if err := r.db.Get(bus, query, busID); err != nil {
		return nil, err
	}
	return bus, nil
}

// GetByPlate retrieves a bus by its unique number plate
func (r *BusRepository) GetByPlate(numberPlate string) (*models.Bus, error) {
	query := `
		SELECT id, operator_id, name, number_plate, route_from, route_to,
		       configuration, ac_type, price_seater, price_sleeper, seat_count,
		       created_at, updated_at
		FROM buses
		WHERE number_plate = $1
	`

	bus := &models.Bus{}
	if err := r.db.Get(bus, query, numberPlate); err != nil {
		return nil, err
	}
	return bus, nil
}

// GetByOperatorID retrieves all buses owned by an operator
func (r *BusRepository) GetByOperatorID(operatorID string) ([]models.Bus, error) {
	query := `
		SELECT id, operator_id, name, number_plate, route_from, route_to,
		       configuration, ac_type, price_seater, price_sleeper, seat_count,
		       created_at, updated_at
		FROM buses
		WHERE operator_id = $1
		ORDER BY created_at DESC
	`

	buses := []models.Bus{}
	if err := r.db.Select(&buses, query, operatorID); err != nil {
		return nil, err
	}
	return buses, nil
}

// GetByRoute retrieves all buses serving a route. Place-name matching is
// case-insensitive.
func (r *BusRepository) GetByRoute(from, to string) ([]models.Bus, error) {
	query := `
		SELECT id, operator_id, name, number_plate, route_from, route_to,
		       configuration, ac_type, price_seater, price_sleeper, seat_count,
		       created_at, updated_at
		FROM buses
		WHERE LOWER(route_from) = LOWER($1)
		  AND LOWER(route_to) = LOWER($2)
		ORDER BY name
	`

	buses := []models.Bus{}
	if err := r.db.Select(&buses, query, from, to); err != nil {
		return nil, err
	}
	return buses, nil
}

// Update updates mutable bus fields
func (r *BusRepository) Update(bus *models.Bus) error {
	query := `
		UPDATE buses
		SET name = $2, route_from = $3, route_to = $4, ac_type = $5,
		    price_seater = $6, price_sleeper = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query,
		bus.ID, bus.Name, bus.RouteFrom, bus.RouteTo, bus.ACType,
		bus.PriceSeater, bus.PriceSleeper,
	).Scan(&bus.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update bus: %w", err)
	}
	return nil
}

// Delete removes a bus together with its seats and materialized trips.
// A bus with a recurring trip attached cannot be deleted; the schedule
// must go first.
func (r *BusRepository) Delete(busID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var recurringCount int
	if err := tx.Get(&recurringCount, `SELECT COUNT(*) FROM recurring_trips WHERE bus_id = $1`, busID); err != nil {
		return fmt.Errorf("failed to check recurring trips: %w", err)
	}
	if recurringCount > 0 {
		return ErrBusHasRecurringTrip
	}

	if _, err := tx.Exec(`DELETE FROM seats WHERE bus_id = $1`, busID); err != nil {
		return fmt.Errorf("failed to delete seats: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM trips WHERE bus_id = $1`, busID); err != nil {
		return fmt.Errorf("failed to delete trips: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM buses WHERE id = $1`, busID)
	if err != nil {
		return fmt.Errorf("failed to delete bus: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("bus not found")
	}

	return tx.Commit()
}
