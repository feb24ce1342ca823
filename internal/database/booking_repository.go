package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// BookingRepository handles database operations for bookings, passengers
// and the date-scoped booked_seats join rows.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create commits a booking in a single transaction. The requested seat
// template rows are locked FOR UPDATE, which serializes competing bookings
// that overlap on any seat; the availability re-check then runs against
// committed state, so the second of two racing transactions observes the
// first's booked_seats rows and aborts with ErrSeatsTaken.
func (r *BookingRepository) Create(booking *models.Booking, passengers []models.PassengerInput, seatIDs []string, dayStart, dayEnd time.Time) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the seat templates. Competing transactions queue here.
	var locked []string
	err = tx.Select(&locked, `
		SELECT id FROM seats
		WHERE bus_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE`,
		booking.BusID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("failed to lock seats: %w", err)
	}
	if len(locked) != len(seatIDs) {
		return fmt.Errorf("one or more seats do not belong to bus %s", booking.BusID)
	}

	// Re-check: any non-canceled booking already holding one of these
	// seats for this travel date wins.
	var taken int
	err = tx.Get(&taken, `
		SELECT COUNT(*)
		FROM booked_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE bs.seat_id = ANY($1)
		  AND b.status != 'canceled'
		  AND bs.travel_date >= $2 AND bs.travel_date < $3`,
		pq.Array(seatIDs), dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("failed to check seat availability: %w", err)
	}
	if taken > 0 {
		return ErrSeatsTaken
	}

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err = tx.QueryRowx(`
		INSERT INTO bookings (id, bus_id, user_id, travel_date, status, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		booking.ID, booking.BusID, booking.UserID, booking.TravelDate,
		booking.Status, booking.TotalPrice,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	for _, p := range passengers {
		passenger := models.Passenger{
			ID:        uuid.New().String(),
			BookingID: booking.ID,
			Name:      p.Name,
			Gender:    p.Gender,
			Age:       p.Age,
		}
		_, err = tx.Exec(`
			INSERT INTO passengers (id, booking_id, name, gender, age)
			VALUES ($1, $2, $3, $4, $5)`,
			passenger.ID, passenger.BookingID, passenger.Name, passenger.Gender, passenger.Age)
		if err != nil {
			return fmt.Errorf("failed to create passenger %s: %w", p.Name, err)
		}
		booking.Passengers = append(booking.Passengers, passenger)
	}

	for _, seatID := range seatIDs {
		_, err = tx.Exec(`
			INSERT INTO booked_seats (id, booking_id, seat_id, travel_date)
			VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), booking.ID, seatID, booking.TravelDate)
		if err != nil {
			return fmt.Errorf("failed to create booked seat row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Cancel flips a booking to canceled and releases its date-scoped seat
// holds in one transaction. Passenger rows and seat templates stay intact.
func (r *BookingRepository) Cancel(bookingID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'canceled', updated_at = NOW()
		WHERE id = $1 AND status != 'canceled'`,
		bookingID)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found or already canceled")
	}

	_, err = tx.Exec(`DELETE FROM booked_seats WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to release booked seats: %w", err)
	}

	return tx.Commit()
}

// GetByID retrieves a booking with its passengers and seats
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	booking := &models.Booking{}
	err := r.db.Get(booking, `
		SELECT id, bus_id, user_id, travel_date, status, total_price, created_at, updated_at
		FROM bookings
		WHERE id = $1`,
		bookingID)
	if err != nil {
		return nil, err
	}

	if err := r.attachDetails(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// GetByUserID retrieves all bookings placed by a user, newest first
func (r *BookingRepository) GetByUserID(userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.Select(&bookings, `
		SELECT id, bus_id, user_id, travel_date, status, total_price, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if err := r.attachDetails(&bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

// GetByOperatorID retrieves all bookings across an operator's buses,
// newest first.
func (r *BookingRepository) GetByOperatorID(operatorID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.Select(&bookings, `
		SELECT b.id, b.bus_id, b.user_id, b.travel_date, b.status, b.total_price,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN buses bus ON bus.id = b.bus_id
		WHERE bus.operator_id = $1
		ORDER BY b.created_at DESC`,
		operatorID)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if err := r.attachDetails(&bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

// BookedSeatIDs returns the seat IDs held by non-canceled bookings of a
// bus within the half-open day window. Input to the availability resolver.
func (r *BookingRepository) BookedSeatIDs(busID string, dayStart, dayEnd time.Time) ([]string, error) {
	seatIDs := []string{}
	err := r.db.Select(&seatIDs, `
		SELECT bs.seat_id
		FROM booked_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE b.bus_id = $1
		  AND b.status != 'canceled'
		  AND bs.travel_date >= $2 AND bs.travel_date < $3`,
		busID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// attachDetails loads passengers and seats for a booking
func (r *BookingRepository) attachDetails(booking *models.Booking) error {
	passengers := []models.Passenger{}
	err := r.db.Select(&passengers, `
		SELECT id, booking_id, name, gender, age
		FROM passengers
		WHERE booking_id = $1
		ORDER BY id`,
		booking.ID)
	if err != nil {
		return fmt.Errorf("failed to load passengers: %w", err)
	}
	booking.Passengers = passengers

	seats := []models.Seat{}
	err = r.db.Select(&seats, `
		SELECT s.id, s.bus_id, s.label, s.class, s.deck, s.row, s.side, s.position,
		       s.price, s.created_at, s.updated_at
		FROM seats s
		JOIN booked_seats bs ON bs.seat_id = s.id
		WHERE bs.booking_id = $1
		ORDER BY s.label`,
		booking.ID)
	if err != nil {
		return fmt.Errorf("failed to load seats: %w", err)
	}
	booking.Seats = seats

	return nil
}
