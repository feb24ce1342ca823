package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
)

// PassengerGender values accepted on passenger records
var passengerGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

// Booking represents a confirmed or canceled reservation of one or more
// seats on a bus for a single travel date.
type Booking struct {
	ID         string        `json:"id" db:"id"`
	BusID      string        `json:"bus_id" db:"bus_id"`
	UserID     *string       `json:"user_id,omitempty" db:"user_id"` // nil for anonymous bookings
	TravelDate time.Time     `json:"travel_date" db:"travel_date"`
	Status     BookingStatus `json:"status" db:"status"`
	TotalPrice float64       `json:"total_price" db:"total_price"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`

	Passengers []Passenger `json:"passengers,omitempty"`
	Seats      []Seat      `json:"seats,omitempty"`
}

// Passenger belongs to a booking; one per booked seat.
type Passenger struct {
	ID        string `json:"id" db:"id"`
	BookingID string `json:"booking_id" db:"booking_id"`
	Name      string `json:"name" db:"name"`
	Gender    string `json:"gender" db:"gender"`
	Age       int    `json:"age" db:"age"`
}

// BookedSeat is the date-scoped join row linking a booking to a seat for
// one travel date. Non-canceled bookings for the same bus and date must
// reference disjoint seat sets.
type BookedSeat struct {
	ID         string    `json:"id" db:"id"`
	BookingID  string    `json:"booking_id" db:"booking_id"`
	SeatID     string    `json:"seat_id" db:"seat_id"`
	TravelDate time.Time `json:"travel_date" db:"travel_date"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PassengerInput carries passenger details on a booking request
type PassengerInput struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender" binding:"required"`
	Age    int    `json:"age" binding:"required"`
}

// CreateBookingRequest represents the request to book a set of seats on a
// bus for one travel date. The total price is computed server-side from the
// seat templates, never taken from the client.
type CreateBookingRequest struct {
	BusID      string           `json:"bus_id" binding:"required"`
	Date       string           `json:"date" binding:"required"` // YYYY-MM-DD
	SeatIDs    []string         `json:"seat_ids" binding:"required,min=1"`
	Passengers []PassengerInput `json:"passengers" binding:"required,min=1"`
}

// Validate validates the CreateBookingRequest
func (r *CreateBookingRequest) Validate() error {
	if _, err := r.ParseDate(); err != nil {
		return err
	}
	if len(r.SeatIDs) == 0 {
		return errors.New("seat_ids must be a non-empty array")
	}
	seen := make(map[string]bool, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if strings.TrimSpace(id) == "" {
			return errors.New("seat_ids must not contain empty values")
		}
		if seen[id] {
			return fmt.Errorf("duplicate seat id %q", id)
		}
		seen[id] = true
	}
	if len(r.Passengers) != len(r.SeatIDs) {
		return fmt.Errorf("passengers (%d) must match the number of seats (%d)", len(r.Passengers), len(r.SeatIDs))
	}
	for i, p := range r.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("passenger %d: name is required", i+1)
		}
		if !passengerGenders[strings.ToLower(p.Gender)] {
			return fmt.Errorf("passenger %d: gender must be male, female, or other", i+1)
		}
		if p.Age <= 0 || p.Age > 120 {
			return fmt.Errorf("passenger %d: age must be between 1 and 120", i+1)
		}
	}
	return nil
}

// ParseDate parses the request's travel date (YYYY-MM-DD, UTC).
func (r *CreateBookingRequest) ParseDate() (time.Time, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, errors.New("date must be in YYYY-MM-DD format")
	}
	return date, nil
}
