package services

import (
	"database/sql"
	"errors"

	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
)

var (
	// ErrBusNotOperating signals a booking attempt for a date the bus has
	// no scheduled service on.
	ErrBusNotOperating = errors.New("bus does not operate on the requested date")

	// ErrUnknownSeats signals seat IDs that do not belong to the bus.
	ErrUnknownSeats = errors.New("one or more seat ids do not belong to this bus")

	// ErrNotAllowed signals a cancel attempt by someone who neither placed
	// the booking nor operates the bus.
	ErrNotAllowed = errors.New("not allowed to modify this booking")
)

// BookingService handles booking admission and cancellation. Admission
// is first-committer-wins: the repository transaction decides races, the
// service never pre-checks availability as a substitute.
type BookingService struct {
	bookingRepo       *database.BookingRepository
	busRepo           *database.BusRepository
	seatRepo          *database.SeatRepository
	recurringTripRepo *database.RecurringTripRepository
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	busRepo *database.BusRepository,
	seatRepo *database.SeatRepository,
	recurringTripRepo *database.RecurringTripRepository,
) *BookingService {
	return &BookingService{
		bookingRepo:       bookingRepo,
		busRepo:           busRepo,
		seatRepo:          seatRepo,
		recurringTripRepo: recurringTripRepo,
	}
}

// Create admits a booking. The total price is computed here from the
// seat templates; whatever the client claims to pay is ignored. userID
// is nil for anonymous bookings.
func (s *BookingService) Create(req *models.CreateBookingRequest, userID *string) (*models.Booking, error) {
	dayStart, dayEnd, err := DayWindow(req.Date)
	if err != nil {
		return nil, err
	}

	bus, err := s.busRepo.GetByID(req.BusID)
	if err != nil {
		return nil, err
	}

	trip, err := s.recurringTripRepo.GetByBusID(bus.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBusNotOperating
		}
		return nil, err
	}
	if !trip.OperatesOn(dayStart) {
		return nil, ErrBusNotOperating
	}

	seats, err := s.seatRepo.GetByIDs(bus.ID, req.SeatIDs)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(req.SeatIDs) {
		return nil, ErrUnknownSeats
	}

	total := 0.0
	for _, seat := range seats {
		total += seat.Price
	}

	booking := &models.Booking{
		BusID:      bus.ID,
		UserID:     userID,
		TravelDate: dayStart,
		Status:     models.BookingConfirmed,
		TotalPrice: total,
	}

	if err := s.bookingRepo.Create(booking, req.Passengers, req.SeatIDs, dayStart, dayEnd); err != nil {
		return nil, err
	}
	booking.Seats = seats
	return booking, nil
}

// Cancel cancels a booking and releases its seats for the travel date.
// Allowed for the booking's owner, the operator of the booked bus, and
// admins.
func (s *BookingService) Cancel(bookingID, requesterID string, role models.UserRole) error {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return err
	}

	if !s.canModify(booking, requesterID, role) {
		return ErrNotAllowed
	}

	return s.bookingRepo.Cancel(bookingID)
}

// Get retrieves a booking, subject to the same visibility rule as Cancel.
func (s *BookingService) Get(bookingID, requesterID string, role models.UserRole) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(booking, requesterID, role) {
		return nil, ErrNotAllowed
	}
	return booking, nil
}

// ListForUser retrieves a user's bookings, newest first
func (s *BookingService) ListForUser(userID string) ([]models.Booking, error) {
	return s.bookingRepo.GetByUserID(userID)
}

// ListForOperator retrieves all bookings across an operator's buses
func (s *BookingService) ListForOperator(operatorID string) ([]models.Booking, error) {
	return s.bookingRepo.GetByOperatorID(operatorID)
}

func (s *BookingService) canModify(booking *models.Booking, requesterID string, role models.UserRole) bool {
	if role == models.RoleAdmin {
		return true
	}
	if booking.UserID != nil && *booking.UserID == requesterID {
		return true
	}
	if role == models.RoleOperator {
		bus, err := s.busRepo.GetByID(booking.BusID)
		if err == nil && bus.OperatorID == requesterID {
			return true
		}
	}
	return false
}
