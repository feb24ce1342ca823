package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/middleware"
	"github.com/transitline/bus-booking-backend/internal/models"
	"github.com/transitline/bus-booking-backend/internal/services"
)

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles POST /api/v1/bookings. Runs behind optional auth:
// authenticated bookings are attributed to the user, anonymous ones
// carry no user.
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	var userID *string
	if userCtx, ok := middleware.GetUserContext(c); ok {
		id := userCtx.UserID
		userID = &id
	}

	booking, err := h.bookingService.Create(&req, userID)
	if err != nil {
		switch err {
		case database.ErrSeatsTaken:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "seats_taken",
				Message: "One or more of the requested seats were just booked for this date",
				Code:    "SEATS_TAKEN",
			})
		case services.ErrBusNotOperating:
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "bus_not_operating",
				Message: err.Error(),
				Code:    "BUS_NOT_OPERATING",
			})
		case services.ErrUnknownSeats:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unknown_seats",
				Message: err.Error(),
				Code:    "UNKNOWN_SEATS",
			})
		case sql.ErrNoRows:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Bus not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create booking",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// Get handles GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	booking, err := h.bookingService.Get(c.Param("id"), userCtx.UserID, userCtx.Role)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListMine handles GET /api/v1/bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	var (
		bookings []models.Booking
		err      error
	)
	if userCtx.Role == models.RoleOperator {
		bookings, err = h.bookingService.ListForOperator(userCtx.UserID)
	} else {
		bookings, err = h.bookingService.ListForUser(userCtx.UserID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Cancel handles POST /api/v1/bookings/:id/cancel. Canceling releases
// the booking's seats for its travel date.
func (h *BookingHandler) Cancel(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	if err := h.bookingService.Cancel(c.Param("id"), userCtx.UserID, userCtx.Role); err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking canceled"})
}

func (h *BookingHandler) writeBookingError(c *gin.Context, err error) {
	switch err {
	case sql.ErrNoRows:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
		})
	case services.ErrNotAllowed:
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
			Code:    "NOT_BOOKING_OWNER",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process booking request",
		})
	}
}
