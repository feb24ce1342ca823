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

// RecurringTripHandler handles recurring trip HTTP requests
type RecurringTripHandler struct {
	recurringTripRepo *database.RecurringTripRepository
	busRepo           *database.BusRepository
	tripGenerator     *services.TripGeneratorService
}

// NewRecurringTripHandler creates a new recurring trip handler
func NewRecurringTripHandler(
	recurringTripRepo *database.RecurringTripRepository,
	busRepo *database.BusRepository,
	tripGenerator *services.TripGeneratorService,
) *RecurringTripHandler {
	return &RecurringTripHandler{
		recurringTripRepo: recurringTripRepo,
		busRepo:           busRepo,
		tripGenerator:     tripGenerator,
	}
}

// Create handles POST /api/v1/recurring-trips. A bus carries at most one
// recurring trip. The rolling trip window materializes immediately so
// the bus is searchable without waiting for the nightly job.
func (h *RecurringTripHandler) Create(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	var req models.CreateRecurringTripRequest
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

	bus, err := h.busRepo.GetByID(req.BusID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Bus not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load bus",
		})
		return
	}

	if bus.OperatorID != userCtx.UserID && userCtx.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't own this bus",
			Code:    "NOT_BUS_OWNER",
		})
		return
	}

	trip := &models.RecurringTrip{
		BusID:         bus.ID,
		OperatorID:    bus.OperatorID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
	}
	trip.SetDays(req.DaysOfWeek)

	if err := h.recurringTripRepo.Create(trip); err != nil {
		if err == database.ErrRecurringTripExists {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "recurring_trip_exists",
				Message: "This bus already has a recurring trip",
				Code:    "RECURRING_TRIP_EXISTS",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create recurring trip",
		})
		return
	}

	generated, err := h.tripGenerator.GenerateForSchedule(trip)
	if err != nil {
		// The schedule exists; materialization catches up on the next run.
		generated = 0
	}

	c.JSON(http.StatusCreated, gin.H{
		"recurring_trip":  trip,
		"trips_generated": generated,
	})
}

// ListMine handles GET /api/v1/recurring-trips
func (h *RecurringTripHandler) ListMine(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	trips, err := h.recurringTripRepo.GetByOperatorID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load recurring trips",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_trips": trips})
}

// Update handles PUT /api/v1/recurring-trips/:id
func (h *RecurringTripHandler) Update(c *gin.Context) {
	trip, ok := h.ownedTrip(c)
	if !ok {
		return
	}

	var req models.UpdateRecurringTripRequest
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

	if req.DepartureTime != nil {
		trip.DepartureTime = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		trip.ArrivalTime = *req.ArrivalTime
	}
	if len(req.DaysOfWeek) > 0 {
		trip.SetDays(req.DaysOfWeek)
	}

	if err := h.recurringTripRepo.Update(trip); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update recurring trip",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_trip": trip})
}

// Delete handles DELETE /api/v1/recurring-trips/:id
func (h *RecurringTripHandler) Delete(c *gin.Context) {
	trip, ok := h.ownedTrip(c)
	if !ok {
		return
	}

	if err := h.recurringTripRepo.Delete(trip.ID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete recurring trip",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring trip deleted"})
}

func (h *RecurringTripHandler) ownedTrip(c *gin.Context) (*models.RecurringTrip, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, false
	}

	trip, err := h.recurringTripRepo.GetByID(c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Recurring trip not found",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load recurring trip",
		})
		return nil, false
	}

	if trip.OperatorID != userCtx.UserID && userCtx.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't own this recurring trip",
			Code:    "NOT_TRIP_OWNER",
		})
		return nil, false
	}

	return trip, true
}
