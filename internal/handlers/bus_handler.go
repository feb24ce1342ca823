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

// BusHandler handles bus-related HTTP requests
type BusHandler struct {
	busRepo      *database.BusRepository
	seatRepo     *database.SeatRepository
	layout       *services.SeatLayoutService
	availability *services.AvailabilityService
}

// NewBusHandler creates a new bus handler
func NewBusHandler(
	busRepo *database.BusRepository,
	seatRepo *database.SeatRepository,
	layout *services.SeatLayoutService,
	availability *services.AvailabilityService,
) *BusHandler {
	return &BusHandler{
		busRepo:      busRepo,
		seatRepo:     seatRepo,
		layout:       layout,
		availability: availability,
	}
}

// Create handles POST /api/v1/buses. The full seat chart is generated
// from the configuration and persisted with the bus in one transaction;
// a bus never exists without its seats.
func (h *BusHandler) Create(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	var req models.CreateBusRequest
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

	if _, err := h.busRepo.GetByPlate(req.NumberPlate); err == nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "duplicate_plate",
			Message: "A bus with this number plate is already registered",
			Code:    "DUPLICATE_PLATE",
		})
		return
	} else if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to check number plate",
		})
		return
	}

	cfg := models.BusConfiguration(req.Configuration)
	bus := &models.Bus{
		OperatorID:    userCtx.UserID,
		Name:          req.Name,
		NumberPlate:   req.NumberPlate,
		RouteFrom:     req.RouteFrom,
		RouteTo:       req.RouteTo,
		Configuration: cfg,
		ACType:        models.ACType(req.ACType),
		PriceSeater:   req.PriceSeater,
		PriceSleeper:  req.PriceSleeper,
		SeatCount:     cfg.TotalSeats(),
	}

	seats, err := h.layout.Generate(bus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate seat layout",
		})
		return
	}

	if err := h.busRepo.CreateWithSeats(bus, seats); err != nil {
		// The plate pre-check races with concurrent inserts; the unique
		// constraint is the authority.
		if err == database.ErrDuplicatePlate {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_plate",
				Message: "A bus with this number plate is already registered",
				Code:    "DUPLICATE_PLATE",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to register bus",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"bus":   bus,
		"seats": seats,
	})
}

// Get handles GET /api/v1/buses/:id. With a ?date=YYYY-MM-DD query the
// response includes the per-date seat map; without one, only the bus
// and its static seat templates.
func (h *BusHandler) Get(c *gin.Context) {
	busID := c.Param("id")

	bus, err := h.busRepo.GetByID(busID)
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

	date := c.Query("date")
	if date == "" {
		seats, err := h.seatRepo.GetByBusID(busID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to load seats",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bus": bus, "seats": seats})
		return
	}

	seatMap, err := h.availability.Resolve(busID, date)
	if err != nil {
		if _, _, dateErr := services.DayWindow(date); dateErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: dateErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to resolve seat availability",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bus": bus, "seat_map": seatMap})
}

// ListMine handles GET /api/v1/buses. Returns the authenticated
// operator's fleet.
func (h *BusHandler) ListMine(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	buses, err := h.busRepo.GetByOperatorID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load buses",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// Update handles PUT /api/v1/buses/:id. Configuration and number plate
// are immutable; seats are never regenerated.
func (h *BusHandler) Update(c *gin.Context) {
	bus, ok := h.ownedBus(c)
	if !ok {
		return
	}

	var req models.UpdateBusRequest
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

	if req.Name != nil {
		bus.Name = *req.Name
	}
	if req.RouteFrom != nil {
		bus.RouteFrom = *req.RouteFrom
	}
	if req.RouteTo != nil {
		bus.RouteTo = *req.RouteTo
	}
	if req.ACType != nil {
		bus.ACType = models.ACType(*req.ACType)
	}
	if req.PriceSeater != nil {
		bus.PriceSeater = req.PriceSeater
	}
	if req.PriceSleeper != nil {
		bus.PriceSleeper = req.PriceSleeper
	}

	if err := h.busRepo.Update(bus); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update bus",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// Delete handles DELETE /api/v1/buses/:id
func (h *BusHandler) Delete(c *gin.Context) {
	bus, ok := h.ownedBus(c)
	if !ok {
		return
	}

	if err := h.busRepo.Delete(bus.ID); err != nil {
		if err == database.ErrBusHasRecurringTrip {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "bus_has_schedule",
				Message: "Delete the bus's recurring trip before deleting the bus",
				Code:    "BUS_HAS_RECURRING_TRIP",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete bus",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted"})
}

// ownedBus loads the :id bus and enforces that the requester owns it or
// is an admin. Writes the error response itself on failure.
func (h *BusHandler) ownedBus(c *gin.Context) (*models.Bus, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, false
	}

	bus, err := h.busRepo.GetByID(c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Bus not found",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load bus",
		})
		return nil, false
	}

	if bus.OperatorID != userCtx.UserID && userCtx.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't own this bus",
			Code:    "NOT_BUS_OWNER",
		})
		return nil, false
	}

	return bus, true
}
