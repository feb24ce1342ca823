package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/middleware"
	"github.com/transitline/bus-booking-backend/internal/models"
	"github.com/transitline/bus-booking-backend/internal/services"
)

// AdminHandler handles admin-only HTTP requests
type AdminHandler struct {
	operatorKeyRepo *database.OperatorKeyRepository
	cronService     *services.CronService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(operatorKeyRepo *database.OperatorKeyRepository, cronService *services.CronService) *AdminHandler {
	return &AdminHandler{
		operatorKeyRepo: operatorKeyRepo,
		cronService:     cronService,
	}
}

// GenerateOperatorKey handles POST /api/v1/admin/operator-keys.
// The key is a random opaque string; it entitles exactly one
// registration to the BUS_OPERATOR role.
func (h *AdminHandler) GenerateOperatorKey(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	key := &models.OperatorKey{
		Key:       "opk_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		CreatedBy: userCtx.UserID,
	}

	if err := h.operatorKeyRepo.Create(key); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate operator key",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"operator_key": key})
}

// TriggerTripGeneration handles POST /api/v1/admin/trips/generate.
// Runs the rolling-window trip materialization immediately instead of
// waiting for the nightly job.
func (h *AdminHandler) TriggerTripGeneration(c *gin.Context) {
	generated, err := h.cronService.RunGenerateNow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Trip generation failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Trip generation completed",
		"generated": generated,
	})
}
