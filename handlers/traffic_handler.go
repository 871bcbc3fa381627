package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/NaviFeed/navifeed-backend/errors"
	"github.com/NaviFeed/navifeed-backend/logger"
	"github.com/NaviFeed/navifeed-backend/services"
	"github.com/gin-gonic/gin"
)

// TrafficHandler exposes the read-only view of the traffic situation.
// Mutation happens only through providers; there are no write endpoints.
type TrafficHandler struct {
	trafficService *services.TrafficService
}

// NewTrafficHandler creates a new TrafficHandler
func NewTrafficHandler(trafficService *services.TrafficService) *TrafficHandler {
	return &TrafficHandler{
		trafficService: trafficService,
	}
}

// ListMessagesHandler returns all active traffic messages.
func (h *TrafficHandler) ListMessagesHandler(c *gin.Context) {
	log := logger.GetLogger()

	messages, err := h.trafficService.ActiveMessages(c.Request.Context())
	if err != nil {
		log.Errorw("Failed to list traffic messages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list traffic messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// GetMessageHandler returns one active traffic message by identifier.
func (h *TrafficHandler) GetMessageHandler(c *gin.Context) {
	log := logger.GetLogger()

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message ID is required"})
		return
	}

	message, err := h.trafficService.GetMessage(c.Request.Context(), id)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Error()})
			return
		}
		log.Debugw("Traffic message not found", "messageID", id, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.NotFound("traffic message", id).Error()})
		return
	}

	c.JSON(http.StatusOK, message)
}

// ListProvidersHandler returns the names of the polled providers.
func (h *TrafficHandler) ListProvidersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": h.trafficService.Providers(),
	})
}
