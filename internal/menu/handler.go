package menu

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GET /restaurants/:id/menu
func (h *Handler) GetMenu(c *gin.Context) {
	restaurantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || restaurantID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return
	}

	sections, err := h.service.Menu(c.Request.Context(), restaurantID)
	if err != nil {
		h.logger.Error("failed to load menu", "restaurant_id", restaurantID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu"})
		return
	}

	if sections == nil {
		sections = []Section{}
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant_id": restaurantID,
		"sections":      sections,
	})
}
