package cart

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type addItemRequest struct {
	RestaurantID        int64  `json:"restaurant_id" form:"restaurant_id"`
	ItemID              int64  `json:"item_id" form:"item_id"`
	Quantity            int    `json:"quantity" form:"quantity"`
	SpecialInstructions string `json:"special_instructions" form:"special_instructions"`
}

type lineRequest struct {
	ItemID              int64  `json:"item_id" form:"item_id"`
	Quantity            int    `json:"quantity" form:"quantity"`
	SpecialInstructions string `json:"special_instructions" form:"special_instructions"`
}

func (r lineRequest) key() Key {
	return Key{ItemID: r.ItemID, SpecialInstructions: r.SpecialInstructions}
}

// GET /cart
func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.View(c.Request.Context(), c.GetString("sessionID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /cart/items
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.RestaurantID <= 0 || req.ItemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id and item_id are required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.service.AddItem(
		c.Request.Context(),
		c.GetString("sessionID"),
		req.RestaurantID,
		req.ItemID,
		req.Quantity,
		req.SpecialInstructions,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /cart/items
func (h *Handler) UpdateItem(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBind(&req); err != nil || req.ItemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	view, err := h.service.SetQuantity(c.Request.Context(), c.GetString("sessionID"), req.key(), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /cart/items
func (h *Handler) RemoveItem(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBind(&req); err != nil || req.ItemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	view, err := h.service.Remove(c.Request.Context(), c.GetString("sessionID"), req.key())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /cart
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.GetString("sessionID")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewView(nil, 0))
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrItemUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("cart operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart update failed"})
	}
}
