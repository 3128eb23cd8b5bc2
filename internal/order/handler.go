package order

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodifusion/internal/cart"
)

type Handler struct {
	service *Service
	carts   *cart.Service
	logger  *slog.Logger
}

func NewHandler(service *Service, carts *cart.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, carts: carts, logger: logger}
}

type placeOrderRequest struct {
	RestaurantID      int64  `form:"restaurant_id" json:"restaurant_id"`
	OrderInstructions string `form:"order_instructions" json:"order_instructions"`
}

// POST /orders
func (h *Handler) Place(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBind(&req); err != nil || req.RestaurantID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id is required"})
		return
	}

	sessionID := c.GetString("sessionID")

	o, err := h.service.PlaceOrder(c.Request.Context(), PlaceRequest{
		SessionID:    sessionID,
		CustomerID:   c.GetString("userID"),
		RestaurantID: req.RestaurantID,
		Instructions: req.OrderInstructions,
	})
	if err != nil {
		status, msg := h.describe(err)
		body := gin.H{"error": msg}
		if view, verr := h.carts.View(c.Request.Context(), sessionID); verr == nil {
			body["cart"] = view
		}
		c.JSON(status, body)
		return
	}

	c.Redirect(http.StatusSeeOther, "/orders/"+strconv.FormatInt(o.ID, 10))
}

// GET /orders/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	o, err := h.service.Get(c.Request.Context(), id, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		h.logger.Error("failed to load order", "order_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	c.JSON(http.StatusOK, o)
}

func (h *Handler) describe(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest, "Your cart is empty."
	case errors.Is(err, ErrPaymentNotVerified):
		return http.StatusConflict, "Payment not verified. Please verify your payment again."
	case errors.Is(err, ErrItemUnavailable):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrStorage):
		return http.StatusInternalServerError, "Your order could not be placed. Please try again."
	default:
		h.logger.Error("order placement failed", "error", err)
		return http.StatusInternalServerError, "Your order could not be placed. Please try again."
	}
}
