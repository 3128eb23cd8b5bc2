package restaurant

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodifusion/internal/menu"
	"foodifusion/internal/order"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type menuItemRequest struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Available   *bool  `json:"is_available"`
}

func (r menuItemRequest) item() menu.Item {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return menu.Item{
		Category:    r.Category,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Available:   available,
	}
}

// --------------------------------------------------
// GET /restaurants
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	restaurants, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if restaurants == nil {
		restaurants = []Restaurant{}
	}
	c.JSON(http.StatusOK, restaurants)
}

// --------------------------------------------------
// POST /restaurant
// --------------------------------------------------
func (h *Handler) Register(c *gin.Context) {
	var p Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rest, err := h.service.Register(c.Request.Context(), c.GetString("userID"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rest)
}

// --------------------------------------------------
// GET /restaurant
// --------------------------------------------------
func (h *Handler) Mine(c *gin.Context) {
	rest, err := h.service.Mine(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rest)
}

// --------------------------------------------------
// PUT /restaurant
// --------------------------------------------------
func (h *Handler) UpdateProfile(c *gin.Context) {
	var p Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rest, err := h.service.UpdateProfile(c.Request.Context(), c.GetString("userID"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rest)
}

// --------------------------------------------------
// GET /restaurant/dashboard
// --------------------------------------------------
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if d.Recent == nil {
		d.Recent = []order.Order{}
	}
	c.JSON(http.StatusOK, d)
}

// --------------------------------------------------
// GET /restaurant/orders?status=&limit=
// --------------------------------------------------
func (h *Handler) Orders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	orders, err := h.service.Orders(
		c.Request.Context(),
		c.GetString("userID"),
		order.Status(c.Query("status")),
		limit,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// --------------------------------------------------
// GET /restaurant/orders/:id
// --------------------------------------------------
func (h *Handler) Order(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	o, err := h.service.Order(c.Request.Context(), c.GetString("userID"), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --------------------------------------------------
// PATCH /restaurant/orders/:id/status
// --------------------------------------------------
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status order.Status `json:"status" form:"new_status"`
	}
	if err := c.ShouldBind(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid status is required"})
		return
	}

	o, err := h.service.UpdateOrderStatus(c.Request.Context(), c.GetString("userID"), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --------------------------------------------------
// GET /restaurant/menu/items
// --------------------------------------------------
func (h *Handler) MenuItems(c *gin.Context) {
	items, err := h.service.MenuItems(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []menu.Item{}
	}
	c.JSON(http.StatusOK, items)
}

// --------------------------------------------------
// POST /restaurant/menu/items
// --------------------------------------------------
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	it, err := h.service.AddMenuItem(c.Request.Context(), c.GetString("userID"), req.item())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// --------------------------------------------------
// PUT /restaurant/menu/items/:id
// --------------------------------------------------
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	it := req.item()
	it.ID = id
	updated, err := h.service.UpdateMenuItem(c.Request.Context(), c.GetString("userID"), it)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --------------------------------------------------
// DELETE /restaurant/menu/items/:id
// --------------------------------------------------
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMenuItem(c.Request.Context(), c.GetString("userID"), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "register your restaurant first"})
	case errors.Is(err, ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidInput), errors.Is(err, menu.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, menu.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, order.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("restaurant request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
