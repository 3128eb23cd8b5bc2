package restaurant

import (
	"strings"
	"time"

	"foodifusion/internal/order"
)

// Restaurant is owned by exactly one RESTAURANT user.
type Restaurant struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"-"`
	Name        string    `json:"name"`
	CuisineType string    `json:"cuisine_type"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile is the owner-editable part of a restaurant.
type Profile struct {
	Name        string `json:"name"`
	CuisineType string `json:"cuisine_type"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

func (p *Profile) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.CuisineType = strings.TrimSpace(p.CuisineType)
	p.Address = strings.TrimSpace(p.Address)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Description = strings.TrimSpace(p.Description)
}

func (r *Restaurant) apply(p Profile) {
	r.Name = p.Name
	r.CuisineType = p.CuisineType
	r.Address = p.Address
	r.Phone = p.Phone
	r.Description = p.Description
}

// Dashboard is the owner's landing view.
type Dashboard struct {
	Restaurant *Restaurant   `json:"restaurant"`
	Stats      order.Stats   `json:"stats"`
	Recent     []order.Order `json:"recent_orders"`
}
