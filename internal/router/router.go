package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"foodifusion/internal/auth"
	"foodifusion/internal/cart"
	"foodifusion/internal/menu"
	"foodifusion/internal/metrics"
	"foodifusion/internal/middleware"
	"foodifusion/internal/order"
	"foodifusion/internal/payment"
	"foodifusion/internal/restaurant"
	"foodifusion/internal/session"
)

type Deps struct {
	Logger      *slog.Logger
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Ping reports backing-store health. Nil means always healthy.
	Ping func(ctx context.Context) error

	Tokens   *auth.TokenManager
	Sessions *session.Manager

	Auth     *auth.Handler
	Menu     *menu.Handler
	Cart     *cart.Handler
	Payments *payment.Handler
	Orders   *order.Handler

	Restaurants *restaurant.Handler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger), d.Metrics.Middleware())

	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ---- Health ----
	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	authn := middleware.AuthMiddleware(d.Tokens, d.Sessions, d.Logger)

	// ---- Auth ----
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.POST("/logout", authn, d.Auth.Logout)
	}

	// ---- Public directory + menu ----
	r.GET("/restaurants", d.Restaurants.List)
	r.GET("/restaurants/:id/menu", d.Menu.GetMenu)

	// ---- Customer ordering flow ----
	customer := r.Group("")
	customer.Use(authn, middleware.RequireRole(auth.RoleCustomer))
	{
		customer.GET("/cart", d.Cart.Get)
		customer.POST("/cart/items", d.Cart.AddItem)
		customer.PUT("/cart/items", d.Cart.UpdateItem)
		customer.DELETE("/cart/items", d.Cart.RemoveItem)
		customer.DELETE("/cart", d.Cart.Clear)

		customer.POST("/payments/verify", d.Payments.Verify)

		customer.POST("/orders", d.Orders.Place)
		customer.GET("/orders/:id", d.Orders.Get)
	}

	// ---- Restaurant owner dashboard ----
	owner := r.Group("/restaurant")
	owner.Use(authn, middleware.RequireRole(auth.RoleRestaurant))
	{
		owner.POST("", d.Restaurants.Register)
		owner.GET("", d.Restaurants.Mine)
		owner.PUT("", d.Restaurants.UpdateProfile)
		owner.GET("/dashboard", d.Restaurants.Dashboard)

		owner.GET("/orders", d.Restaurants.Orders)
		owner.GET("/orders/:id", d.Restaurants.Order)
		owner.PATCH("/orders/:id/status", d.Restaurants.UpdateOrderStatus)

		owner.GET("/menu/items", d.Restaurants.MenuItems)
		owner.POST("/menu/items", d.Restaurants.AddMenuItem)
		owner.PUT("/menu/items/:id", d.Restaurants.UpdateMenuItem)
		owner.DELETE("/menu/items/:id", d.Restaurants.DeleteMenuItem)
	}

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
