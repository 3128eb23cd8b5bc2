package order

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"foodifusion/internal/cart"
)

func setupOrderTestRouter(f *fixture, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("sessionID", "s1")
		c.Set("userID", userID)
		c.Next()
	})

	h := NewHandler(
		f.service(f.repo),
		cart.NewService(f.store, f.menu, 1000),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	r.POST("/orders", h.Place)
	r.GET("/orders/:id", h.Get)
	return r
}

func postForm(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PlaceRedirectsToConfirmation(t *testing.T) {
	f := newFixture(t)
	f.addToCart(1, 2500, 2)
	f.addToCart(2, 1500, 1)
	f.verify()
	r := setupOrderTestRouter(f, "cust-1")

	w := postForm(r, url.Values{"restaurant_id": {"7"}, "order_instructions": {"ring twice"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/orders/") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, loc, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var o Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatal(err)
	}
	if o.TotalAmount != 8000 || o.SpecialInstructions != "ring twice" || len(o.Items) != 2 {
		t.Errorf("unexpected order %+v", o)
	}
	if strings.Contains(w.Body.String(), "payment_screenshot_path") {
		t.Error("evidence location must not be exposed")
	}
}

func TestHandler_PlaceNotVerifiedKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.addToCart(1, 2500, 1)
	r := setupOrderTestRouter(f, "cust-1")

	w := postForm(r, url.Values{"restaurant_id": {"7"}})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var body struct {
		Error string    `json:"error"`
		Cart  cart.View `json:"cart"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Cart.Total != 3500 || len(body.Cart.Lines) != 1 {
		t.Errorf("cart should be redisplayed, got %+v", body.Cart)
	}
}

func TestHandler_PlaceMissingRestaurant(t *testing.T) {
	r := setupOrderTestRouter(newFixture(t), "cust-1")

	w := postForm(r, url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandler_GetOtherCustomersOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(1, 2500, 1)
	f.verify()

	w := postForm(setupOrderTestRouter(f, "cust-1"), url.Values{"restaurant_id": {"7"}})
	loc := w.Header().Get("Location")

	w = httptest.NewRecorder()
	setupOrderTestRouter(f, "intruder").ServeHTTP(w, httptest.NewRequest(http.MethodGet, loc, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
