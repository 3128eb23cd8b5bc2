package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"foodifusion/internal/auth"
	"foodifusion/internal/cart"
	"foodifusion/internal/config"
	"foodifusion/internal/events"
	"foodifusion/internal/llm"
	"foodifusion/internal/menu"
	"foodifusion/internal/metrics"
	"foodifusion/internal/order"
	"foodifusion/internal/payment"
	"foodifusion/internal/restaurant"
	"foodifusion/internal/session"
	"foodifusion/internal/storage"
)

type stubVision struct {
	reply string
}

func (s *stubVision) Configured() bool { return true }

func (s *stubVision) Analyze(context.Context, string, []byte, string) (string, error) {
	return s.reply, nil
}

func newTestRouter(t *testing.T, ping func(context.Context) error) (*gin.Engine, *stubVision) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	dir := t.TempDir()

	temp := storage.NewTempStore(filepath.Join(dir, "temp_payments"))
	store := session.NewMemoryStore()
	sessions := session.NewManager(store, temp, time.Hour, logger)
	tokens := auth.NewTokenManager("router-test-secret", time.Hour)

	menuRepo := menu.NewInMemoryRepository(
		menu.Item{ID: 1, RestaurantID: 7, Category: "Mains", Name: "Ndole", Price: 2500, Available: true},
		menu.Item{ID: 2, RestaurantID: 7, Category: "Drinks", Name: "Bissap", Price: 1500, Available: true},
	)
	cartSvc := cart.NewService(store, menuRepo, 1000)

	vision := &stubVision{reply: `{"payment_valid": true, "reason": "ok"}`}
	accounts := []config.Account{{Label: "MTN Money", ID: "672777761"}}
	state := payment.NewState(store, temp, logger)
	paySvc := payment.NewService(
		vision,
		payment.NewReceiver(temp, 5_000_000, true),
		payment.NewVerifier(vision, temp, llm.BuildPaymentPrompt(accounts), time.Second, 4, m, logger),
		state,
		m,
		logger,
	)

	orders := order.NewInMemoryRepository()
	orderSvc := order.NewService(
		orders,
		menuRepo,
		store,
		state,
		storage.NewLocalEvidence(filepath.Join(dir, "payments")),
		events.Noop{},
		1000,
		m,
		logger,
	)

	r := NewRouter(Deps{
		Logger:   logger,
		Metrics:  m,
		Ping:     ping,
		Tokens:   tokens,
		Sessions: sessions,
		Auth:     auth.NewHandler(auth.NewService(auth.NewInMemoryUserRepository(), sessions, tokens), logger),
		Menu:     menu.NewHandler(menu.NewService(menuRepo), logger),
		Cart:     cart.NewHandler(cartSvc, logger),
		Payments: payment.NewHandler(paySvc, logger),
		Orders:   order.NewHandler(orderSvc, cartSvc, logger),

		Restaurants: restaurant.NewHandler(
			restaurant.NewService(restaurant.NewInMemoryRepository(), orders, menuRepo, events.Noop{}, logger),
			logger,
		),
	})
	return r, vision
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	r, _ := newTestRouter(t, func(context.Context) error { return errors.New("connection refused") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, path := range []string{"/cart", "/orders/1", "/restaurant/dashboard"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

// ---- End-to-end ordering flow ----

type client struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func (c *client) json(method, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="payment_screenshot"; filename="momo.png"`)
	h.Set("Content-Type", "image/png")
	part, _ := mw.CreatePart(h)
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/payments/verify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) placeOrder() *httptest.ResponseRecorder {
	form := url.Values{"restaurant_id": {"7"}, "order_instructions": {"extra pepper"}}
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(email, role string) {
	c.t.Helper()
	c.json(http.MethodPost, "/auth/register", map[string]string{
		"name": "Test", "email": email, "password": "Password@123", "role": role,
	})
	w := c.json(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "Password@123"})
	if w.Code != http.StatusOK {
		c.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	c.token = resp.Token
}

var png = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestOrderingFlow(t *testing.T) {
	r, vision := newTestRouter(t, nil)
	c := &client{t: t, r: r}
	c.login("ada@example.com", auth.RoleCustomer)

	w := c.json(http.MethodGet, "/restaurants/7/menu", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("menu: %d", w.Code)
	}

	c.json(http.MethodPost, "/cart/items", map[string]any{"restaurant_id": 7, "item_id": 1, "quantity": 2})
	c.json(http.MethodPost, "/cart/items", map[string]any{"restaurant_id": 7, "item_id": 2, "quantity": 1})

	if w := c.placeOrder(); w.Code != http.StatusConflict {
		t.Fatalf("order before verification: expected 409, got %d", w.Code)
	}

	vision.reply = `{"payment_valid": false, "reason": "Recipient does not match"}`
	w = c.upload(png)
	if !strings.Contains(w.Body.String(), "Invalid Payment: Recipient does not match") {
		t.Fatalf("expected rejection, got %s", w.Body.String())
	}

	vision.reply = `{"payment_valid": true, "reason": "ok"}`
	w = c.upload(png)
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("expected verification, got %s", w.Body.String())
	}

	w = c.placeOrder()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("place order: expected 303, got %d: %s", w.Code, w.Body.String())
	}

	w = c.json(http.MethodGet, w.Header().Get("Location"), nil)
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.TotalAmount != 8000 || o.Status != order.StatusPending {
		t.Errorf("unexpected order %+v", o)
	}

	if w := c.placeOrder(); w.Code != http.StatusBadRequest {
		t.Errorf("resubmit with cleared cart: expected 400, got %d", w.Code)
	}

	if w := c.json(http.MethodPost, "/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := c.json(http.MethodGet, "/cart", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("token should be dead after logout, got %d", w.Code)
	}
}

func TestRestaurantCannotOrder(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	c := &client{t: t, r: r}
	c.login("chef@example.com", auth.RoleRestaurant)

	if w := c.json(http.MethodGet, "/cart", nil); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRestaurantOwnerRoutes(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	owner := &client{t: t, r: r}
	owner.login("chef@example.com", auth.RoleRestaurant)
	if w := owner.json(http.MethodPost, "/restaurant", map[string]string{"name": "Chez Chef"}); w.Code != http.StatusCreated {
		t.Fatalf("register restaurant: expected 201, got %d: %s", w.Code, w.Body)
	}
	if w := owner.json(http.MethodGet, "/restaurant/dashboard", nil); w.Code != http.StatusOK {
		t.Errorf("dashboard: expected 200, got %d", w.Code)
	}

	customer := &client{t: t, r: r}
	customer.login("alice@example.com", auth.RoleCustomer)
	if w := customer.json(http.MethodGet, "/restaurant/dashboard", nil); w.Code != http.StatusForbidden {
		t.Errorf("customer on owner routes: expected 403, got %d", w.Code)
	}

	w := customer.json(http.MethodGet, "/restaurants", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Chez Chef") {
		t.Errorf("directory: %d %s", w.Code, w.Body)
	}
}
