package menu

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupMenuTestRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := NewHandler(NewService(repo), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.GET("/restaurants/:id/menu", handler.GetMenu)

	return r
}

func TestGetMenu_ListsOnlyAvailableItemsGrouped(t *testing.T) {
	repo := NewInMemoryRepository(
		Item{ID: 1, RestaurantID: 7, Category: "Mains", Name: "Ndole", Price: 2500, Available: true},
		Item{ID: 2, RestaurantID: 7, Category: "Drinks", Name: "Bissap", Price: 1500, Available: true},
		Item{ID: 3, RestaurantID: 7, Category: "Mains", Name: "Eru", Price: 3000, Available: false},
		Item{ID: 4, RestaurantID: 8, Category: "Mains", Name: "Koki", Price: 2000, Available: true},
	)
	router := setupMenuTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/restaurants/7/menu", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Sections []Section `json:"sections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if len(resp.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %+v", resp.Sections)
	}
	if resp.Sections[0].Category != "Mains" || len(resp.Sections[0].Items) != 1 {
		t.Errorf("unexpected first section: %+v", resp.Sections[0])
	}
}

func TestGetMenu_InvalidID(t *testing.T) {
	router := setupMenuTestRouter(NewInMemoryRepository())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/restaurants/abc/menu", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestInMemoryRepository_GetItemScopedToRestaurant(t *testing.T) {
	repo := NewInMemoryRepository(Item{ID: 1, RestaurantID: 7, Name: "Ndole", Price: 2500, Available: true})

	if _, err := repo.GetItem(context.Background(), 8, 1); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound for foreign restaurant, got %v", err)
	}
	it, err := repo.GetItem(context.Background(), 7, 1)
	if err != nil || it.Price != 2500 {
		t.Fatalf("unexpected: %+v, %v", it, err)
	}
}
