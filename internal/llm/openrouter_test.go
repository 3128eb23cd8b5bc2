package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodifusion/internal/config"
)

func TestOpenRouterClient_Analyze(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-123" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Title") != "FoodiFusion" {
			t.Errorf("missing X-Title header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"payment_valid\": true, \"reason\": \"ok\"}"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenRouterClient("key-123", "openai/gpt-4o", srv.URL, "FoodiFusion", time.Second)
	text, err := c.Analyze(context.Background(), "check it", []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ParseVerdict(text).Approved {
		t.Errorf("expected approved verdict from %q", text)
	}

	if got.Model != "openai/gpt-4o" || len(got.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", got)
	}
	parts := got.Messages[0].Content
	if len(parts) != 2 || parts[0].Text != "check it" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/png;base64,aW1n" {
		t.Errorf("unexpected image part: %+v", parts[1].ImageURL)
	}
}

func TestOpenRouterClient_NotConfigured(t *testing.T) {
	c := NewOpenRouterClient("", "m", "http://unused", "", time.Second)
	if c.Configured() {
		t.Fatal("client without key reports configured")
	}
	_, err := c.Analyze(context.Background(), "p", []byte("img"), "image/png")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenRouterClient_ServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"choices":[]}`))
		default:
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}
	}))
	defer srv.Close()

	tests := []struct {
		name       string
		path       string
		timeout    time.Duration
		wantStatus int
	}{
		{"non-2xx", "/fail", time.Second, http.StatusBadGateway},
		{"timeout", "/slow", 20 * time.Millisecond, 0},
		{"empty choices", "/empty", time.Second, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOpenRouterClient("k", "m", srv.URL+tt.path, "", tt.timeout)
			_, err := c.Analyze(context.Background(), "p", []byte("img"), "image/png")

			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ServiceError, got %v", err)
			}
			if se.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, se.Status)
			}
			if se.Err == nil {
				t.Error("service error lost its cause")
			}
		})
	}
}

func TestBuildPaymentPrompt(t *testing.T) {
	p := BuildPaymentPrompt([]config.Account{
		{Label: "MTN Money", ID: "672777761"},
		{Label: "Orange Money", ID: "69865203"},
	})
	for _, want := range []string{"'MTN Money: 672777761'", "'Orange Money: 69865203'", "payment_valid", "reason"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
