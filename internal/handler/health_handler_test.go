package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_LivenessProbe(t *testing.T) {
	handler := NewHealthHandler(nil, "blocking_rules")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/health", nil)

	handler.LivenessProbe(c)

	if w.Code != http.StatusOK {
		t.Errorf("LivenessProbe() status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHealthHandler_ReadinessProbe(t *testing.T) {
	tests := []struct {
		name   string
		store  Pinger
		status int
	}{
		{"no store", nil, http.StatusOK},
		{"healthy store", pingerFunc(func(context.Context) error { return nil }), http.StatusOK},
		{"broken store", pingerFunc(func(context.Context) error { return errors.New("closed") }), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.store, "blocking_rules")

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/health/ready", nil)

			handler.ReadinessProbe(c)

			if w.Code != tt.status {
				t.Errorf("ReadinessProbe() status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}
