package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupRouter(service *HealthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	service.RegisterRoutes(r)
	return r
}

func TestCheck_AllHealthy(t *testing.T) {
	service := New(map[string]Probe{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return nil },
	})
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response CheckResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Status != "healthy" {
		t.Errorf("Expected healthy status, got %s", response.Status)
	}
	if response.Components["postgres"] != "ok" || response.Components["redis"] != "ok" {
		t.Errorf("Expected all components ok, got %v", response.Components)
	}
	if response.App == "" || response.Version == "" {
		t.Error("Expected app name and version in the payload")
	}
}

func TestCheck_FailingProbe(t *testing.T) {
	service := New(map[string]Probe{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}

	var response CheckResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Status != "degraded" {
		t.Errorf("Expected degraded status, got %s", response.Status)
	}
	if response.Components["redis"] != "unavailable" {
		t.Errorf("Expected redis unavailable, got %v", response.Components)
	}
	if response.Components["postgres"] != "ok" {
		t.Errorf("Expected postgres ok, got %v", response.Components)
	}
}

func TestCheck_ProbeTimeout(t *testing.T) {
	service := New(map[string]Probe{
		"postgres": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	service.probeTimeout = 10 // nanoseconds, force the deadline immediately
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 on probe timeout, got %d", w.Code)
	}
}
