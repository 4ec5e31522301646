package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/char5742/pointer-relay/internal/config"
	"github.com/char5742/pointer-relay/internal/filter"
)

func newTestRouter() *http.ServeMux {
	server := NewServer(config.DefaultConfig(), 0)
	router := http.NewServeMux()
	server.setupRoutes(router)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗しました: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestGetConfig(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var cfg config.Config
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("レスポンスの解析に失敗しました: %v", err)
	}
	if cfg.Filter.Type != filter.TypeEMA {
		t.Errorf("Filter.Type = %q, want %q", cfg.Filter.Type, filter.TypeEMA)
	}
}

func TestUpdateFilterChangesConfig(t *testing.T) {
	server := NewServer(config.DefaultConfig(), 0)
	router := http.NewServeMux()
	server.setupRoutes(router)

	body := `{"type":"kalman","process_noise":0.1,"measurement_noise":2.5}`
	req := httptest.NewRequest(http.MethodPut, "/api/filter", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	cfg := server.GetConfig()
	if cfg.Filter.Type != filter.TypeKalman {
		t.Errorf("Filter.Type = %q, want %q", cfg.Filter.Type, filter.TypeKalman)
	}
	if cfg.Filter.MeasurementNoise != 2.5 {
		t.Errorf("MeasurementNoise = %v, want 2.5", cfg.Filter.MeasurementNoise)
	}
}

func TestInjectEventRejectsInvalidPayload(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid_json", "{", http.StatusBadRequest},
		{"unknown_phase", `{"button":"Primary","phase":"TripleTap"}`, http.StatusBadRequest},
		{"unknown_direction", `{"direction":"Diagonal"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/event", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("ステータスコード = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
