package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"needletrack/internal/domain"
	"needletrack/internal/repository"
	"needletrack/internal/service"

	"go.uber.org/zap"
)

func newSettingsRouter(t *testing.T) *Router {
	t.Helper()
	logger := zap.NewNop()
	svc := service.NewSettingsService(repository.NewMemorySettingsRepository(), nil, logger)

	router := NewRouter(logger)
	router.RegisterSettingsRoutes(NewSettingsHandler(svc, logger))
	return router
}

func TestGetSettings_ReturnsDefaults(t *testing.T) {
	router := newSettingsRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/settings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var res Result[domain.Settings]
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if res.Code != ResultSuccess {
		t.Fatalf("expected success wrapper, got: %s", w.Body.String())
	}
	if res.Result.AcupointCount != domain.DefaultAcupointCount {
		t.Errorf("expected %d acupoints, got %d", domain.DefaultAcupointCount, res.Result.AcupointCount)
	}
	if res.Result.Physicians[1][0] != "1組醫師A" {
		t.Errorf("expected default physicians, got %v", res.Result.Physicians[1])
	}
}

func TestReplaceSettings_RoundTrip(t *testing.T) {
	router := newSettingsRouter(t)

	// 不完整输入：储存前 Normalize 补齐
	w := doJSON(t, router, http.MethodPut, "/api/v1/settings", `{"acupointCount":3,"teamCount":2,"acupointNames":{"1":"合谷"}}`)
	if !strings.Contains(w.Body.String(), `"code":2000`) {
		t.Fatalf("replace failed: %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/settings", "")
	var res Result[domain.Settings]
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if res.Result.AcupointCount != 3 {
		t.Errorf("expected 3 acupoints, got %d", res.Result.AcupointCount)
	}
	if res.Result.AcupointNames[1] != "合谷" {
		t.Errorf("expected custom acupoint name, got %q", res.Result.AcupointNames[1])
	}
	if res.Result.AcupointNames[2] != "2" {
		t.Errorf("expected normalized default name, got %q", res.Result.AcupointNames[2])
	}
}

func TestReplaceSettings_InvalidBody(t *testing.T) {
	router := newSettingsRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/settings", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSettingsRoutes_MethodNotAllowed(t *testing.T) {
	router := newSettingsRouter(t)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/settings", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
