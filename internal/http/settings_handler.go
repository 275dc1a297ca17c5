package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/service"
)

// SettingsHandler 设定单例文档 API
type SettingsHandler struct {
	svc    service.SettingsService
	logger *zap.Logger
}

// NewSettingsHandler 创建设定 Handler
func NewSettingsHandler(svc service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

// GetSettings GET /api/v1/settings（不存在时返回自动初始化的默认值）
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("GetSettings failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get settings: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(settings))
}

// ReplaceSettings PUT /api/v1/settings（整份替换）
func (h *SettingsHandler) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.Settings
	if err := readBodyJSON(r, maxBodyBytes, &s); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.svc.ReplaceSettings(r.Context(), s); err != nil {
		h.logger.Error("ReplaceSettings failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to replace settings: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"updated": true}))
}
