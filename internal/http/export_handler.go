package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"needletrack/internal/export"
	"needletrack/internal/service"
)

// ExportHandler 名册导出 API
type ExportHandler struct {
	svc    service.PatientService
	logger *zap.Logger
}

// NewExportHandler 创建导出 Handler
func NewExportHandler(svc service.PatientService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// ExportPatients GET /api/v1/export/patients.xlsx 导出患者名册
func (h *ExportHandler) ExportPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.ListPatients(r.Context())
	if err != nil {
		h.logger.Error("ListPatients failed for export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list patients: %v", err)))
		return
	}

	excelData, err := export.PatientsWorkbook(patients)
	if err != nil {
		h.logger.Error("PatientsWorkbook failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=patients-export.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(excelData)
}
