package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/service"
)

const maxBodyBytes = 1 << 20

// PatientsHandler 患者文档 API
type PatientsHandler struct {
	svc    service.PatientService
	logger *zap.Logger
}

// NewPatientsHandler 创建患者 Handler
func NewPatientsHandler(svc service.PatientService, logger *zap.Logger) *PatientsHandler {
	return &PatientsHandler{svc: svc, logger: logger}
}

// ListPatients GET /api/v1/patients（按床号排序）
func (h *PatientsHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.ListPatients(r.Context())
	if err != nil {
		h.logger.Error("ListPatients failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list patients: %v", err)))
		return
	}
	if patients == nil {
		patients = []domain.Patient{}
	}
	writeJSON(w, http.StatusOK, Ok(patients))
}

// CreatePatient POST /api/v1/patients
func (h *PatientsHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var p domain.Patient
	if err := readBodyJSON(r, maxBodyBytes, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	created, err := h.svc.CreatePatient(r.Context(), p)
	if err != nil {
		h.logger.Error("CreatePatient failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create patient: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(created))
}

// UpdatePatient PUT /api/v1/patients/{id}（整笔替换）
func (h *PatientsHandler) UpdatePatient(w http.ResponseWriter, r *http.Request, patientID string) {
	var p domain.Patient
	if err := readBodyJSON(r, maxBodyBytes, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	p.ID = patientID

	if err := h.svc.UpdatePatient(r.Context(), p); err != nil {
		h.logger.Error("UpdatePatient failed", zap.String("patient_id", patientID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to update patient: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"updated": true}))
}

// DeletePatient DELETE /api/v1/patients/{id}（硬删除）
func (h *PatientsHandler) DeletePatient(w http.ResponseWriter, r *http.Request, patientID string) {
	if err := h.svc.DeletePatient(r.Context(), patientID); err != nil {
		h.logger.Error("DeletePatient failed", zap.String("patient_id", patientID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to delete patient: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))
}

// ReplaceTreatments PUT /api/v1/patients/{id}/treatments（整列重写）
func (h *PatientsHandler) ReplaceTreatments(w http.ResponseWriter, r *http.Request, patientID string) {
	var treatments []domain.TreatmentSession
	if err := readBodyJSON(r, maxBodyBytes, &treatments); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.svc.ReplaceTreatments(r.Context(), patientID, treatments); err != nil {
		h.logger.Error("ReplaceTreatments failed", zap.String("patient_id", patientID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to replace treatments: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"updated": true}))
}
