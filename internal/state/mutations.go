package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/lifecycle"
	"needletrack/internal/store"
)

// ErrSessionNotFound 指定治疗纪录不存在
var ErrSessionNotFound = errors.New("treatment session not found")

// DuplicateRecordError 病历号与现有患者冲突；带上既有患者的姓名与床号
// 供提示使用。
type DuplicateRecordError struct {
	MedicalRecordNumber string
	Name                string
	BedNumber           string
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("medical record number %s already exists (patient %s, bed %s)",
		e.MedicalRecordNumber, e.Name, e.BedNumber)
}

// AddPatient 新增患者。病历号与在院患者重复时在任何写入发生前拒绝。
// 返回库方指派的患者 ID。
func (s *Store) AddPatient(ctx context.Context, p domain.Patient) (string, error) {
	p.ID = ""
	p.Treatments = []domain.TreatmentSession{}
	if err := p.Validate(); err != nil {
		return "", err
	}

	s.mu.RLock()
	var dup *DuplicateRecordError
	for _, existing := range s.patients {
		if existing.MedicalRecordNumber == p.MedicalRecordNumber {
			dup = &DuplicateRecordError{
				MedicalRecordNumber: p.MedicalRecordNumber,
				Name:                existing.Name,
				BedNumber:           existing.BedNumber,
			}
			break
		}
	}
	s.mu.RUnlock()
	if dup != nil {
		return "", dup
	}

	id, err := s.adapter.CreatePatient(ctx, p)
	if err != nil {
		s.logger.Error("Create patient write failed", zap.Error(err))
		return "", err
	}
	return id, nil
}

// UpdatePatient 按 ID 整笔替换患者栏位
func (s *Store) UpdatePatient(ctx context.Context, p domain.Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := s.Patient(p.ID); !ok {
		return store.ErrPatientNotFound
	}
	if err := s.adapter.ReplacePatient(ctx, p); err != nil {
		s.logger.Error("Replace patient write failed", zap.String("patient_id", p.ID), zap.Error(err))
		return err
	}
	return nil
}

// DeletePatient 硬删除患者（操作端须先经人工确认）
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	if err := s.adapter.DeletePatient(ctx, id); err != nil {
		s.logger.Error("Delete patient write failed", zap.String("patient_id", id), zap.Error(err))
		return err
	}
	return nil
}

// AddTreatment 指派新 ID、前插到治疗序列最前端，然后整列重写。
// 远端没有单笔追加原语，整列重写是唯一写法。
func (s *Store) AddTreatment(ctx context.Context, patientID string, session domain.TreatmentSession) error {
	if err := lifecycle.ValidateRecord(session.TotalNeedles, session.AttendingPhysician); err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return err
	}

	patient, ok := s.Patient(patientID)
	if !ok {
		return store.ErrPatientNotFound
	}

	session = session.Clone()
	session.ID = uuid.NewString()
	treatments := append([]domain.TreatmentSession{session}, patient.Treatments...)

	if err := s.adapter.ReplaceTreatments(ctx, patientID, treatments); err != nil {
		s.logger.Error("Add treatment write failed", zap.String("patient_id", patientID), zap.Error(err))
		return err
	}
	return nil
}

// UpdateTreatment 替换序列中 ID 相符的元素并整列重写（修改进行中的纪录）
func (s *Store) UpdateTreatment(ctx context.Context, patientID string, session domain.TreatmentSession) error {
	if err := lifecycle.ValidateRecord(session.TotalNeedles, session.AttendingPhysician); err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return err
	}

	patient, ok := s.Patient(patientID)
	if !ok {
		return store.ErrPatientNotFound
	}

	found := false
	for i, t := range patient.Treatments {
		if t.ID == session.ID {
			patient.Treatments[i] = session.Clone()
			found = true
			break
		}
	}
	if !found {
		return ErrSessionNotFound
	}

	if err := s.adapter.ReplaceTreatments(ctx, patientID, patient.Treatments); err != nil {
		s.logger.Error("Update treatment write failed", zap.String("patient_id", patientID), zap.Error(err))
		return err
	}
	return nil
}

// CompleteRemoval 完成拔针：把拔针时间写到相符纪录上并整列重写。
// 已关闭的纪录返回 lifecycle.ErrAlreadyClosed，原拔针时间不动。
func (s *Store) CompleteRemoval(ctx context.Context, patientID, sessionID string) error {
	patient, ok := s.Patient(patientID)
	if !ok {
		return store.ErrPatientNotFound
	}

	found := false
	for i := range patient.Treatments {
		if patient.Treatments[i].ID != sessionID {
			continue
		}
		if err := lifecycle.Close(&patient.Treatments[i], domain.FormatTime(s.clock())); err != nil {
			return err
		}
		found = true
		break
	}
	if !found {
		return ErrSessionNotFound
	}

	if err := s.adapter.ReplaceTreatments(ctx, patientID, patient.Treatments); err != nil {
		s.logger.Error("Complete removal write failed",
			zap.String("patient_id", patientID),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return err
	}
	return nil
}

// UpdateSettings 整份替换设定文档；先 Normalize 再校验
func (s *Store) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	normalized := settings.Normalize()
	if err := normalized.Validate(); err != nil {
		return err
	}
	if err := s.adapter.ReplaceSettings(ctx, normalized); err != nil {
		s.logger.Error("Replace settings write failed", zap.Error(err))
		return err
	}
	return nil
}
