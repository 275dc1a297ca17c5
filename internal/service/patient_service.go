package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/repository"
)

// PatientService 患者文档服务接口
// 每个写操作完成后推送一份按床号排序的全量快照；推送失败只记日志，
// 写入本身不回滚（快照会随下一次变更补上）。
type PatientService interface {
	ListPatients(ctx context.Context) ([]domain.Patient, error)
	CreatePatient(ctx context.Context, p domain.Patient) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, p domain.Patient) error
	DeletePatient(ctx context.Context, patientID string) error
	ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error
}

type patientService struct {
	repo      repository.PatientsRepository
	publisher SnapshotPublisher
	logger    *zap.Logger
}

// NewPatientService 创建患者服务
func NewPatientService(repo repository.PatientsRepository, publisher SnapshotPublisher, logger *zap.Logger) PatientService {
	return &patientService{repo: repo, publisher: publisher, logger: logger}
}

// ListPatients 返回按床号排序的患者列表（订阅契约要求的顺序）
func (s *patientService) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	sortByBed(patients)
	return patients, nil
}

// CreatePatient 创建患者并推快照
func (s *patientService) CreatePatient(ctx context.Context, p domain.Patient) (*domain.Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid patient: %w", err)
	}
	if p.Treatments == nil {
		p.Treatments = []domain.TreatmentSession{}
	}

	id, err := s.repo.CreatePatient(ctx, &p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	s.publishPatients(ctx)
	return &p, nil
}

// UpdatePatient 整笔替换患者栏位并推快照
func (s *patientService) UpdatePatient(ctx context.Context, p domain.Patient) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid patient: %w", err)
	}
	if err := s.repo.UpdatePatient(ctx, &p); err != nil {
		return err
	}
	s.publishPatients(ctx)
	return nil
}

// DeletePatient 硬删除并推快照
func (s *patientService) DeletePatient(ctx context.Context, patientID string) error {
	if err := s.repo.DeletePatient(ctx, patientID); err != nil {
		return err
	}
	s.publishPatients(ctx)
	return nil
}

// ReplaceTreatments 整列重写治疗序列并推快照。
// 每笔纪录先过不变量校验（总针数等于各部位之和）。
func (s *patientService) ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error {
	for _, t := range treatments {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid treatment session %s: %w", t.ID, err)
		}
	}
	if err := s.repo.ReplaceTreatments(ctx, patientID, treatments); err != nil {
		return err
	}
	s.publishPatients(ctx)
	return nil
}

func (s *patientService) publishPatients(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		s.logger.Error("Failed to load patients for snapshot", zap.Error(err))
		return
	}
	sortByBed(patients)
	if err := s.publisher.PublishPatients(ctx, patients); err != nil {
		s.logger.Error("Failed to publish patients snapshot", zap.Error(err))
	}
}

func sortByBed(patients []domain.Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		return domain.CompareBedNumbers(patients[i].BedNumber, patients[j].BedNumber) < 0
	})
}
