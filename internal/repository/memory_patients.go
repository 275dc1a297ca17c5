package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"needletrack/internal/domain"
)

// MemoryPatientsRepository 内存版患者 Repository
// DB 未就绪时的联测退路，语义与 Postgres 版一致。
type MemoryPatientsRepository struct {
	mu       sync.RWMutex
	patients map[string]domain.Patient
}

// NewMemoryPatientsRepository 创建内存患者 Repository
func NewMemoryPatientsRepository() *MemoryPatientsRepository {
	return &MemoryPatientsRepository{patients: make(map[string]domain.Patient)}
}

var _ PatientsRepository = (*MemoryPatientsRepository)(nil)

// ListPatients 返回全部患者
func (r *MemoryPatientsRepository) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p.Clone())
	}
	return out, nil
}

// GetPatient 按 ID 获取
func (r *MemoryPatientsRepository) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[patientID]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	cloned := p.Clone()
	return &cloned, nil
}

// CreatePatient 指派 UUID 并保存
func (r *MemoryPatientsRepository) CreatePatient(ctx context.Context, p *domain.Patient) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := p.Clone()
	stored.ID = uuid.NewString()
	if stored.Treatments == nil {
		stored.Treatments = []domain.TreatmentSession{}
	}
	r.patients[stored.ID] = stored
	return stored.ID, nil
}

// UpdatePatient 整笔替换患者栏位（治疗序列不动）
func (r *MemoryPatientsRepository) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.patients[p.ID]
	if !ok {
		return fmt.Errorf("patient not found")
	}
	updated := p.Clone()
	updated.Treatments = existing.Treatments
	r.patients[p.ID] = updated
	return nil
}

// DeletePatient 硬删除
func (r *MemoryPatientsRepository) DeletePatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patientID]; !ok {
		return fmt.Errorf("patient not found")
	}
	delete(r.patients, patientID)
	return nil
}

// ReplaceTreatments 整列重写治疗序列
func (r *MemoryPatientsRepository) ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[patientID]
	if !ok {
		return fmt.Errorf("patient not found")
	}
	p.Treatments = make([]domain.TreatmentSession, len(treatments))
	for i, s := range treatments {
		p.Treatments[i] = s.Clone()
	}
	r.patients[patientID] = p
	return nil
}
