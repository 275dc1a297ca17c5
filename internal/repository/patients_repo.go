package repository

import (
	"context"

	"needletrack/internal/domain"
)

// PatientsRepository 患者文档 Repository 接口
// 使用强类型领域模型；治疗序列整列存取，没有单笔追加/修改接口。
type PatientsRepository interface {
	// ListPatients 返回全部患者（排序由 Service 层负责）
	ListPatients(ctx context.Context) ([]domain.Patient, error)
	// GetPatient 按 ID 获取
	GetPatient(ctx context.Context, patientID string) (*domain.Patient, error)
	// CreatePatient 创建患者，返回指派的 ID
	CreatePatient(ctx context.Context, p *domain.Patient) (string, error)
	// UpdatePatient 按 ID 整笔替换患者栏位（不含治疗序列）
	UpdatePatient(ctx context.Context, p *domain.Patient) error
	// DeletePatient 硬删除
	DeletePatient(ctx context.Context, patientID string) error
	// ReplaceTreatments 整列重写治疗序列
	ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error
}
