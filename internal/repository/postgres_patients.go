package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"needletrack/internal/domain"
)

// PostgresPatientsRepository 患者 Repository 实现（对应 patients 表）
// 治疗序列按文档语义存为 JSONB 整列，写入即整列替换。
type PostgresPatientsRepository struct {
	db *sql.DB
}

// NewPostgresPatientsRepository 创建患者 Repository
func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

// 确保实现了接口
var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

// ListPatients 返回全部患者
func (r *PostgresPatientsRepository) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	query := `
		SELECT
			patient_id::text,
			medical_record_number,
			patient_name,
			gender,
			bed_number,
			team,
			COALESCE(treatments, '[]'::jsonb)::text AS treatments
		FROM patients
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows.Scan)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}
	return patients, nil
}

// GetPatient 按 ID 获取患者
func (r *PostgresPatientsRepository) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT
			patient_id::text,
			medical_record_number,
			patient_name,
			gender,
			bed_number,
			team,
			COALESCE(treatments, '[]'::jsonb)::text AS treatments
		FROM patients
		WHERE patient_id = $1
	`

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, patientID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %w", err)
		}
		return nil, err
	}
	return p, nil
}

// CreatePatient 创建患者并返回指派的 ID
func (r *PostgresPatientsRepository) CreatePatient(ctx context.Context, p *domain.Patient) (string, error) {
	treatmentsJSON, err := marshalTreatments(p.Treatments)
	if err != nil {
		return "", err
	}

	var patientID string
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO patients (medical_record_number, patient_name, gender, bed_number, team, treatments)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		RETURNING patient_id::text
	`, p.MedicalRecordNumber, p.Name, p.Gender, p.BedNumber, p.Team, treatmentsJSON).Scan(&patientID)
	if err != nil {
		return "", fmt.Errorf("failed to create patient: %w", err)
	}
	return patientID, nil
}

// UpdatePatient 按 ID 整笔替换患者栏位（治疗序列不动）
func (r *PostgresPatientsRepository) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	if p.ID == "" {
		return fmt.Errorf("patient_id is required")
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET medical_record_number = $2,
		    patient_name = $3,
		    gender = $4,
		    bed_number = $5,
		    team = $6
		WHERE patient_id = $1
	`, p.ID, p.MedicalRecordNumber, p.Name, p.Gender, p.BedNumber, p.Team)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return requireOneRow(result, "patient")
}

// DeletePatient 硬删除
func (r *PostgresPatientsRepository) DeletePatient(ctx context.Context, patientID string) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = $1`, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return requireOneRow(result, "patient")
}

// ReplaceTreatments 整列重写治疗序列
func (r *PostgresPatientsRepository) ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	treatmentsJSON, err := marshalTreatments(treatments)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE patients SET treatments = $2::jsonb WHERE patient_id = $1
	`, patientID, treatmentsJSON)
	if err != nil {
		return fmt.Errorf("failed to replace treatments: %w", err)
	}
	return requireOneRow(result, "patient")
}

func scanPatient(scan func(dest ...any) error) (*domain.Patient, error) {
	var p domain.Patient
	var treatmentsRaw string
	if err := scan(
		&p.ID,
		&p.MedicalRecordNumber,
		&p.Name,
		&p.Gender,
		&p.BedNumber,
		&p.Team,
		&treatmentsRaw,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}
	if err := json.Unmarshal([]byte(treatmentsRaw), &p.Treatments); err != nil {
		return nil, fmt.Errorf("failed to decode treatments for patient %s: %w", p.ID, err)
	}
	if p.Treatments == nil {
		p.Treatments = []domain.TreatmentSession{}
	}
	return &p, nil
}

func marshalTreatments(treatments []domain.TreatmentSession) (string, error) {
	if treatments == nil {
		treatments = []domain.TreatmentSession{}
	}
	raw, err := json.Marshal(treatments)
	if err != nil {
		return "", fmt.Errorf("failed to encode treatments: %w", err)
	}
	return string(raw), nil
}

func requireOneRow(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found", entity)
	}
	return nil
}
