package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"needletrack/internal/domain"
)

// PostgresSettingsRepository 设定 Repository 实现（对应 app_settings 表）
// 表里只有一行（settings_id 固定为 1），整份文档存 JSONB。
type PostgresSettingsRepository struct {
	db *sql.DB
}

// NewPostgresSettingsRepository 创建设定 Repository
func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

var _ SettingsRepository = (*PostgresSettingsRepository)(nil)

const settingsRowID = 1

// GetSettings 获取设定；行不存在时插入默认值再返回
func (r *PostgresSettingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT doc::text FROM app_settings WHERE settings_id = $1`, settingsRowID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		defaults := domain.DefaultSettings()
		if err := r.ReplaceSettings(ctx, &defaults); err != nil {
			return nil, fmt.Errorf("failed to initialize default settings: %w", err)
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var s domain.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}

// ReplaceSettings 整份替换（UPSERT 单行）
func (r *PostgresSettingsRepository) ReplaceSettings(ctx context.Context, s *domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_settings (settings_id, doc)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (settings_id)
		DO UPDATE SET doc = EXCLUDED.doc
	`, settingsRowID, string(raw))
	if err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
