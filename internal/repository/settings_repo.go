package repository

import (
	"context"

	"needletrack/internal/domain"
)

// SettingsRepository 设定单例文档 Repository 接口
type SettingsRepository interface {
	// GetSettings 获取设定；文档不存在时写入默认值并返回
	GetSettings(ctx context.Context) (*domain.Settings, error)
	// ReplaceSettings 整份替换设定文档
	ReplaceSettings(ctx context.Context, s *domain.Settings) error
}
