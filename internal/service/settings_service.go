package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/repository"
)

// SettingsService 设定单例文档服务接口
type SettingsService interface {
	// GetSettings 获取设定（不存在时自动以默认值初始化）
	GetSettings(ctx context.Context) (*domain.Settings, error)
	// ReplaceSettings 整份替换并推快照
	ReplaceSettings(ctx context.Context, s domain.Settings) error
}

type settingsService struct {
	repo      repository.SettingsRepository
	publisher SnapshotPublisher
	logger    *zap.Logger
}

// NewSettingsService 创建设定服务
func NewSettingsService(repo repository.SettingsRepository, publisher SnapshotPublisher, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, publisher: publisher, logger: logger}
}

func (s *settingsService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.repo.GetSettings(ctx)
}

func (s *settingsService) ReplaceSettings(ctx context.Context, settings domain.Settings) error {
	normalized := settings.Normalize()
	if err := normalized.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.repo.ReplaceSettings(ctx, &normalized); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSettings(ctx, normalized); err != nil {
			s.logger.Error("Failed to publish settings snapshot", zap.Error(err))
		}
	}
	return nil
}
