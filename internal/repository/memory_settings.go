package repository

import (
	"context"
	"sync"

	"needletrack/internal/domain"
)

// MemorySettingsRepository 内存版设定 Repository（联测退路）
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

// NewMemorySettingsRepository 创建内存设定 Repository
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

var _ SettingsRepository = (*MemorySettingsRepository)(nil)

// GetSettings 获取设定；首次访问时初始化默认值
func (r *MemorySettingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		defaults := domain.DefaultSettings()
		r.settings = &defaults
	}
	cloned := r.settings.Clone()
	return &cloned, nil
}

// ReplaceSettings 整份替换
func (r *MemorySettingsRepository) ReplaceSettings(ctx context.Context, s *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := s.Clone()
	r.settings = &cloned
	return nil
}
