package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/store"
)

// SnapshotPublisher 每次变更后向订阅中的工作站推送全量替换快照
type SnapshotPublisher interface {
	PublishPatients(ctx context.Context, patients []domain.Patient) error
	PublishSettings(ctx context.Context, settings domain.Settings) error
}

// RedisPublisher 把快照 PUBLISH 到 Redis 频道
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPublisher 创建 Redis 快照发布器
func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

var _ SnapshotPublisher = (*RedisPublisher)(nil)

// PublishPatients 推送患者集合快照（已按床号排序）
func (p *RedisPublisher) PublishPatients(ctx context.Context, patients []domain.Patient) error {
	payload, err := json.Marshal(patients)
	if err != nil {
		return fmt.Errorf("failed to encode patients snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, store.PatientsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish patients snapshot: %w", err)
	}
	return nil
}

// PublishSettings 推送设定快照
func (p *RedisPublisher) PublishSettings(ctx context.Context, settings domain.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, store.SettingsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish settings snapshot: %w", err)
	}
	return nil
}
