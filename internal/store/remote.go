package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"needletrack/internal/domain"
)

// RemoteAdapter 对接 needletrack-server：写入走 REST API，
// 快照订阅走 Redis 频道（服务端每次变更后 PUBLISH 全量快照）。
type RemoteAdapter struct {
	api    *resty.Client
	redis  *redis.Client
	logger *zap.Logger
}

// NewRemoteAdapter 创建远端适配器
func NewRemoteAdapter(baseURL string, redisClient *redis.Client, logger *zap.Logger) *RemoteAdapter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteAdapter{
		api:    client,
		redis:  redisClient,
		logger: logger,
	}
}

var _ Adapter = (*RemoteAdapter)(nil)

// apiResult 服务端统一响应壳（对应 httpapi.Result）
type apiResult[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const apiResultSuccess = 2000

// SubscribePatients 先经 REST 拉一次全量作为首个快照，之后消费 Redis 推送。
// 订阅出错时推送一个带 Err 的终止事件并关闭通道，不自动重试。
func (a *RemoteAdapter) SubscribePatients(ctx context.Context) (<-chan PatientsSnapshot, error) {
	sub := a.redis.Subscribe(ctx, PatientsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe patients channel: %w", err)
	}

	out := make(chan PatientsSnapshot, 8)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		patients, err := a.fetchPatients(ctx)
		if err != nil {
			out <- PatientsSnapshot{Err: err}
			return
		}
		out <- PatientsSnapshot{Patients: patients}

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					out <- PatientsSnapshot{Err: errors.New("patients subscription closed")}
					return
				}
				var snapshot []domain.Patient
				if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
					a.logger.Warn("Dropping malformed patients snapshot", zap.Error(err))
					continue
				}
				out <- PatientsSnapshot{Patients: snapshot}
			}
		}
	}()
	return out, nil
}

// SubscribeSettings 同 SubscribePatients，针对设定单例文档
func (a *RemoteAdapter) SubscribeSettings(ctx context.Context) (<-chan SettingsSnapshot, error) {
	sub := a.redis.Subscribe(ctx, SettingsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe settings channel: %w", err)
	}

	out := make(chan SettingsSnapshot, 8)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		settings, err := a.fetchSettings(ctx)
		if err != nil {
			out <- SettingsSnapshot{Err: err}
			return
		}
		out <- SettingsSnapshot{Settings: settings}

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					out <- SettingsSnapshot{Err: errors.New("settings subscription closed")}
					return
				}
				var snapshot domain.Settings
				if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
					a.logger.Warn("Dropping malformed settings snapshot", zap.Error(err))
					continue
				}
				out <- SettingsSnapshot{Settings: snapshot}
			}
		}
	}()
	return out, nil
}

// CreatePatient POST /api/v1/patients
func (a *RemoteAdapter) CreatePatient(ctx context.Context, p domain.Patient) (string, error) {
	var result apiResult[domain.Patient]
	resp, err := a.api.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&result).
		Post("/api/v1/patients")
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return "", fmt.Errorf("create patient: %w", err)
	}
	return result.Result.ID, nil
}

// ReplacePatient PUT /api/v1/patients/{id}
func (a *RemoteAdapter) ReplacePatient(ctx context.Context, p domain.Patient) error {
	var result apiResult[json.RawMessage]
	resp, err := a.api.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&result).
		Put("/api/v1/patients/" + p.ID)
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return fmt.Errorf("replace patient: %w", err)
	}
	return nil
}

// DeletePatient DELETE /api/v1/patients/{id}
func (a *RemoteAdapter) DeletePatient(ctx context.Context, id string) error {
	var result apiResult[json.RawMessage]
	resp, err := a.api.R().
		SetContext(ctx).
		SetResult(&result).
		Delete("/api/v1/patients/" + id)
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// ReplaceTreatments PUT /api/v1/patients/{id}/treatments（整列重写）
func (a *RemoteAdapter) ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error {
	var result apiResult[json.RawMessage]
	resp, err := a.api.R().
		SetContext(ctx).
		SetBody(treatments).
		SetResult(&result).
		Put("/api/v1/patients/" + patientID + "/treatments")
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return fmt.Errorf("replace treatments: %w", err)
	}
	return nil
}

// ReplaceSettings PUT /api/v1/settings
func (a *RemoteAdapter) ReplaceSettings(ctx context.Context, s domain.Settings) error {
	var result apiResult[json.RawMessage]
	resp, err := a.api.R().
		SetContext(ctx).
		SetBody(s).
		SetResult(&result).
		Put("/api/v1/settings")
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (a *RemoteAdapter) fetchPatients(ctx context.Context) ([]domain.Patient, error) {
	var result apiResult[[]domain.Patient]
	resp, err := a.api.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/v1/patients")
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return nil, fmt.Errorf("fetch patients: %w", err)
	}
	return result.Result, nil
}

func (a *RemoteAdapter) fetchSettings(ctx context.Context) (domain.Settings, error) {
	var result apiResult[domain.Settings]
	resp, err := a.api.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/v1/settings")
	if err := checkAPIResponse(resp, err, result.Code, result.Message); err != nil {
		return domain.Settings{}, fmt.Errorf("fetch settings: %w", err)
	}
	return result.Result, nil
}

func checkAPIResponse(resp *resty.Response, err error, code int, message string) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("server returned HTTP %d", resp.StatusCode())
	}
	if code != apiResultSuccess {
		return fmt.Errorf("server rejected request: %s", message)
	}
	return nil
}
