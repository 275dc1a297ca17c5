// Package store 远端文档库的客户端适配层：订阅全量快照、整单写入。
// 所有写入都是"发出即不管"——写入结果只会透过下一次快照显现，
// 适配器本身不回传任何合并后的状态。
package store

import (
	"context"
	"errors"

	"needletrack/internal/domain"
)

// 快照推送用的 Redis 频道
const (
	PatientsChannel = "needletrack:patients"
	SettingsChannel = "needletrack:settings"
)

// ErrPatientNotFound 指定患者不存在
var ErrPatientNotFound = errors.New("patient not found")

// PatientsSnapshot 患者集合的全量替换快照事件。
// Err 非空表示订阅已终止，不会再有后续事件。
type PatientsSnapshot struct {
	Patients []domain.Patient
	Err      error
}

// SettingsSnapshot 设定文档的全量替换快照事件
type SettingsSnapshot struct {
	Settings domain.Settings
	Err      error
}

// Adapter 远端文档库原语。
// 订阅按床号排序推送完整快照（非增量 diff），订阅存续期间每次底层变更
// 都推一份；设定文档不存在时以默认值自动初始化。治疗序列只有整列重写
// 一种写法，没有单笔追加/修改的原语。
type Adapter interface {
	// SubscribePatients 订阅患者集合。ctx 取消即退订，通道随后关闭。
	SubscribePatients(ctx context.Context) (<-chan PatientsSnapshot, error)
	// SubscribeSettings 订阅设定单例文档。
	SubscribeSettings(ctx context.Context) (<-chan SettingsSnapshot, error)

	// CreatePatient 建立患者并返回库方指派的 ID
	CreatePatient(ctx context.Context, p domain.Patient) (string, error)
	// ReplacePatient 按 ID 整笔替换患者栏位
	ReplacePatient(ctx context.Context, p domain.Patient) error
	// DeletePatient 硬删除，不可恢复
	DeletePatient(ctx context.Context, id string) error
	// ReplaceTreatments 整列重写某患者的治疗序列
	ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error
	// ReplaceSettings 整份替换设定文档
	ReplaceSettings(ctx context.Context, s domain.Settings) error
}
