package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"needletrack/internal/domain"
)

// MemoryAdapter 内存版适配器：单机开发与单元测试用，快照语义与远端一致
// （每次写入后向所有订阅者推送按床号排序的全量快照）。
type MemoryAdapter struct {
	mu           sync.Mutex
	patients     map[string]domain.Patient
	settings     *domain.Settings
	patientSubs  map[int]chan PatientsSnapshot
	settingsSubs map[int]chan SettingsSnapshot
	nextSubID    int
}

// NewMemoryAdapter 创建内存适配器
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		patients:     make(map[string]domain.Patient),
		patientSubs:  make(map[int]chan PatientsSnapshot),
		settingsSubs: make(map[int]chan SettingsSnapshot),
	}
}

var _ Adapter = (*MemoryAdapter)(nil)

// SubscribePatients 订阅患者集合，先推一份当前快照
func (m *MemoryAdapter) SubscribePatients(ctx context.Context) (<-chan PatientsSnapshot, error) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan PatientsSnapshot, 16)
	m.patientSubs[id] = ch
	ch <- PatientsSnapshot{Patients: m.patientsSnapshotLocked()}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if c, ok := m.patientSubs[id]; ok {
			delete(m.patientSubs, id)
			close(c)
		}
		m.mu.Unlock()
	}()
	return ch, nil
}

// SubscribeSettings 订阅设定文档；不存在时以默认值初始化
func (m *MemoryAdapter) SubscribeSettings(ctx context.Context) (<-chan SettingsSnapshot, error) {
	m.mu.Lock()
	if m.settings == nil {
		def := domain.DefaultSettings()
		m.settings = &def
	}
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan SettingsSnapshot, 16)
	m.settingsSubs[id] = ch
	ch <- SettingsSnapshot{Settings: m.settings.Clone()}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if c, ok := m.settingsSubs[id]; ok {
			delete(m.settingsSubs, id)
			close(c)
		}
		m.mu.Unlock()
	}()
	return ch, nil
}

// CreatePatient 指派 UUID 并广播新快照
func (m *MemoryAdapter) CreatePatient(ctx context.Context, p domain.Patient) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := p.Clone()
	stored.ID = uuid.NewString()
	if stored.Treatments == nil {
		stored.Treatments = []domain.TreatmentSession{}
	}
	m.patients[stored.ID] = stored
	m.broadcastPatientsLocked()
	return stored.ID, nil
}

// ReplacePatient 按 ID 整笔替换
func (m *MemoryAdapter) ReplacePatient(ctx context.Context, p domain.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	m.patients[p.ID] = p.Clone()
	m.broadcastPatientsLocked()
	return nil
}

// DeletePatient 硬删除
func (m *MemoryAdapter) DeletePatient(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return ErrPatientNotFound
	}
	delete(m.patients, id)
	m.broadcastPatientsLocked()
	return nil
}

// ReplaceTreatments 整列重写治疗序列
func (m *MemoryAdapter) ReplaceTreatments(ctx context.Context, patientID string, treatments []domain.TreatmentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[patientID]
	if !ok {
		return ErrPatientNotFound
	}
	p.Treatments = make([]domain.TreatmentSession, len(treatments))
	for i, s := range treatments {
		p.Treatments[i] = s.Clone()
	}
	m.patients[patientID] = p
	m.broadcastPatientsLocked()
	return nil
}

// ReplaceSettings 整份替换设定并广播
func (m *MemoryAdapter) ReplaceSettings(ctx context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := s.Clone()
	m.settings = &cloned
	for _, ch := range m.settingsSubs {
		select {
		case ch <- SettingsSnapshot{Settings: m.settings.Clone()}:
		default:
			// 订阅者积压时丢弃本次，后续快照仍是全量的
		}
	}
	return nil
}

func (m *MemoryAdapter) patientsSnapshotLocked() []domain.Patient {
	out := make([]domain.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domain.CompareBedNumbers(out[i].BedNumber, out[j].BedNumber) < 0
	})
	return out
}

func (m *MemoryAdapter) broadcastPatientsLocked() {
	for _, ch := range m.patientSubs {
		select {
		case ch <- PatientsSnapshot{Patients: m.patientsSnapshotLocked()}:
		default:
		}
	}
}
