// Package state 工作站端的同步状态引擎：缓存远端推送的最新快照，
// 所有变更操作读缓存、算新值、写穿适配器，等写入结束才返回——
// 本地缓存从不乐观套用变更，写入效果只会随下一次快照回来。
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"needletrack/internal/domain"
	"needletrack/internal/store"
)

// Snapshot 对外的只读状态快照
type Snapshot struct {
	Patients          []domain.Patient
	Settings          domain.Settings
	SelectedAcupoints []string
	Loading           bool
}

// Store 客户端状态库。收到快照时无条件整份替换缓存，绝不与本地草稿合并；
// 快照事件由单一 goroutine 逐条处理，缓存不存在处理中途的并发改写。
type Store struct {
	adapter store.Adapter
	logger  *zap.Logger
	clock   domain.Clock

	mu       sync.RWMutex
	patients []domain.Patient
	settings domain.Settings
	selected []string
	loading  bool

	subs      map[int]chan struct{}
	nextSubID int

	cancel context.CancelFunc
	done   chan struct{}
}

// Option 构造选项
type Option func(*Store)

// WithClock 注入时钟（测试用）
func WithClock(clock domain.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// New 创建状态库；调用 Start 之前不会订阅任何东西
func New(adapter store.Adapter, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		adapter:  adapter,
		logger:   logger,
		clock:    time.Now,
		settings: domain.DefaultSettings(),
		loading:  true,
		subs:     make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 建立患者与设定两路订阅并启动快照处理循环
func (s *Store) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	patientsCh, err := s.adapter.SubscribePatients(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe patients: %w", err)
	}
	settingsCh, err := s.adapter.SubscribeSettings(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe settings: %w", err)
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, patientsCh, settingsCh)
	return nil
}

// Close 退订并等处理循环退出；已发出的写入不受影响
func (s *Store) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// run 单消费者事件循环：同一时刻只处理一个快照事件
func (s *Store) run(ctx context.Context, patientsCh <-chan store.PatientsSnapshot, settingsCh <-chan store.SettingsSnapshot) {
	defer close(s.done)
	for patientsCh != nil || settingsCh != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-patientsCh:
			if !ok {
				patientsCh = nil
				continue
			}
			if ev.Err != nil {
				// 订阅挂掉：停在旧资料上并解除载入状态，不自动重试
				s.logger.Error("Patients subscription failed", zap.Error(ev.Err))
				s.mu.Lock()
				s.loading = false
				s.mu.Unlock()
				s.notify()
				continue
			}
			s.mu.Lock()
			s.patients = ev.Patients
			s.loading = false
			s.mu.Unlock()
			s.notify()
		case ev, ok := <-settingsCh:
			if !ok {
				settingsCh = nil
				continue
			}
			if ev.Err != nil {
				s.logger.Error("Settings subscription failed", zap.Error(ev.Err))
				continue
			}
			s.mu.Lock()
			s.settings = ev.Settings
			s.mu.Unlock()
			s.notify()
		}
	}
}

// Watch 注册变更通知；返回的函数用于退订
func (s *Store) Watch() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot 当前缓存的深拷贝
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Patients:          domain.ClonePatients(s.patients),
		Settings:          s.settings.Clone(),
		SelectedAcupoints: append([]string(nil), s.selected...),
		Loading:           s.loading,
	}
}

// Loading 是否仍在等首份患者快照
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Settings 当前设定
func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Patients 当前患者列表（按床号排序，由远端保证）
func (s *Store) Patients() []domain.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ClonePatients(s.patients)
}

// Patient 按 ID 查找
func (s *Store) Patient(id string) (domain.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Patient{}, false
}

// SetSelectedAcupoints 更新选穴列表（视图间共享的选择状态）
func (s *Store) SetSelectedAcupoints(acupoints []string) {
	s.mu.Lock()
	s.selected = append([]string(nil), acupoints...)
	s.mu.Unlock()
	s.notify()
}

// SelectedAcupoints 当前选穴列表
func (s *Store) SelectedAcupoints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selected...)
}
