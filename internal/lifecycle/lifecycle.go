// Package lifecycle 治疗纪录的状态机：Draft（仅存在于编辑缓冲）→
// Open（已储存、未拔针）→ Closed（已拔针，终态）。
package lifecycle

import (
	"errors"

	"needletrack/internal/domain"
)

// State 治疗纪录状态
type State int

const (
	Draft State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "unknown"
}

var (
	// ErrNoNeedles Draft→Open 校验失败：总针数为 0
	ErrNoNeedles = errors.New("total needle count must be greater than zero")
	// ErrNoPhysician Draft→Open 校验失败：未选主治医师
	ErrNoPhysician = errors.New("attending physician is required")
	// ErrAlreadyClosed 拔针时间一经写入不可变更
	ErrAlreadyClosed = errors.New("session already closed")
)

// StateOf 判断已储存纪录的状态
func StateOf(s domain.TreatmentSession) State {
	if s.Open() {
		return Open
	}
	return Closed
}

// ValidateRecord Draft→Open（以及 Open→Open 修改确认）的门槛：
// 总针数必须大于 0 且已选主治医师。校验失败时状态不变。
func ValidateRecord(totalNeedles int, attendingPhysician string) error {
	if totalNeedles <= 0 {
		return ErrNoNeedles
	}
	if attendingPhysician == "" {
		return ErrNoPhysician
	}
	return nil
}

// Close Open→Closed：写入拔针时间。对已关闭的纪录返回 ErrAlreadyClosed，
// 原拔针时间保持不变。
func Close(s *domain.TreatmentSession, removalTime string) error {
	if !s.Open() {
		return ErrAlreadyClosed
	}
	s.RemovalTime = removalTime
	return nil
}
