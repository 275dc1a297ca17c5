// Package editor 单次治疗的本地编辑缓冲：各部位针数、主治医师，
// 以及针数快照构成的复原栈。缓冲内容未写入远端前只存在于本机。
package editor

import (
	"fmt"
	"time"

	"needletrack/internal/domain"
	"needletrack/internal/lifecycle"
)

// SessionEditor 针数编辑缓冲
// 每次针数变更前先把变更前的完整针数表压栈，复原即弹栈还原（无重做）。
type SessionEditor struct {
	counts    map[domain.BodyPart]int
	history   []map[domain.BodyPart]int
	physician string
	base      *domain.TreatmentSession
	clock     domain.Clock
}

// New 创建编辑器：全部位归零、复原栈为空
func New(clock domain.Clock) *SessionEditor {
	if clock == nil {
		clock = time.Now
	}
	e := &SessionEditor{clock: clock}
	e.Reset()
	return e
}

// Reset 回到全新草稿：针数归零、清空复原栈、退出修改模式
func (e *SessionEditor) Reset() {
	e.counts = domain.NewNeedleCounts()
	e.history = nil
	e.physician = ""
	e.base = nil
}

// BeginModify 进入修改模式：以既有纪录的栏位初始化缓冲并清空复原栈
func (e *SessionEditor) BeginModify(s domain.TreatmentSession) {
	seed := s.Clone()
	e.counts = domain.NewNeedleCounts()
	for part, n := range seed.NeedleCounts {
		e.counts[part] = n
	}
	e.history = nil
	e.physician = seed.AttendingPhysician
	e.base = &seed
}

// Editing 返回修改模式下的原纪录
func (e *SessionEditor) Editing() (domain.TreatmentSession, bool) {
	if e.base == nil {
		return domain.TreatmentSession{}, false
	}
	return e.base.Clone(), true
}

// Count 单一部位针数
func (e *SessionEditor) Count(part domain.BodyPart) int {
	return e.counts[part]
}

// Counts 针数表拷贝
func (e *SessionEditor) Counts() map[domain.BodyPart]int {
	out := make(map[domain.BodyPart]int, len(e.counts))
	for part, n := range e.counts {
		out[part] = n
	}
	return out
}

// TotalNeedles 总针数永远即时重算，不缓存
func (e *SessionEditor) TotalNeedles() int {
	return domain.SumNeedleCounts(e.counts)
}

// SetCount 设定某部位针数。负数拒绝且不压栈。
func (e *SessionEditor) SetCount(part domain.BodyPart, n int) error {
	if !knownPart(part) {
		return fmt.Errorf("unknown body part: %q", part)
	}
	if n < 0 {
		return fmt.Errorf("needle count must not be negative, got %d", n)
	}
	e.pushHistory()
	e.counts[part] = n
	return nil
}

// Increment 加一针
func (e *SessionEditor) Increment(part domain.BodyPart) error {
	return e.SetCount(part, e.counts[part]+1)
}

// Decrement 减一针，到 0 为止
func (e *SessionEditor) Decrement(part domain.BodyPart) error {
	n := e.counts[part] - 1
	if n < 0 {
		n = 0
	}
	return e.SetCount(part, n)
}

// Undo 弹出最近一次变更前的针数快照并整张还原；栈空时返回 false
func (e *SessionEditor) Undo() bool {
	if len(e.history) == 0 {
		return false
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.counts = last
	return true
}

// CanUndo 复原栈是否非空
func (e *SessionEditor) CanUndo() bool {
	return len(e.history) > 0
}

// UndoDepth 复原栈深度
func (e *SessionEditor) UndoDepth() int {
	return len(e.history)
}

// SetPhysician 选定主治医师
func (e *SessionEditor) SetPhysician(name string) {
	e.physician = name
}

// Physician 当前选定的主治医师
func (e *SessionEditor) Physician() string {
	return e.physician
}

// BuildSession 由缓冲组装治疗纪录，先过 Draft→Open 校验。
// 新草稿：开始时间取当前时钟，ID 留空由储存层指派。
// 修改模式：保留原 ID、开始时间与拔针时间，只替换针数/穴位/医师。
func (e *SessionEditor) BuildSession(acupoints []string) (domain.TreatmentSession, error) {
	total := e.TotalNeedles()
	if err := lifecycle.ValidateRecord(total, e.physician); err != nil {
		return domain.TreatmentSession{}, err
	}

	s := domain.TreatmentSession{
		NeedleCounts:       e.Counts(),
		TotalNeedles:       total,
		Acupoints:          append([]string(nil), acupoints...),
		AttendingPhysician: e.physician,
	}
	if e.base != nil {
		s.ID = e.base.ID
		s.StartTime = e.base.StartTime
		s.RemovalTime = e.base.RemovalTime
	} else {
		s.StartTime = domain.FormatTime(e.clock())
	}
	return s, nil
}

func knownPart(part domain.BodyPart) bool {
	for _, p := range domain.BodyParts {
		if p == part {
			return true
		}
	}
	return false
}

func (e *SessionEditor) pushHistory() {
	snapshot := make(map[domain.BodyPart]int, len(e.counts))
	for part, n := range e.counts {
		snapshot[part] = n
	}
	e.history = append(e.history, snapshot)
}
