package domain

import (
	"fmt"
)

// BodyPart 针灸部位（固定6个分区，作为针数统计的桶）
type BodyPart string

const (
	BodyPartHead           BodyPart = "頭部"
	BodyPartTorso          BodyPart = "軀幹"
	BodyPartRightUpperLimb BodyPart = "右上肢"
	BodyPartRightLowerLimb BodyPart = "右下肢"
	BodyPartLeftUpperLimb  BodyPart = "左上肢"
	BodyPartLeftLowerLimb  BodyPart = "左下肢"
)

// BodyParts 固定枚举顺序（临床纪录与导出都按此顺序）
var BodyParts = []BodyPart{
	BodyPartHead,
	BodyPartTorso,
	BodyPartRightUpperLimb,
	BodyPartRightLowerLimb,
	BodyPartLeftUpperLimb,
	BodyPartLeftLowerLimb,
}

// Gender 性别（固定集合）
const (
	GenderMale   = "男性"
	GenderFemale = "女性"
	GenderOther  = "其他"
)

// Genders 合法性别值
var Genders = []string{GenderMale, GenderFemale, GenderOther}

// TreatmentSession 一次针灸治疗纪录
// removalTime 为空表示针仍在体内（治疗进行中）
type TreatmentSession struct {
	ID                 string           `json:"id"`
	StartTime          string           `json:"startTime"`
	RemovalTime        string           `json:"removalTime,omitempty"`
	NeedleCounts       map[BodyPart]int `json:"needleCounts"`
	TotalNeedles       int              `json:"totalNeedles"`
	Acupoints          []string         `json:"acupoints"`
	AttendingPhysician string           `json:"attendingPhysician,omitempty"`
}

// Open 判断治疗是否进行中（尚未拔针）
func (s TreatmentSession) Open() bool {
	return s.RemovalTime == ""
}

// Clone 深拷贝（needleCounts 和 acupoints 独立）
func (s TreatmentSession) Clone() TreatmentSession {
	out := s
	out.NeedleCounts = make(map[BodyPart]int, len(s.NeedleCounts))
	for part, n := range s.NeedleCounts {
		out.NeedleCounts[part] = n
	}
	out.Acupoints = append([]string(nil), s.Acupoints...)
	return out
}

// Validate 校验不变量：针数非负、totalNeedles 等于各部位之和
func (s TreatmentSession) Validate() error {
	for part, n := range s.NeedleCounts {
		if n < 0 {
			return fmt.Errorf("needle count for %s is negative: %d", part, n)
		}
	}
	if got := SumNeedleCounts(s.NeedleCounts); got != s.TotalNeedles {
		return fmt.Errorf("totalNeedles %d does not match needle count sum %d", s.TotalNeedles, got)
	}
	return nil
}

// NewNeedleCounts 创建全部位归零的针数表
func NewNeedleCounts() map[BodyPart]int {
	counts := make(map[BodyPart]int, len(BodyParts))
	for _, part := range BodyParts {
		counts[part] = 0
	}
	return counts
}

// SumNeedleCounts 各部位针数总和
func SumNeedleCounts(counts map[BodyPart]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// Patient 住院患者
// treatments 按建立时间倒序（最新一次在最前），顺序由调用方维护
type Patient struct {
	ID                  string             `json:"id"`
	MedicalRecordNumber string             `json:"medicalRecordNumber"`
	Name                string             `json:"name"`
	Gender              string             `json:"gender"`
	BedNumber           string             `json:"bedNumber"`
	Team                int                `json:"team"`
	Treatments          []TreatmentSession `json:"treatments"`
}

// CurrentSession 取当前治疗纪录（treatments 第一个元素）
func (p Patient) CurrentSession() (TreatmentSession, bool) {
	if len(p.Treatments) == 0 {
		return TreatmentSession{}, false
	}
	return p.Treatments[0], true
}

// Clone 深拷贝患者（含全部治疗纪录）
func (p Patient) Clone() Patient {
	out := p
	out.Treatments = make([]TreatmentSession, len(p.Treatments))
	for i, s := range p.Treatments {
		out.Treatments[i] = s.Clone()
	}
	return out
}

// Validate 校验必填栏位
func (p Patient) Validate() error {
	if p.MedicalRecordNumber == "" {
		return fmt.Errorf("medical record number is required")
	}
	if p.Name == "" {
		return fmt.Errorf("patient name is required")
	}
	if p.BedNumber == "" {
		return fmt.Errorf("bed number is required")
	}
	if !validGender(p.Gender) {
		return fmt.Errorf("invalid gender: %q", p.Gender)
	}
	if p.Team < 1 {
		return fmt.Errorf("team must be positive, got %d", p.Team)
	}
	return nil
}

func validGender(g string) bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// ClonePatients 深拷贝患者列表
func ClonePatients(patients []Patient) []Patient {
	out := make([]Patient, len(patients))
	for i, p := range patients {
		out[i] = p.Clone()
	}
	return out
}
