// Package export 治疗纪录导出：单次治疗的纯文字档与患者名册的 Excel。
package export

import (
	"fmt"
	"strings"

	"needletrack/internal/domain"
)

// NotRecorded 拔针时间/主治医师缺失时的占位文字
const NotRecorded = "未紀錄"

// SessionText 单次治疗纪录的纯文字导出。
// 栏位顺序固定，下游表单比对依赖此顺序，不要调整。
func SessionText(p domain.Patient, s domain.TreatmentSession) string {
	var b strings.Builder
	b.WriteString("智慧記針小幫手治療紀錄\n")
	b.WriteString("-------------------------\n")
	fmt.Fprintf(&b, "病歷號: %s\n", p.MedicalRecordNumber)
	fmt.Fprintf(&b, "姓名: %s\n", p.Name)
	fmt.Fprintf(&b, "治療時間: %s\n", s.StartTime)
	fmt.Fprintf(&b, "拔針時間: %s\n", orNotRecorded(s.RemovalTime))
	fmt.Fprintf(&b, "主治醫師: %s\n", orNotRecorded(s.AttendingPhysician))
	fmt.Fprintf(&b, "總針數: %d\n", s.TotalNeedles)
	fmt.Fprintf(&b, "穴位: %s\n", strings.Join(s.Acupoints, ", "))
	b.WriteString("\n針數分佈:\n")
	for i, part := range domain.BodyParts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d 針", part, s.NeedleCounts[part])
	}
	return b.String()
}

// SessionFileName 文字档档名
func SessionFileName(p domain.Patient, s domain.TreatmentSession) string {
	return fmt.Sprintf("treatment_%s_%s.txt", p.MedicalRecordNumber, s.ID)
}

func orNotRecorded(v string) string {
	if v == "" {
		return NotRecorded
	}
	return v
}
