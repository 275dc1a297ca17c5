// Package view 患者列表视图：由快照加筛选/排序参数纯函数式推导，
// 每次输入变化整个重算，不维护增量索引。
package view

import (
	"sort"
	"strings"

	"needletrack/internal/domain"
)

// SortKey 列表排序方式
type SortKey string

const (
	SortByBedNumber     SortKey = "bedNumber"
	SortByTreatmentTime SortKey = "treatmentTime"
	SortByRemovalTime   SortKey = "removalTime"
)

// TeamAll 组别筛选的"全部"哨兵值
const TeamAll = 0

// Query 视图参数
type Query struct {
	Search string
	Team   int
	Sort   SortKey
}

// Derive 过滤并排序患者列表：
// 1. team == Query.Team（TeamAll 不筛）
// 2. 姓名不分大小写子串比对，或病历号子串比对（任一命中即保留）
// 3. 按 Sort 排序；键相同时保持输入顺序
func Derive(patients []domain.Patient, q Query) []domain.Patient {
	out := make([]domain.Patient, 0, len(patients))
	search := strings.ToLower(q.Search)
	for _, p := range patients {
		if q.Team != TeamAll && p.Team != q.Team {
			continue
		}
		if q.Search != "" {
			nameHit := strings.Contains(strings.ToLower(p.Name), search)
			recordHit := strings.Contains(p.MedicalRecordNumber, q.Search)
			if !nameHit && !recordHit {
				continue
			}
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortByTreatmentTime:
		// 最近开始治疗的在前；没有纪录的排最后（空字串最小）
		sort.SliceStable(out, func(i, j int) bool {
			return latestStartTime(out[i]) > latestStartTime(out[j])
		})
	case SortByRemovalTime:
		// 进行中的排在已拔针之前；组内按拔针时间倒序
		sort.SliceStable(out, func(i, j int) bool {
			oi, oj := ongoing(out[i]), ongoing(out[j])
			if oi != oj {
				return oi
			}
			return latestRemovalTime(out[i]) > latestRemovalTime(out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return domain.CompareBedNumbers(out[i].BedNumber, out[j].BedNumber) < 0
		})
	}
	return out
}

func latestStartTime(p domain.Patient) string {
	if s, ok := p.CurrentSession(); ok {
		return s.StartTime
	}
	return ""
}

func latestRemovalTime(p domain.Patient) string {
	if s, ok := p.CurrentSession(); ok {
		return s.RemovalTime
	}
	return ""
}

// ongoing 第一笔纪录没有拔针时间即视为进行中；无纪录者同样归入进行中一组
func ongoing(p domain.Patient) bool {
	s, ok := p.CurrentSession()
	return !ok || s.Open()
}
