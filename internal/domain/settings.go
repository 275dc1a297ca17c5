package domain

import (
	"fmt"
	"strconv"
)

// 设定单例的默认规模
const (
	DefaultAcupointCount = 40
	DefaultTeamCount     = 10
	PhysiciansPerTeam    = 3
)

// Settings 全院共用的设定文档（单例）
// acupointNames 键域为 1..acupointCount，physicians 键域为 1..teamCount，
// 每组医师列表固定 3 人。使用前必须经过 Validate。
type Settings struct {
	AcupointCount int              `json:"acupointCount"`
	AcupointNames map[int]string   `json:"acupointNames"`
	TeamCount     int              `json:"teamCount"`
	Physicians    map[int][]string `json:"physicians"`
}

// DefaultPhysicians 合成某组的默认医师名单（"{组}組醫師A/B/C"）
func DefaultPhysicians(team int) []string {
	names := make([]string, PhysiciansPerTeam)
	for i := 0; i < PhysiciansPerTeam; i++ {
		names[i] = fmt.Sprintf("%d組醫師%c", team, 'A'+i)
	}
	return names
}

// DefaultSettings 首次使用时的默认设定
func DefaultSettings() Settings {
	s := Settings{
		AcupointCount: DefaultAcupointCount,
		AcupointNames: make(map[int]string, DefaultAcupointCount),
		TeamCount:     DefaultTeamCount,
		Physicians:    make(map[int][]string, DefaultTeamCount),
	}
	for i := 1; i <= DefaultAcupointCount; i++ {
		s.AcupointNames[i] = strconv.Itoa(i)
	}
	for team := 1; team <= DefaultTeamCount; team++ {
		s.Physicians[team] = DefaultPhysicians(team)
	}
	return s
}

// Clone 深拷贝设定
func (s Settings) Clone() Settings {
	out := s
	out.AcupointNames = make(map[int]string, len(s.AcupointNames))
	for k, v := range s.AcupointNames {
		out.AcupointNames[k] = v
	}
	out.Physicians = make(map[int][]string, len(s.Physicians))
	for k, v := range s.Physicians {
		out.Physicians[k] = append([]string(nil), v...)
	}
	return out
}

// Validate 校验设定完整性：
// 1..teamCount 每组必须有恰好 3 人的医师名单，1..acupointCount 每个穴位必须有名称。
func (s Settings) Validate() error {
	if s.AcupointCount < 1 {
		return fmt.Errorf("acupoint count must be positive, got %d", s.AcupointCount)
	}
	if s.TeamCount < 1 {
		return fmt.Errorf("team count must be positive, got %d", s.TeamCount)
	}
	for i := 1; i <= s.AcupointCount; i++ {
		if _, ok := s.AcupointNames[i]; !ok {
			return fmt.Errorf("acupoint %d has no name", i)
		}
	}
	for team := 1; team <= s.TeamCount; team++ {
		names, ok := s.Physicians[team]
		if !ok {
			return fmt.Errorf("team %d has no physician list", team)
		}
		if len(names) != PhysiciansPerTeam {
			return fmt.Errorf("team %d physician list has %d entries, want %d", team, len(names), PhysiciansPerTeam)
		}
	}
	return nil
}

// Normalize 补默认值并裁掉超出数量的键（储存设定前调用）：
// 缺少的穴位名补为序号字串，缺少的组补默认医师名单，超过数量上限的键删除。
func (s Settings) Normalize() Settings {
	out := s.Clone()
	if out.AcupointCount < 1 {
		out.AcupointCount = 1
	}
	if out.TeamCount < 1 {
		out.TeamCount = 1
	}
	if out.AcupointNames == nil {
		out.AcupointNames = make(map[int]string)
	}
	if out.Physicians == nil {
		out.Physicians = make(map[int][]string)
	}
	for i := 1; i <= out.AcupointCount; i++ {
		if _, ok := out.AcupointNames[i]; !ok {
			out.AcupointNames[i] = strconv.Itoa(i)
		}
	}
	for k := range out.AcupointNames {
		if k < 1 || k > out.AcupointCount {
			delete(out.AcupointNames, k)
		}
	}
	for team := 1; team <= out.TeamCount; team++ {
		names, ok := out.Physicians[team]
		if !ok {
			out.Physicians[team] = DefaultPhysicians(team)
			continue
		}
		for len(names) < PhysiciansPerTeam {
			names = append(names, "")
		}
		out.Physicians[team] = names[:PhysiciansPerTeam]
	}
	for k := range out.Physicians {
		if k < 1 || k > out.TeamCount {
			delete(out.Physicians, k)
		}
	}
	return out
}

// PhysiciansForTeam 取某组的医师名单（带边界检查）
func (s Settings) PhysiciansForTeam(team int) ([]string, error) {
	if team < 1 || team > s.TeamCount {
		return nil, fmt.Errorf("team %d out of range 1..%d", team, s.TeamCount)
	}
	names, ok := s.Physicians[team]
	if !ok {
		return nil, fmt.Errorf("team %d has no physician list", team)
	}
	return append([]string(nil), names...), nil
}

// AcupointName 取穴位名称（带边界检查）
func (s Settings) AcupointName(n int) (string, error) {
	if n < 1 || n > s.AcupointCount {
		return "", fmt.Errorf("acupoint %d out of range 1..%d", n, s.AcupointCount)
	}
	name, ok := s.AcupointNames[n]
	if !ok {
		return "", fmt.Errorf("acupoint %d has no name", n)
	}
	return name, nil
}

// AcupointList 依序返回全部穴位名称（选穴页面用）
func (s Settings) AcupointList() []string {
	out := make([]string, 0, s.AcupointCount)
	for i := 1; i <= s.AcupointCount; i++ {
		if name, ok := s.AcupointNames[i]; ok {
			out = append(out, name)
		} else {
			out = append(out, strconv.Itoa(i))
		}
	}
	return out
}
