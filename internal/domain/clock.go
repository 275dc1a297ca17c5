package domain

import "time"

// TimeLayout 治疗/拔针时间戳格式（24 小时制，补零）
const TimeLayout = "2006-01-02 15:04"

// Clock 取当前时间（写入时间戳用发起端的本地时钟；测试可注入固定时钟）
type Clock func() time.Time

// FormatTime 按固定格式输出时间戳
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
