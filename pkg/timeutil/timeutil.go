package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

// ── 时间区间工具 ──
//
// 全系统的时间约定：
//   - 一天内的时刻用 "HH:MM" 字符串表示（24小时制）
//   - 区间统一采用左闭右开语义 [start, end)，端点相接不算冲突
//   - 星期序号 1=周一 … 7=周日

// ErrBadTimeFormat 时间格式不符合 HH:MM
var ErrBadTimeFormat = fmt.Errorf("时间格式错误")

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// IsValid 校验 HH:MM 格式
func IsValid(hhmm string) bool {
	return hhmmPattern.MatchString(hhmm)
}

// ToMinutes 将 "HH:MM" 解析为当日零点起的分钟数
func ToMinutes(hhmm string) (int, error) {
	m := hhmmPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, hhmm)
	}
	// 正则已保证两段均为合法数字
	h := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	mi := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return h*60 + mi, nil
}

// Overlaps 判断两个左闭右开区间是否重叠（参数为分钟数）
// 端点相接（aEnd == bStart）不视为重叠
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// OverlapsHHMM 判断两个 HH:MM 区间是否重叠
// 任一时刻格式非法时返回错误
func OverlapsHHMM(aStart, aEnd, bStart, bEnd string) (bool, error) {
	as, err := ToMinutes(aStart)
	if err != nil {
		return false, err
	}
	ae, err := ToMinutes(aEnd)
	if err != nil {
		return false, err
	}
	bs, err := ToMinutes(bStart)
	if err != nil {
		return false, err
	}
	be, err := ToMinutes(bEnd)
	if err != nil {
		return false, err
	}
	return Overlaps(as, ae, bs, be), nil
}

// Duration 计算区间时长（分钟），end - start
// 正负号由调用方判断（start >= end 时返回非正值）
func Duration(start, end string) (int, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return 0, err
	}
	e, err := ToMinutes(end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// DayOfWeek 返回日期对应的星期序号（1=周一 … 7=周日）
func DayOfWeek(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DateOnly 截断到当日零点（保留时区）
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate 判断两个时间是否同一天
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
