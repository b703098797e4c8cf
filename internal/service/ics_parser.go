package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"gradguide/backend/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为 ClassSchedule 列表。
//
// 设计决策：
//   - DTSTART/DTEND 确定星期几与时间
//   - RRULE FREQ=WEEKLY → repeat_type=weekly
//   - 无 RRULE 的单次事件 → repeat_type=once，记录具体日期
//   - 其他重复频率不支持，跳过并记 warning
//   - 合并同 name+day+time 的每周事件（ICS 可能重复导出同一课程）
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	icsMaxEvents     = 500
	jakartaTimezone  = "Asia/Jakarta"
	icsDefaultLength = 2 * time.Hour // 缺 DTEND 时的兜底时长
)

// parsedClassEvent ICS 解析中间结构
type parsedClassEvent struct {
	Name         string
	DayOfWeek    int // 1=Monday … 7=Sunday
	StartTime    string
	EndTime      string
	RepeatType   string
	SpecificDate *time.Time
}

// parseICSReader 解析 ICS 内容并转为 ClassSchedule 列表
// 返回：课表行、总事件数、逐条 warning
func parseICSReader(reader io.Reader, userID string) ([]model.ClassSchedule, int, []string, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	loc, _ := time.LoadLocation(jakartaTimezone)

	components := cal.Events()
	total := len(components)
	if total > icsMaxEvents {
		return nil, total, nil, fmt.Errorf("ICS 事件数超过上限 %d", icsMaxEvents)
	}

	var events []parsedClassEvent
	var warnings []string
	for i, comp := range components {
		evt, warn := parseClassVEvent(comp, loc)
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("事件 %d: %s", i+1, warn))
			continue
		}
		events = append(events, evt)
	}

	merged := mergeClassEvents(events)

	result := make([]model.ClassSchedule, 0, len(merged))
	for _, evt := range merged {
		result = append(result, model.ClassSchedule{
			UserID:       userID,
			CourseName:   evt.Name,
			DayOfWeek:    evt.DayOfWeek,
			StartTime:    evt.StartTime,
			EndTime:      evt.EndTime,
			RepeatType:   evt.RepeatType,
			SpecificDate: evt.SpecificDate,
			Source:       model.ScheduleSourceICS,
		})
	}
	return result, total, warnings, nil
}

// parseClassVEvent 解析单个 VEVENT 组件，warn 非空表示跳过
func parseClassVEvent(evt *ics.VEvent, loc *time.Location) (parsedClassEvent, string) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedClassEvent{}, "缺少 SUMMARY"
	}
	name := strings.TrimSpace(summary.Value)

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedClassEvent{}, "无法解析 DTSTART"
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		dtEnd = dtStart.Add(icsDefaultLength)
	}

	startTime := dtStart.Format("15:04")
	endTime := dtEnd.Format("15:04")
	if endTime <= startTime {
		return parsedClassEvent{}, fmt.Sprintf("时段无效 %s-%s", startTime, endTime)
	}

	parsed := parsedClassEvent{
		Name:      name,
		DayOfWeek: goWeekdayToISO(dtStart.Weekday()),
		StartTime: startTime,
		EndTime:   endTime,
	}

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		date := time.Date(dtStart.Year(), dtStart.Month(), dtStart.Day(), 0, 0, 0, 0, loc)
		parsed.RepeatType = model.RepeatOnce
		parsed.SpecificDate = &date
		return parsed, ""
	}

	freq := parseRRuleFreq(rruleProp.Value)
	if freq != "WEEKLY" {
		return parsedClassEvent{}, fmt.Sprintf("不支持的重复频率 %s", freq)
	}
	parsed.RepeatType = model.RepeatWeekly
	return parsed, ""
}

// parseRRuleFreq 从 RRULE 字符串提取 FREQ（如 FREQ=WEEKLY;COUNT=16）
func parseRRuleFreq(value string) string {
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.ToUpper(kv[0]) == "FREQ" {
			return strings.ToUpper(kv[1])
		}
	}
	return ""
}

// mergeClassEvents 去重：每周事件按 name+day+time 合并，单次事件再按日期区分
func mergeClassEvents(events []parsedClassEvent) []parsedClassEvent {
	type key struct {
		Name      string
		DayOfWeek int
		StartTime string
		EndTime   string
		Repeat    string
		Date      string
	}
	seen := make(map[key]bool)
	result := make([]parsedClassEvent, 0, len(events))

	for _, e := range events {
		k := key{
			Name:      e.Name,
			DayOfWeek: e.DayOfWeek,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Repeat:    e.RepeatType,
		}
		if e.SpecificDate != nil {
			k.Date = e.SpecificDate.Format("20060102")
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, e)
	}
	return result
}

// ── 辅助函数 ──

// goWeekdayToISO 将 Go 的 time.Weekday (0=Sunday) 转为 ISO 8601 (1=Monday … 7=Sunday)
func goWeekdayToISO(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
