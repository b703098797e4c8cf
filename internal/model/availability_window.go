package model

import "time"

// AvailabilityWindow 导师开放指导窗口 — 对应 availability_windows
// 仅表示"开放"，不可用时段由 UnavailabilityBlock 单独建模
// repeat_type=weekly 时按 day_of_week 周期生效；once 时仅 specific_date 当天生效
type AvailabilityWindow struct {
	WindowID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"window_id"`
	AdvisorID    string     `gorm:"type:uuid;not null"                             json:"advisor_id"`
	RepeatType   string     `gorm:"type:varchar(20);not null;default:'weekly'"     json:"repeat_type"` // weekly | once
	DayOfWeek    *int       `gorm:"type:smallint"                                  json:"day_of_week,omitempty"`
	SpecificDate *time.Time `gorm:"type:date"                                      json:"specific_date,omitempty"`
	StartTime    string     `gorm:"type:time;not null"                             json:"start_time"` // HH:MM
	EndTime      string     `gorm:"type:time;not null"                             json:"end_time"`   // HH:MM
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (AvailabilityWindow) TableName() string { return "availability_windows" }

// CoversDate 判断窗口在指定日期是否生效
func (w *AvailabilityWindow) CoversDate(date time.Time, dayOfWeek int) bool {
	if w.RepeatType == RepeatOnce {
		return w.SpecificDate != nil && sameDate(*w.SpecificDate, date)
	}
	return w.DayOfWeek != nil && *w.DayOfWeek == dayOfWeek
}

// UnavailabilityBlock 导师声明的不可用时段 — 对应 unavailability_blocks
// 源系统用"失效的特定日期窗口"表达不可用，这里拆成独立实体避免语义混用
type UnavailabilityBlock struct {
	BlockID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"block_id"`
	AdvisorID    string     `gorm:"type:uuid;not null"                             json:"advisor_id"`
	RepeatType   string     `gorm:"type:varchar(20);not null;default:'once'"       json:"repeat_type"` // once | weekly
	DayOfWeek    *int       `gorm:"type:smallint"                                  json:"day_of_week,omitempty"`
	SpecificDate *time.Time `gorm:"type:date"                                      json:"specific_date,omitempty"`
	StartTime    string     `gorm:"type:time;not null"                             json:"start_time"` // HH:MM
	EndTime      string     `gorm:"type:time;not null"                             json:"end_time"`   // HH:MM
	Reason       *string    `gorm:"type:varchar(200)"                              json:"reason,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (UnavailabilityBlock) TableName() string { return "unavailability_blocks" }

// CoversDate 判断不可用时段在指定日期是否生效
func (b *UnavailabilityBlock) CoversDate(date time.Time, dayOfWeek int) bool {
	if b.RepeatType == RepeatWeekly {
		return b.DayOfWeek != nil && *b.DayOfWeek == dayOfWeek
	}
	return b.SpecificDate != nil && sameDate(*b.SpecificDate, date)
}
