package model

import "time"

// 重复类型
const (
	RepeatWeekly = "weekly"
	RepeatOnce   = "once"
)

// 课表来源
const (
	ScheduleSourceManual = "manual"
	ScheduleSourceICS    = "ics"
)

// ClassSchedule 课表表 — 对应 class_schedules
// 学生为课程安排，导师为授课安排；两者都构成已占用区间
type ClassSchedule struct {
	ClassScheduleID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_schedule_id"`
	UserID          string     `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseName      string     `gorm:"type:varchar(100);not null"                     json:"course_name"`
	DayOfWeek       int        `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1-7
	StartTime       string     `gorm:"type:time;not null"                             json:"start_time"`  // HH:MM
	EndTime         string     `gorm:"type:time;not null"                             json:"end_time"`    // HH:MM
	RepeatType      string     `gorm:"type:varchar(20);not null;default:'weekly'"     json:"repeat_type"` // weekly | once
	SpecificDate    *time.Time `gorm:"type:date"                                      json:"specific_date,omitempty"`
	Source          string     `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // ics | manual
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (ClassSchedule) TableName() string { return "class_schedules" }

// CoversDate 判断该行在指定日期是否生效
func (c *ClassSchedule) CoversDate(date time.Time, dayOfWeek int) bool {
	if c.RepeatType == RepeatOnce {
		return c.SpecificDate != nil && sameDate(*c.SpecificDate, date)
	}
	return c.DayOfWeek == dayOfWeek
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
