package model

import "time"

// AcademicPeriod 学业周期表 — 对应 academic_periods
// 两个检查点日期用于最低指导次数考核：cp1 为中期检查，cp2 为终期检查
// 同一时刻最多一个周期处于激活状态
type AcademicPeriod struct {
	PeriodID        string    `gorm:"column:period_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	Name            string    `gorm:"type:varchar(100);not null"                 json:"name"`
	StartDate       time.Time `gorm:"type:date;not null"                         json:"start_date"`
	EndDate         time.Time `gorm:"type:date;not null"                         json:"end_date"`
	Checkpoint1Date time.Time `gorm:"type:date;not null"                         json:"checkpoint1_date"`
	Checkpoint2Date time.Time `gorm:"type:date;not null"                         json:"checkpoint2_date"`
	IsActive        bool      `gorm:"not null;default:false"                     json:"is_active"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // active | archived
	VersionedModel
}

// TableName 指定表名
func (AcademicPeriod) TableName() string { return "academic_periods" }
