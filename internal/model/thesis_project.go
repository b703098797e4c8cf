package model

// 论文类型
const (
	ThesisTypeBachelor = "bachelor"
	ThesisTypeMaster   = "master"
)

// 课题状态
const (
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusCancelled = "CANCELLED"
)

// ThesisProject 论文课题表 — 对应 thesis_projects
// 每个课题属于一名学生，配 1-2 名导师（order 1 为第一导师）
type ThesisProject struct {
	ProjectID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	StudentID  string `gorm:"type:uuid;not null"                             json:"student_id"`
	PeriodID   string `gorm:"type:uuid;not null"                             json:"period_id"`
	Title      string `gorm:"type:varchar(300);not null"                     json:"title"`
	ThesisType string `gorm:"type:varchar(20);not null"                      json:"thesis_type"`
	Status     string `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"`
	VersionedModel

	// 关联
	Student     *User               `gorm:"foreignKey:StudentID;references:UserID"     json:"student,omitempty"`
	Period      *AcademicPeriod     `gorm:"foreignKey:PeriodID;references:PeriodID"    json:"period,omitempty"`
	Supervisors []ProjectSupervisor `gorm:"foreignKey:ProjectID;references:ProjectID"  json:"supervisors,omitempty"`
}

// TableName 指定表名
func (ThesisProject) TableName() string { return "thesis_projects" }

// ProjectSupervisor 课题导师关联表 — 对应 project_supervisors
// (project_id, advisor_id) 与 (project_id, supervisor_order) 均唯一
type ProjectSupervisor struct {
	ProjectSupervisorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_supervisor_id"`
	ProjectID           string `gorm:"type:uuid;not null"                             json:"project_id"`
	AdvisorID           string `gorm:"type:uuid;not null"                             json:"advisor_id"`
	SupervisorOrder     int    `gorm:"type:smallint;not null"                         json:"supervisor_order"` // 1 = 第一导师

	// 关联
	Advisor *User `gorm:"foreignKey:AdvisorID;references:UserID" json:"advisor,omitempty"`
}

// TableName 指定表名
func (ProjectSupervisor) TableName() string { return "project_supervisors" }

// HasSupervisor 判断 advisorID 是否为该课题导师
func (p *ThesisProject) HasSupervisor(advisorID string) bool {
	for _, s := range p.Supervisors {
		if s.AdvisorID == advisorID {
			return true
		}
	}
	return false
}
