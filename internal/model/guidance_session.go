package model

import "time"

// 指导会话状态机
//
//	学生发起申请 → PENDING；导师发起邀约 → OFFERED；导师直接排定 → APPROVED
//	PENDING  --导师--> APPROVED | REJECTED
//	PENDING  --学生--> PENDING(编辑) | CANCELLED
//	OFFERED  --学生--> APPROVED | DECLINED
//	APPROVED --学生--> CANCELLED
//	APPROVED --导师--> COMPLETED（同时写入指导记录）
//	REJECTED / DECLINED / COMPLETED / CANCELLED 为终态
const (
	SessionStatusPending   = "PENDING"
	SessionStatusOffered   = "OFFERED"
	SessionStatusApproved  = "APPROVED"
	SessionStatusRejected  = "REJECTED"
	SessionStatusDeclined  = "DECLINED"
	SessionStatusCompleted = "COMPLETED"
	SessionStatusCancelled = "CANCELLED"
)

// 会话类型
const (
	SessionTypeIndividual = "INDIVIDUAL"
	SessionTypeGroup      = "GROUP"
)

// DefaultLocation 审批前的占位地点
const DefaultLocation = "TBD"

// GuidanceSession 指导会话表 — 对应 guidance_sessions
// 取消/驳回/婉拒的会话保留终态记录，不做物理删除
type GuidanceSession struct {
	SessionID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	ProjectID     string    `gorm:"type:uuid;not null"                             json:"project_id"`
	ScheduledDate time.Time `gorm:"type:date;not null"                             json:"scheduled_date"`
	StartTime     string    `gorm:"type:time;not null"                             json:"start_time"` // HH:MM
	EndTime       string    `gorm:"type:time;not null"                             json:"end_time"`   // HH:MM
	Location      string    `gorm:"type:varchar(200);not null;default:'TBD'"       json:"location"`
	SessionType   string    `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"session_type"`
	Status        string    `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	CreatedByRole string    `gorm:"type:varchar(20);not null"                      json:"created_by_role"` // advisor | student
	Notes         *string   `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Project      *ThesisProject       `gorm:"foreignKey:ProjectID;references:ProjectID"  json:"project,omitempty"`
	Participants []SessionParticipant `gorm:"foreignKey:SessionID;references:SessionID"  json:"participants,omitempty"`
}

// TableName 指定表名
func (GuidanceSession) TableName() string { return "guidance_sessions" }

// IsTerminal 判断当前状态是否终态
func (s *GuidanceSession) IsTerminal() bool {
	switch s.Status {
	case SessionStatusRejected, SessionStatusDeclined, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// SessionParticipant 团体指导附加参与学生 — 对应 session_participants
type SessionParticipant struct {
	SessionParticipantID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_participant_id"`
	SessionID            string    `gorm:"type:uuid;not null"                             json:"session_id"`
	StudentID            string    `gorm:"type:uuid;not null"                             json:"student_id"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (SessionParticipant) TableName() string { return "session_participants" }
