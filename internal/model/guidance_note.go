package model

// GuidanceNote 指导记录表 — 对应 guidance_notes
// 会话完成时由导师写入，仅追加不修改
type GuidanceNote struct {
	NoteID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"note_id"`
	SessionID     string  `gorm:"type:uuid;not null"                             json:"session_id"`
	AdvisorID     string  `gorm:"type:uuid;not null"                             json:"advisor_id"`
	Content       string  `gorm:"type:text;not null"                             json:"content"`
	FollowUpTasks *string `gorm:"type:text"                                      json:"follow_up_tasks,omitempty"`
	BaseModel

	// 关联
	Advisor *User `gorm:"foreignKey:AdvisorID;references:UserID" json:"advisor,omitempty"`
}

// TableName 指定表名
func (GuidanceNote) TableName() string { return "guidance_notes" }
