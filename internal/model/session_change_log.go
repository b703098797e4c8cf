package model

import "time"

// SessionChangeLog 会话状态变更日志 — 对应 session_change_logs
// 每次成功的状态转移追加一行，作为审计轨迹
type SessionChangeLog struct {
	ChangeLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_log_id"`
	SessionID   string    `gorm:"type:uuid;not null"                             json:"session_id"`
	FromStatus  string    `gorm:"type:varchar(20);not null"                      json:"from_status"`
	ToStatus    string    `gorm:"type:varchar(20);not null"                      json:"to_status"`
	ActorID     string    `gorm:"type:uuid;not null"                             json:"actor_id"`
	ActorRole   string    `gorm:"type:varchar(20);not null"                      json:"actor_role"`
	Reason      *string   `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (SessionChangeLog) TableName() string { return "session_change_logs" }
