package model

// 通知类型
const (
	NotifySessionRequested = "SESSION_REQUESTED"
	NotifySessionOffered   = "SESSION_OFFERED"
	NotifySessionApproved  = "SESSION_APPROVED"
	NotifySessionRejected  = "SESSION_REJECTED"
	NotifySessionDeclined  = "SESSION_DECLINED"
	NotifySessionCancelled = "SESSION_CANCELLED"
	NotifySessionCompleted = "SESSION_COMPLETED"
	NotifySessionUpdated   = "SESSION_UPDATED"
)

// Notification 站内通知表 — 对应 notifications
// 发送为尽力而为：写入失败只记日志，不回滚触发它的业务事务
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // session | project
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
