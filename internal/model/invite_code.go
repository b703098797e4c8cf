package model

import "time"

// InviteCode 邀请码表 — 对应 invite_codes
// 注册需持有未过期未使用的邀请码，角色由邀请码决定
type InviteCode struct {
	InviteCodeID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_code_id"`
	Code         string     `gorm:"type:varchar(50);not null"                      json:"code"`
	Role         string     `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	ExpiresAt    time.Time  `gorm:"not null"                                       json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedBy       *string    `gorm:"type:uuid"                                      json:"used_by,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }
