package model

// RequirementPolicy 最低指导次数策略表 — 对应 requirement_policies
// 每种论文类型一行：检查点1前需完成次数 / 检查点1-2之间需完成次数
type RequirementPolicy struct {
	PolicyID                  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"policy_id"`
	ThesisType                string `gorm:"type:varchar(20);not null"                      json:"thesis_type"`
	RequiredBeforeCheckpoint1 int    `gorm:"not null"                                       json:"required_before_checkpoint1"`
	RequiredBeforeCheckpoint2 int    `gorm:"not null"                                       json:"required_before_checkpoint2"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName 指定表名
func (RequirementPolicy) TableName() string { return "requirement_policies" }
