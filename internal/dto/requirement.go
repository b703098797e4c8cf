package dto

// ── 指导达标模块 DTO ──

// UpdatePolicyRequest 更新最低指导次数策略请求
type UpdatePolicyRequest struct {
	RequiredBeforeCheckpoint1 int `json:"required_before_checkpoint1" binding:"required,min=0,max=50"`
	RequiredBeforeCheckpoint2 int `json:"required_before_checkpoint2" binding:"required,min=0,max=50"`
}

// ── 响应 ──

// PolicyResponse 策略响应
type PolicyResponse struct {
	ID                        string `json:"id"`
	ThesisType                string `json:"thesis_type"`
	RequiredBeforeCheckpoint1 int    `json:"required_before_checkpoint1"`
	RequiredBeforeCheckpoint2 int    `json:"required_before_checkpoint2"`
}

// CheckpointStatus 单个检查点的达标情况
type CheckpointStatus struct {
	Required  int    `json:"required"`
	Completed int    `json:"completed"`
	Met       bool   `json:"met"`
	Deadline  string `json:"deadline"`
}

// RequirementStatusResponse 课题达标评估结果
// Checkpoint2 按两检查点之间的完成次数计；Cumulative2 为到 cp2 为止的累计口径，仅供参考
type RequirementStatusResponse struct {
	ProjectID   string           `json:"project_id"`
	ThesisType  string           `json:"thesis_type"`
	Student     *UserBrief       `json:"student,omitempty"`
	Checkpoint1 CheckpointStatus `json:"checkpoint1"`
	Checkpoint2 CheckpointStatus `json:"checkpoint2"`
	Cumulative2 int              `json:"cumulative_before_checkpoint2"`
	AllMet      bool             `json:"all_met"`
}

// UnmetRequirementRow 未达标名单单行
type UnmetRequirementRow struct {
	ProjectID    string `json:"project_id"`
	StudentName  string `json:"student_name"`
	StudentNIM   string `json:"student_nim"`
	ThesisType   string `json:"thesis_type"`
	Title        string `json:"title"`
	AdvisorNames string `json:"advisor_names"`
	Checkpoint   string `json:"checkpoint"` // cp1 | cp2
	Required     int    `json:"required"`
	Completed    int    `json:"completed"`
}
