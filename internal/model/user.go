package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleAdvisor = "advisor"
	RoleStudent = "student"
)

// User 用户表 — 对应 users
// advisor 为论文导师，student 为课题学生
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	NIM          string `gorm:"column:nim;type:varchar(20);not null"           json:"nim"` // 学号（导师/管理员为空）
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
