package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User                UserRepository
	Department          DepartmentRepository
	InviteCode          InviteCodeRepository
	AcademicPeriod      AcademicPeriodRepository
	ThesisProject       ThesisProjectRepository
	GuidanceSession     GuidanceSessionRepository
	GuidanceNote        GuidanceNoteRepository
	SessionChangeLog    SessionChangeLogRepository
	ClassSchedule       ClassScheduleRepository
	AvailabilityWindow  AvailabilityWindowRepository
	UnavailabilityBlock UnavailabilityBlockRepository
	RequirementPolicy   RequirementPolicyRepository
	Notification        NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:                NewUserRepo(db),
		Department:          NewDepartmentRepo(db),
		InviteCode:          NewInviteCodeRepo(db),
		AcademicPeriod:      NewAcademicPeriodRepo(db),
		ThesisProject:       NewThesisProjectRepo(db),
		GuidanceSession:     NewGuidanceSessionRepo(db),
		GuidanceNote:        NewGuidanceNoteRepo(db),
		SessionChangeLog:    NewSessionChangeLogRepo(db),
		ClassSchedule:       NewClassScheduleRepo(db),
		AvailabilityWindow:  NewAvailabilityWindowRepo(db),
		UnavailabilityBlock: NewUnavailabilityBlockRepo(db),
		RequirementPolicy:   NewRequirementPolicyRepo(db),
		Notification:        NewNotificationRepo(db),
	}
}
