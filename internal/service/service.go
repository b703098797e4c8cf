package service

import (
	"go.uber.org/zap"

	"gradguide/backend/config"
	"gradguide/backend/internal/repository"
	"gradguide/backend/pkg/jwt"
	"gradguide/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Department   DepartmentService
	Period       AcademicPeriodService
	Project      ThesisProjectService
	Availability AvailabilityService
	Session      SessionService
	Requirement  RequirementService
	Timetable    TimetableService
	Notification NotificationService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, logger)
	conflicts := NewConflictChecker(repo)
	availability := NewAvailabilityService(cfg, repo, logger)
	requirement := NewRequirementService(repo, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Department:   NewDepartmentService(repo, logger),
		Period:       NewAcademicPeriodService(repo, logger),
		Project:      NewThesisProjectService(repo, logger),
		Availability: availability,
		Session:      NewSessionService(cfg, repo, conflicts, notification, logger),
		Requirement:  requirement,
		Timetable:    NewTimetableService(repo, logger),
		Notification: notification,
		Export:       NewExportService(repo, requirement, logger),
	}
}
