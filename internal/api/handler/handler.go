package handler

import "gradguide/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Department   *DepartmentHandler
	Period       *PeriodHandler
	Project      *ProjectHandler
	Availability *AvailabilityHandler
	Session      *SessionHandler
	Requirement  *RequirementHandler
	Timetable    *TimetableHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Department:   NewDepartmentHandler(svc.Department),
		Period:       NewPeriodHandler(svc.Period),
		Project:      NewProjectHandler(svc.Project),
		Availability: NewAvailabilityHandler(svc.Availability),
		Session:      NewSessionHandler(svc.Session),
		Requirement:  NewRequirementHandler(svc.Requirement),
		Timetable:    NewTimetableHandler(svc.Timetable),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
