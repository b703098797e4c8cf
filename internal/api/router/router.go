package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gradguide/backend/config"
	"gradguide/backend/internal/api/handler"
	"gradguide/backend/internal/api/middleware"
	"gradguide/backend/pkg/jwt"
	"gradguide/backend/pkg/redis"
)

// 请求体上限。名册与 ICS 上传走 multipart，8MB 足够
const maxBodyBytes = 8 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录/注册限流防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/invite", middleware.RoleAuth("admin"), h.Auth.GenerateInvite)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("", middleware.RoleAuth("admin"), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth("admin"), h.User.GetUser)
				users.POST("", middleware.RoleAuth("admin"), h.User.CreateUser)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
				users.POST("/import", middleware.RoleAuth("admin"), h.User.ImportRoster)
			}

			// 院系模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", middleware.RoleAuth("admin"), h.Department.CreateDepartment)
				departments.PUT("/:id", middleware.RoleAuth("admin"), h.Department.UpdateDepartment)
				departments.DELETE("/:id", middleware.RoleAuth("admin"), h.Department.DeleteDepartment)
			}

			// 学业周期模块
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.GET("/active", h.Period.GetActivePeriod)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.POST("", middleware.RoleAuth("admin"), h.Period.CreatePeriod)
				periods.PUT("/:id", middleware.RoleAuth("admin"), h.Period.UpdatePeriod)
				periods.POST("/:id/activate", middleware.RoleAuth("admin"), h.Period.ActivatePeriod)
				periods.POST("/:id/archive", middleware.RoleAuth("admin"), h.Period.ArchivePeriod)
				periods.GET("/:id/unmet", middleware.RoleAuth("admin"), h.Requirement.ListUnmet)
			}

			// 论文课题模块
			projects := authorized.Group("/projects")
			{
				projects.POST("", middleware.RoleAuth("admin"), h.Project.CreateProject)
				projects.GET("/mine", middleware.RoleAuth("student"), h.Project.GetMyProject)
				projects.GET("/advised", middleware.RoleAuth("advisor"), h.Project.ListMyAdvisedProjects)
				projects.GET("/:id", h.Project.GetProject)
				projects.PUT("/:id/status", middleware.RoleAuth("admin"), h.Project.UpdateProjectStatus)
				projects.GET("/:id/requirement", h.Requirement.GetStatus)
			}

			// 导师可预约时段模块（窗口与屏蔽段仅导师本人维护）
			availability := authorized.Group("/availability")
			availability.Use(middleware.RoleAuth("advisor"))
			{
				availability.GET("/windows", h.Availability.ListWindows)
				availability.POST("/windows", h.Availability.CreateWindow)
				availability.PUT("/windows/:id", h.Availability.UpdateWindow)
				availability.DELETE("/windows/:id", h.Availability.DeleteWindow)
				availability.GET("/blocks", h.Availability.ListBlocks)
				availability.POST("/blocks", h.Availability.CreateBlock)
				availability.DELETE("/blocks/:id", h.Availability.DeleteBlock)
			}

			// 任何登录用户都可查询导师某日的空闲区间
			authorized.GET("/advisors/:id/availability", h.Availability.ResolveAvailability)

			// 指导会话模块
			sessions := authorized.Group("/sessions")
			{
				sessions.POST("/request", middleware.RoleAuth("student"), h.Session.RequestSession)
				sessions.POST("/offer", middleware.RoleAuth("advisor"), h.Session.OfferSession)
				sessions.POST("/direct", middleware.RoleAuth("advisor"), h.Session.DirectSchedule)
				sessions.GET("", h.Session.ListSessions)
				sessions.GET("/calendar", middleware.RoleAuth("advisor"), h.Session.ListAdvisorCalendar)
				sessions.GET("/:id", h.Session.GetSession)
				sessions.PUT("/:id", middleware.RoleAuth("student"), h.Session.UpdateSession)
				sessions.POST("/:id/approve", middleware.RoleAuth("advisor"), h.Session.ApproveSession)
				sessions.POST("/:id/reject", middleware.RoleAuth("advisor"), h.Session.RejectSession)
				sessions.POST("/:id/accept", middleware.RoleAuth("student"), h.Session.AcceptSession)
				sessions.POST("/:id/decline", middleware.RoleAuth("student"), h.Session.DeclineSession)
				sessions.POST("/:id/cancel", middleware.RoleAuth("student"), h.Session.CancelSession)
				sessions.POST("/:id/complete", middleware.RoleAuth("advisor"), h.Session.CompleteSession)
				sessions.GET("/:id/logs", h.Session.ListChangeLogs)
				sessions.GET("/:id/note", h.Session.GetGuidanceNote)
			}

			// 指导次数策略模块
			policies := authorized.Group("/policies")
			{
				policies.GET("", h.Requirement.ListPolicies)
				policies.PUT("/:thesis_type", middleware.RoleAuth("admin"), h.Requirement.UpdatePolicy)
			}

			// 课表模块
			timetable := authorized.Group("/timetable")
			{
				timetable.GET("", h.Timetable.ListMySchedules)
				timetable.POST("", h.Timetable.CreateSchedule)
				timetable.PUT("/:id", h.Timetable.UpdateSchedule)
				timetable.DELETE("/:id", h.Timetable.DeleteSchedule)
				timetable.POST("/import", h.Timetable.ImportICS)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.CountUnread)
				notifications.POST("/:id/read", h.Notification.MarkRead)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/unmet", middleware.RoleAuth("admin"), h.Export.ExportUnmetRequirements)
			}
		}
	}

	return r
}
