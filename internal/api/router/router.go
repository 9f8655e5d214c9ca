package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/config"
	"timetrack/backend/internal/api/handler"
	"timetrack/backend/internal/api/middleware"
	"timetrack/backend/internal/model"
	"timetrack/backend/pkg/jwt"
	"timetrack/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与登录限流均降级关闭
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(int64(cfg.Server.BodyLimitMB) << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
		}
		c.JSON(code, status)
	})

	admin := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.Server.LoginRateMax, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 员工模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", admin, h.Employee.List)
				employees.GET("/:id", h.Employee.GetByID) // admin 或本人（Handler 层鉴权）
				employees.POST("", admin, h.Employee.Create)
				employees.PUT("/:id", admin, h.Employee.Update)
				employees.DELETE("/:id", admin, h.Employee.Deactivate)
				employees.POST("/:id/activate", admin, h.Employee.Activate)
				employees.POST("/import", admin, h.Employee.Import)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", admin, h.Department.CreateDepartment)
				departments.PUT("/:id", admin, h.Department.UpdateDepartment)
				departments.DELETE("/:id", admin, h.Department.DeleteDepartment)
			}

			// 岗位模块
			roles := authorized.Group("/roles")
			{
				roles.GET("", h.JobRole.List)
				roles.GET("/:id", h.JobRole.GetByID)
				roles.POST("", admin, h.JobRole.Create)
				roles.PUT("/:id", admin, h.JobRole.Update)
				roles.DELETE("/:id", admin, h.JobRole.Delete)
			}

			// 日期排班模块
			dateSchedules := authorized.Group("/date-schedules")
			{
				dateSchedules.GET("/calendar", h.DateSchedule.Calendar)
				dateSchedules.GET("", h.DateSchedule.List)
				dateSchedules.GET("/copy-targets", admin, h.DateSchedule.CopyTargets)
				dateSchedules.GET("/:id", h.DateSchedule.GetByID)
				dateSchedules.DELETE("/:id", admin, h.DateSchedule.Delete)
				dateSchedules.POST("/bulk", admin, h.DateSchedule.BulkCreate)
				dateSchedules.PUT("/bulk", admin, h.DateSchedule.BulkModify)
				dateSchedules.POST("/bulk-delete", admin, h.DateSchedule.BulkDelete)
				dateSchedules.POST("/copy", admin, h.DateSchedule.Copy)
			}

			// 周排班模板
			weekly := authorized.Group("/weekly-schedules")
			{
				weekly.GET("", h.WeeklySchedule.List)
				weekly.PUT("", admin, h.WeeklySchedule.Set)
				weekly.DELETE("", admin, h.WeeklySchedule.Delete)
				weekly.POST("/apply", admin, h.WeeklySchedule.Apply)
			}

			// 打卡
			entries := authorized.Group("/time-entries")
			{
				entries.POST("/clock-in", h.Workday.ClockIn)
				entries.POST("/break-start", h.Workday.BreakStart)
				entries.POST("/break-end", h.Workday.BreakEnd)
				entries.POST("/clock-out", h.Workday.ClockOut)
				entries.GET("", h.Workday.Entries)
			}

			// 每日工作记录
			workdays := authorized.Group("/daily-workday")
			{
				workdays.GET("/today", h.Workday.Today)
				workdays.GET("", h.Workday.List)
				workdays.POST("", admin, h.Workday.CreateManual)
				workdays.PUT("/:id", admin, h.Workday.Update)
				workdays.DELETE("/:id", admin, h.Workday.Delete)
			}

			// 工时汇总
			hours := authorized.Group("/hours")
			{
				hours.GET("/summary", admin, h.Hours.Summary)
				hours.GET("/employees/:id", h.Hours.ForEmployee)
			}

			// 考勤异常
			incidents := authorized.Group("/incidents")
			{
				incidents.POST("", h.Incident.Create)
				incidents.GET("", h.Incident.List)
				incidents.POST("/:id/approve", admin, h.Incident.Approve)
				incidents.POST("/:id/reject", admin, h.Incident.Reject)
				incidents.DELETE("/:id", h.Incident.Delete)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/hours", admin, h.Export.HoursXLSX)
				export.GET("/hours.pdf", admin, h.Export.HoursPDF)
				export.GET("/schedule.ics", h.Export.ScheduleICS)
			}
		}
	}

	return r
}
