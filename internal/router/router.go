package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"SafeHer/internal/handler"
	"SafeHer/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")
	v1.Use(middleware.GeneralRateLimitMiddleware())

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handler.GetUserProfile)
		users.PUT("/me/settings", handler.UpdateUserSettings)
	}

	// 紧急联系人路由
	contacts := v1.Group("/contacts")
	contacts.Use(middleware.AuthMiddleware())
	{
		contacts.GET("", handler.ListContacts)
		contacts.POST("", handler.CreateContact)
		contacts.PATCH("/:priority", handler.UpdateContact)
		contacts.DELETE("/:priority", handler.DeleteContact)
	}

	// 行程监控路由
	journeys := v1.Group("/journeys")
	journeys.Use(middleware.AuthMiddleware())
	{
		journeys.GET("", handler.ListJourneys)
		journeys.POST("", handler.StartJourney)
		journeys.GET("/active", handler.GetActiveJourney)
		journeys.GET("/active/monitor", handler.GetMonitorSnapshot)
		journeys.POST("/:journey_id/check-in", handler.CheckIn)
		journeys.POST("/:journey_id/complete", handler.CompleteJourney)
	}

	// 告警路由
	alerts := v1.Group("/alerts")
	alerts.Use(middleware.AuthMiddleware())
	{
		alerts.GET("", handler.ListAlerts)
		alerts.POST("/sos", middleware.SOSRateLimitMiddleware(), handler.TriggerSOS)
		alerts.POST("/:alert_id/resolve", handler.ResolveAlert)
	}

	// 摇一摇检测路由
	motion := v1.Group("/motion")
	motion.Use(middleware.AuthMiddleware())
	{
		motion.GET("/status", handler.GetMotionStatus)
		motion.PUT("/enabled", handler.SetMotionEnabled)
		motion.POST("/samples", middleware.MotionRateLimitMiddleware(), handler.PushMotionSamples)
		motion.POST("/permission", handler.ReportMotionPermission)
	}
}
