package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config             *config.Config
	DB                 *gorm.DB
	Logger             logrus.FieldLogger
	HandoverController *HandoverController
}

// SetupRoutes 配置路由
func SetupRoutes(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = GetLogger()
	}

	// 请求体中出现未知字段时直接拒绝
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()

	// 中间件
	router.Use(ErrorHandlerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(logger))
	router.Use(I18nMiddleware())
	router.Use(CORSMiddleware(cfg.CORS))
	router.Use(SecurityHeadersMiddleware(config.IsProduction(cfg)))
	router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware(cfg.Tracing.ServiceName))
	}

	// 健康检查
	healthController := NewHealthController(deps.DB, cfg.Notification.Enabled)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	v1.Use(ActorMiddleware())
	if c := deps.HandoverController; c != nil {
		handovers := v1.Group("/handovers")
		{
			handovers.POST("", c.Create)
			handovers.GET("", c.List)
			handovers.GET("/export", c.Export)
			handovers.GET("/:id", c.Get)
			handovers.PUT("/:id", c.Update)
			handovers.GET("/:id/status", c.GetStatus)
			handovers.POST("/:id/submit", c.Submit)
			handovers.POST("/:id/approve", c.Approve)
			handovers.POST("/:id/reject", c.Reject)
			handovers.POST("/:id/assign", c.Assign)
			handovers.GET("/:id/history", c.GetHistory)
		}

		v1.GET("/approval-route", c.GetApprovalRoute)
		v1.GET("/statistics/handovers", c.GetStatistics)
	}

	return router
}
