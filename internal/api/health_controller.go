package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/database"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/metrics"
	"gorm.io/gorm"
)

// HealthController 健康检查控制器
type HealthController struct {
	db            *gorm.DB
	notifications bool
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB, notifications bool) *HealthController {
	return &HealthController{
		db:            db,
		notifications: notifications,
	}
}

// Check 健康检查
// @Summary 健康检查
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthController) Check(c *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if h.db != nil {
		if err := database.CheckHealth(c.Request.Context(), h.db); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		status = "unhealthy"
		checks["database"] = "not configured"
	}

	if h.notifications {
		checks["notification"] = "enabled"
	} else {
		checks["notification"] = "disabled"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"service":   ServiceName,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// MetricsHandler Prometheus 指标处理器
func MetricsHandler(c *gin.Context) {
	metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
