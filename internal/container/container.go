package container

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/api"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/config"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/database"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/integration"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/metrics"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/service"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、服务、通知分发器与指标收集器
type Container struct {
	cfg               *config.Config
	db                *gorm.DB
	logger            logrus.FieldLogger
	dispatcher        integration.Dispatcher
	collector         *metrics.Collector
	handoverService   service.HandoverService
	statisticsService service.StatisticsService
	exportService     service.ExportService
	auditLogService   service.AuditLogService
	started           bool
}

// NewContainer 创建依赖注入容器
// 连接数据库(带重试)并执行迁移
func NewContainer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Container, error) {
	db, err := database.ConnectWithRetry(ctx, cfg.Database, cfg.Database.ConnectRetries, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewContainerWithDB(cfg, db, logger), nil
}

// NewContainerWithDB 基于已有连接创建容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, logger logrus.FieldLogger) *Container {
	if logger == nil {
		logger = api.GetLogger()
	}

	c := &Container{
		cfg:    cfg,
		db:     db,
		logger: logger,
	}

	opts := []service.HandoverServiceOption{service.WithLogger(logger)}
	if cfg.Notification.Enabled {
		c.dispatcher = integration.NewNotificationDispatcher(db, cfg.Notification, logger)
		opts = append(opts, service.WithNotifier(c.dispatcher))
	}

	executor := workflow.NewExecutor(workflow.Validator{AllowSelfSuccessor: cfg.Workflow.AllowSelfSuccessor})
	c.handoverService = service.NewHandoverService(db, executor, opts...)
	c.statisticsService = service.NewStatisticsService(db)
	c.exportService = service.NewExportService(db, logger)
	c.auditLogService = service.NewAuditLogService(repository.NewAuditLogRepository(db))

	interval := time.Duration(cfg.Metrics.CollectIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c.collector = metrics.NewCollector(db, c.statisticsService, interval, logger)

	return c
}

// Start 启动后台任务: 补发未完成的通知并启动指标收集
func (c *Container) Start(ctx context.Context) {
	if c.dispatcher != nil {
		n, err := c.dispatcher.ResumePending(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("failed to resume pending notifications")
		} else if n > 0 {
			c.logger.WithField("count", n).Info("resumed pending notifications")
		}
	}
	c.collector.Start()
	c.started = true
}

// Router 构建 HTTP 路由
func (c *Container) Router() *gin.Engine {
	return api.SetupRoutes(api.RouterDeps{
		Config:             c.cfg,
		DB:                 c.db,
		Logger:             c.logger,
		HandoverController: api.NewHandoverController(c.handoverService, c.statisticsService, c.exportService),
	})
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// HandoverService 获取交接记录服务
func (c *Container) HandoverService() service.HandoverService {
	return c.handoverService
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsService
}

// ExportService 获取导出服务
func (c *Container) ExportService() service.ExportService {
	return c.exportService
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogService
}

// Dispatcher 获取通知分发器,未开启通知时为 nil
func (c *Container) Dispatcher() integration.Dispatcher {
	return c.dispatcher
}

// Close 关闭容器,清理资源
// 先停止后台任务再关闭数据库
func (c *Container) Close() error {
	if c.started {
		c.collector.Stop()
	}
	if c.dispatcher != nil {
		c.dispatcher.Stop()
	}
	if c.db != nil {
		return database.Close(c.db)
	}
	return nil
}
