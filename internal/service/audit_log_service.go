package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
)

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, actorID string, action string, handoverID string, details interface{}) error
	ListByHandover(handoverID string) ([]*model.AuditLogModel, error)
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// RecordAction 记录操作审计日志,action 形如 handover.approve
func (s *auditLogService) RecordAction(
	ctx context.Context,
	actorID string,
	action string,
	handoverID string,
	details interface{},
) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	auditLog := &model.AuditLogModel{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		Action:     action,
		HandoverID: handoverID,
		RequestID:  GetRequestID(ctx),
		IP:         GetClientIP(ctx),
		UserAgent:  GetUserAgent(ctx),
		Details:    string(detailsJSON),
		CreatedAt:  time.Now(),
	}

	return s.auditRepo.Save(auditLog)
}

// ListByHandover 查询交接记录的审计日志
func (s *auditLogService) ListByHandover(handoverID string) ([]*model.AuditLogModel, error) {
	return s.auditRepo.FindByHandover(handoverID)
}

// 请求信息由 API 中间件写入 gin.Context
func contextString(ctx context.Context, key string) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetRequestID 从 context 获取请求 ID
func GetRequestID(ctx context.Context) string {
	return contextString(ctx, "request_id")
}

// GetClientIP 从 context 获取客户端 IP
func GetClientIP(ctx context.Context) string {
	return contextString(ctx, "ip")
}

// GetUserAgent 从 context 获取 User Agent
func GetUserAgent(ctx context.Context) string {
	return contextString(ctx, "user_agent")
}

// getUserIDFromContext 获取操作人 ID（由 ActorMiddleware 设置）
func getUserIDFromContext(ctx context.Context) string {
	return contextString(ctx, "user_id")
}
