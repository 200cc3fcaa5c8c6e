package model

import (
	"errors"
	"time"
)

// AuditLogModel 交接操作审计日志
type AuditLogModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	ActorID    string    `gorm:"type:varchar(64);not null;index"`
	Action     string    `gorm:"type:varchar(64);not null;index"` // handover.create / handover.approve ...
	HandoverID string    `gorm:"type:char(7);not null;index"`
	RequestID  string    `gorm:"type:varchar(64);index"`
	IP         string    `gorm:"type:varchar(45)"`
	UserAgent  string    `gorm:"type:text"`
	Details    string    `gorm:"type:text"` // JSON
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (AuditLogModel) TableName() string {
	return "handover_audit_logs"
}

// Validate 验证审计日志模型
func (alm *AuditLogModel) Validate() error {
	switch {
	case alm.ID == "":
		return errors.New("audit log ID is required")
	case alm.ActorID == "":
		return errors.New("actor ID is required")
	case alm.Action == "":
		return errors.New("action is required")
	case alm.HandoverID == "":
		return errors.New("handover ID is required")
	}
	return nil
}
