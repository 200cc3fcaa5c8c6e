package model

import (
	"errors"
	"time"
)

// 通知投递状态
const (
	NotificationPending = "pending"
	NotificationSuccess = "success"
	NotificationFailed  = "failed"
)

// NotificationModel 通知数据模型
// 迁移提交后写入,由异步 worker 投递
type NotificationModel struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)"`
	HandoverID    string    `gorm:"type:char(7);not null;index"`
	Action        string    `gorm:"type:varchar(32);not null"`
	Recipient     string    `gorm:"type:varchar(64);not null"` // 收件人 ID 或角色名
	RecipientRole string    `gorm:"type:varchar(64)"`
	Subject       string    `gorm:"type:varchar(512)"`
	Payload       string    `gorm:"type:text;not null"` // 序列化后的通知意图
	Status        string    `gorm:"type:varchar(32);not null;default:'pending';index"`
	RetryCount    int       `gorm:"type:int;default:0"`
	LastError     string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName 指定表名
func (NotificationModel) TableName() string {
	return "handover_notifications"
}

// Validate 验证通知模型
func (nm *NotificationModel) Validate() error {
	if nm.ID == "" {
		return errors.New("notification ID is required")
	}
	if nm.HandoverID == "" {
		return errors.New("handover ID is required")
	}
	if nm.Recipient == "" {
		return errors.New("recipient is required")
	}
	if nm.Payload == "" {
		return errors.New("notification payload is required")
	}
	if nm.Status == "" {
		nm.Status = NotificationPending
	}
	return nil
}
