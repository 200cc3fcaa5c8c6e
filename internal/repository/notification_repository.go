package repository

import (
	"time"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"gorm.io/gorm"
)

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	Save(notification *model.NotificationModel) error
	UpdateStatus(id, status string, retryCount int, lastError string) error
	FindByHandoverID(handoverID string) ([]*model.NotificationModel, error)
	FindPending() ([]*model.NotificationModel, error)
}

// notificationRepository 通知仓储实现
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Save 保存通知
func (r *notificationRepository) Save(notification *model.NotificationModel) error {
	if err := notification.Validate(); err != nil {
		return err
	}
	return r.db.Create(notification).Error
}

// UpdateStatus 更新投递状态
func (r *notificationRepository) UpdateStatus(id, status string, retryCount int, lastError string) error {
	return r.db.Model(&model.NotificationModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"retry_count": retryCount,
			"last_error":  lastError,
			"updated_at":  time.Now(),
		}).Error
}

// FindByHandoverID 根据交接记录查找通知
func (r *notificationRepository) FindByHandoverID(handoverID string) ([]*model.NotificationModel, error) {
	var notifications []*model.NotificationModel
	err := r.db.Where("handover_id = ?", handoverID).Order("created_at ASC").Find(&notifications).Error
	return notifications, err
}

// FindPending 查找待投递的通知
func (r *notificationRepository) FindPending() ([]*model.NotificationModel, error) {
	var notifications []*model.NotificationModel
	err := r.db.Where("status = ?", model.NotificationPending).Order("created_at ASC").Find(&notifications).Error
	return notifications, err
}
