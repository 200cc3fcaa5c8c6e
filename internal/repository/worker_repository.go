package repository

import (
	"errors"
	"fmt"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"gorm.io/gorm"
)

// ErrWorkerNotFound 员工不存在
var ErrWorkerNotFound = errors.New("worker not found")

// WorkerRepository 员工主数据仓储接口（只读）
type WorkerRepository interface {
	FindByID(id string) (*model.WorkerModel, error)
	FindByIDs(ids []string) (map[string]*model.WorkerModel, error)
}

// workerRepository 员工仓储实现
type workerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository 创建员工仓储
func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

// FindByID 根据员工编号查找
func (r *workerRepository) FindByID(id string) (*model.WorkerModel, error) {
	var worker model.WorkerModel
	err := r.db.Where("s_worker = ?", id).First(&worker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWorkerNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

// FindByIDs 批量查找,返回以员工编号为键的映射
func (r *workerRepository) FindByIDs(ids []string) (map[string]*model.WorkerModel, error) {
	result := make(map[string]*model.WorkerModel, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var workers []*model.WorkerModel
	if err := r.db.Where("s_worker IN ?", ids).Find(&workers).Error; err != nil {
		return nil, err
	}
	for _, w := range workers {
		result[w.WorkerID] = w
	}
	return result, nil
}
