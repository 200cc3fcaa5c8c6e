package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
)

// workerCacheEntry 缓存条目,worker 为 nil 表示员工不存在
type workerCacheEntry struct {
	worker    *model.WorkerModel
	expiresAt time.Time
}

// cachedWorkerRepository 带 TTL 缓存的员工仓储
// 员工主数据很少变化,通知投递时反复查询同一批审批人
type cachedWorkerRepository struct {
	repo  WorkerRepository
	cache *sync.Map
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedWorkerRepository 创建带缓存的员工仓储
func NewCachedWorkerRepository(repo WorkerRepository, ttl time.Duration) WorkerRepository {
	return &cachedWorkerRepository{
		repo:  repo,
		cache: &sync.Map{},
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *cachedWorkerRepository) get(id string) (*workerCacheEntry, bool) {
	val, found := r.cache.Load(id)
	if !found {
		return nil, false
	}
	entry := val.(*workerCacheEntry)
	if r.now().After(entry.expiresAt) {
		// 已过期，删除
		r.cache.Delete(id)
		return nil, false
	}
	return entry, true
}

func (r *cachedWorkerRepository) set(id string, worker *model.WorkerModel) {
	r.cache.Store(id, &workerCacheEntry{worker: worker, expiresAt: r.now().Add(r.ttl)})
}

// FindByID 根据员工编号查找（带缓存）
func (r *cachedWorkerRepository) FindByID(id string) (*model.WorkerModel, error) {
	if entry, ok := r.get(id); ok {
		if entry.worker == nil {
			return nil, ErrWorkerNotFound
		}
		return entry.worker, nil
	}

	worker, err := r.repo.FindByID(id)
	switch {
	case err == nil:
		r.set(id, worker)
	case errors.Is(err, ErrWorkerNotFound):
		r.set(id, nil)
	}
	return worker, err
}

// FindByIDs 批量查找,只查询未命中缓存的编号
func (r *cachedWorkerRepository) FindByIDs(ids []string) (map[string]*model.WorkerModel, error) {
	result := make(map[string]*model.WorkerModel, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if entry, ok := r.get(id); ok {
			if entry.worker != nil {
				result[id] = entry.worker
			}
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	found, err := r.repo.FindByIDs(missing)
	if err != nil {
		return result, err
	}
	for _, id := range missing {
		worker := found[id]
		r.set(id, worker)
		if worker != nil {
			result[id] = worker
		}
	}
	return result, nil
}
