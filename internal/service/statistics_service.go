package service

import (
	"context"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"gorm.io/gorm"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetStatistics(ctx context.Context, predecessorID string) (*HandoverStatistics, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// StatusCount 单个状态的记录数
type StatusCount struct {
	Status workflow.StatusCode `json:"status"`
	Text   string              `json:"text"`
	Count  int64               `json:"count"`
}

// HandoverStatistics 交接记录统计
type HandoverStatistics struct {
	PredecessorID     string         `json:"predecessor_id,omitempty"`
	Total             int64          `json:"total"`
	Pending           int64          `json:"pending"`
	TotalCompensation int64          `json:"total_compensation"`
	ByStatus          []*StatusCount `json:"by_status"`
}

// statisticsService 统计服务实现
// 状态不落库,只能遍历记录后按派生状态计数
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics 按派生状态统计,predecessorID 为空时统计全部
func (s *statisticsService) GetStatistics(ctx context.Context, predecessorID string) (*HandoverStatistics, error) {
	rs, err := workflow.NewListQueryEngine(repository.NewHandoverRepository(s.db)).List(ctx, workflow.Filter{
		PredecessorID:    predecessorID,
		IncludeCompleted: true,
		SortKey:          workflow.SortByCustomer,
		SortDir:          workflow.SortAsc,
	})
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	counts := make(map[workflow.StatusCode]int64)
	stats := &HandoverStatistics{PredecessorID: predecessorID}
	for rs.Next() {
		row := rs.Row()
		counts[row.Status]++
		stats.Total++
		if row.Status.IsPending() {
			stats.Pending++
		}
		stats.TotalCompensation += row.Record.TotalCompensation()
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	for _, status := range workflow.AllStatuses() {
		stats.ByStatus = append(stats.ByStatus, &StatusCount{
			Status: status,
			Text:   status.Text(),
			Count:  counts[status],
		})
	}
	return stats, nil
}

// CountByStatus 返回以状态码为键的计数,供指标收集器使用
func (s *statisticsService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	stats, err := s.GetStatistics(ctx, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(stats.ByStatus))
	for _, sc := range stats.ByStatus {
		counts[sc.Status.String()] = sc.Count
	}
	return counts, nil
}
