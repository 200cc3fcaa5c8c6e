package service_test

import (
	"context"
	"testing"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/service"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatisticsService_GetStatistics 测试按派生状态统计
func TestStatisticsService_GetStatistics(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	createDraft(t, svc, "C000031", "Stat One", "W001")
	createDraft(t, svc, "C000032", "Stat Two", "W001")
	createDraft(t, svc, "C000033", "Stat Three", "W002")
	transition(t, svc, "C000032", "submit", "W001")
	transition(t, svc, "C000033", "submit", "W002")
	_, err := svc.Transition(ctx, "C000033", &service.TransitionRequest{Action: "reject", ActorID: "W010"})
	require.NoError(t, err)

	statsSvc := service.NewStatisticsService(db)
	stats, err := statsSvc.GetStatistics(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(105000), stats.TotalCompensation)
	require.Len(t, stats.ByStatus, len(workflow.AllStatuses()))

	byStatus := make(map[workflow.StatusCode]int64)
	for _, sc := range stats.ByStatus {
		byStatus[sc.Status] = sc.Count
	}
	assert.Equal(t, int64(1), byStatus[workflow.StatusDraft])
	assert.Equal(t, int64(1), byStatus[workflow.StatusPending1])
	assert.Equal(t, int64(1), byStatus[workflow.StatusRejected])
	assert.Equal(t, int64(0), byStatus[workflow.StatusCompleted])

	mine, err := statsSvc.GetStatistics(ctx, "W001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	counts, err := statsSvc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["REJECTED"])
	assert.Equal(t, int64(0), counts["HANDED_OVER"])
}
