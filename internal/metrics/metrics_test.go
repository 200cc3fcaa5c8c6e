package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

// TestRecordTransition 测试迁移计数器
func TestRecordTransition(t *testing.T) {
	metrics.RecordTransition("approve", "ok")
	metrics.RecordNotification("success")
	metrics.RecordHandoverCreated()
	metrics.RecordAPIRequest("GET", "/api/v1/handovers", 200, 0.01)

	body := scrape(t)
	assert.Contains(t, body, `handover_transitions_total{action="approve",result="ok"}`)
	assert.Contains(t, body, `handover_notifications_total{result="success"}`)
	assert.Contains(t, body, "handover_records_created_total")
	assert.Contains(t, body, "handover_api_requests_total")
}

// TestCollector_CollectOnce 测试采集状态分布
func TestCollector_CollectOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	c := metrics.NewCollector(db, &fakeCounter{counts: map[string]int64{"PENDING_3": 4}}, time.Hour, nil)
	c.CollectOnce()

	body := scrape(t)
	assert.True(t, strings.Contains(body, `handover_records_by_status{status="PENDING_3"} 4`))
	assert.Contains(t, body, "handover_database_connections_max")
}

// TestCollector_StartStop 测试启动与停止
func TestCollector_StartStop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	c := metrics.NewCollector(db, &fakeCounter{err: errors.New("boom")}, 10*time.Millisecond, nil)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}

// TestUpdateDatabaseConnections_Nil 测试空连接
func TestUpdateDatabaseConnections_Nil(t *testing.T) {
	assert.Error(t, metrics.UpdateDatabaseConnections(nil))
}
