package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/api"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/config"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/database"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/service"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestRouter 创建带完整中间件链的测试路由
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&model.WorkerModel{WorkerID: "W001", UserName: "Sato Hanako"}).Error)

	logger, _ := test.NewNullLogger()
	handoverService := service.NewHandoverService(db, workflow.NewExecutor(workflow.Validator{}), service.WithLogger(logger))
	controller := api.NewHandoverController(
		handoverService,
		service.NewStatisticsService(db),
		service.NewExportService(db, logger),
	)

	cfg := config.Default()
	cfg.RateLimit.RPS = 0
	router := api.SetupRoutes(api.RouterDeps{
		Config:             cfg,
		DB:                 db,
		Logger:             logger,
		HandoverController: controller,
	})
	return router, db
}

func doRequest(t *testing.T, router *gin.Engine, method, path, actor string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(api.HeaderActorID, actor)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func createHandover(t *testing.T, router *gin.Engine, id string) {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/handovers", "W001", map[string]interface{}{
		"s_customer":     id,
		"s_name":         "Acme Trading",
		"s_superior":     "W010",
		"n_advisory_fee": 30000,
		"n_others_fee":   5000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// TestHandoverAPI_Lifecycle 测试通过 HTTP 完成整个交接流程
func TestHandoverAPI_Lifecycle(t *testing.T) {
	router, _ := setupTestRouter(t)

	createHandover(t, router, "C000001")

	w := doRequest(t, router, http.MethodGet, "/api/v1/handovers/C000001", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "DRAFT", data["status"])
	assert.Equal(t, "W001", data["s_predecessor"])
	assert.Equal(t, float64(35000), data["total_compensation"])

	w = doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000001/submit", "W001", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PENDING_1", decodeData(t, w)["status"])

	w = doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000001/approve", "W010", map[string]interface{}{"comment": "OK"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeData(t, w)
	assert.Equal(t, "PENDING_2", data["status"])
	assert.Equal(t, true, data["identity_verified"])

	for level := 2; level <= workflow.StageCount; level++ {
		w = doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000001/approve", "W099", map[string]interface{}{"expected_stage": level})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, false, decodeData(t, w)["identity_verified"])
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/handovers/C000001/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Len(t, data["chain"], workflow.StageCount)

	w = doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000001/assign", "W001", map[string]interface{}{"successor_id": "W020"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "HANDED_OVER", decodeData(t, w)["status"])

	w = doRequest(t, router, http.MethodGet, "/api/v1/handovers/C000001/history", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	// 创建 + 提交 + 7 级审批 + 指定继任者
	assert.Len(t, history.Data, 10)
}

// TestHandoverAPI_ErrorMapping 测试错误码映射
func TestHandoverAPI_ErrorMapping(t *testing.T) {
	router, _ := setupTestRouter(t)
	createHandover(t, router, "C000002")

	t.Run("not found", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/handovers/C999999", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, api.CodeNotFound, decodeError(t, w).Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/handovers/C1", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, api.CodeBadRequest, decodeError(t, w).Error)
	})

	t.Run("approve draft", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000002/approve", "W010", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, api.CodeActionNotPermitted, resp.Error)
		assert.Equal(t, string(workflow.ReasonNotSubmitted), resp.Reason)
	})

	t.Run("wrong actor", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000002/submit", "W001", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000002/approve", "W011", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, string(workflow.ReasonWrongActor), decodeError(t, w).Reason)
	})

	t.Run("edit while pending", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPut, "/api/v1/handovers/C000002", "W001", map[string]interface{}{"s_name": "Renamed"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, string(workflow.ReasonWrongStage), decodeError(t, w).Reason)
	})

	t.Run("missing actor", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/handovers", "", map[string]interface{}{
			"s_customer": "C000003",
			"s_name":     "No Actor",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, api.CodeValidation, decodeError(t, w).Error)
	})

	t.Run("unknown field", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/api/v1/handovers/C000002/reject", "W010", map[string]interface{}{"status": "REJECTED"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid actor header", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/handovers", "bad actor!", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestHandoverAPI_Update 测试草稿编辑
func TestHandoverAPI_Update(t *testing.T) {
	router, _ := setupTestRouter(t)
	createHandover(t, router, "C000004")

	w := doRequest(t, router, http.MethodPut, "/api/v1/handovers/C000004", "W001", map[string]interface{}{
		"s_name":       "Acme Holdings",
		"n_others_fee": 0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "Acme Holdings", data["s_name"])
	assert.Equal(t, float64(30000), data["total_compensation"])
}

// TestHandoverAPI_List 测试列表查询与分页
func TestHandoverAPI_List(t *testing.T) {
	router, _ := setupTestRouter(t)
	createHandover(t, router, "C000011")
	createHandover(t, router, "C000012")
	createHandover(t, router, "C000013")

	w := doRequest(t, router, http.MethodGet, "/api/v1/handovers?predecessor=W001&sort_by=customer&order=desc&page=1&page_size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination api.PaginationInfo       `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPage)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "C000013", resp.Data[0]["s_customer"])
	assert.Equal(t, "Sato Hanako", resp.Data[0]["predecessor_name"])

	w = doRequest(t, router, http.MethodGet, "/api/v1/handovers?status=UNKNOWN", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/handovers?include_completed=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestHandoverAPI_Export 测试导出 xlsx
func TestHandoverAPI_Export(t *testing.T) {
	router, _ := setupTestRouter(t)
	createHandover(t, router, "C000021")

	w := doRequest(t, router, http.MethodGet, "/api/v1/handovers/export?predecessor=W001", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
	assert.NotZero(t, w.Body.Len())
}

// TestHandoverAPI_RouteAndStatistics 测试审批路线与统计接口
func TestHandoverAPI_RouteAndStatistics(t *testing.T) {
	router, _ := setupTestRouter(t)
	createHandover(t, router, "C000031")

	w := doRequest(t, router, http.MethodGet, "/api/v1/approval-route", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var route struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &route))
	assert.Len(t, route.Data, workflow.StageCount)

	w = doRequest(t, router, http.MethodGet, "/api/v1/statistics/handovers?predecessor=W001", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["total"])
}

// TestHealthController_Check 测试健康检查
func TestHealthController_Check(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, api.ServiceName, body["service"])

	w = doRequest(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "handover_api_requests_total")
}

// TestHealthController_Unhealthy 测试数据库不可用
func TestHealthController_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	router := gin.New()
	router.GET("/health", api.NewHealthController(db, false).Check)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
