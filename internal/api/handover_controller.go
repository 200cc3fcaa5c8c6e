package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/service"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/utils"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandoverController 交接记录控制器
type HandoverController struct {
	handoverService   service.HandoverService
	statisticsService service.StatisticsService
	exportService     service.ExportService
}

// NewHandoverController 创建交接记录控制器
func NewHandoverController(
	handoverService service.HandoverService,
	statisticsService service.StatisticsService,
	exportService service.ExportService,
) *HandoverController {
	return &HandoverController{
		handoverService:   handoverService,
		statisticsService: statisticsService,
		exportService:     exportService,
	}
}

// validateHandoverID 校验路径中的客户编号
func (c *HandoverController) validateHandoverID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if err := utils.ValidateCustomerID(id); err != nil {
		BadRequest(ctx, err)
		return "", false
	}
	return id, true
}

// Create 创建交接记录
// @Summary      创建交接记录
// @Description  以草稿状态创建交接记录,操作人成为前任负责人
// @Tags         交接记录
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string false "操作人"
// @Param        request body service.CreateHandoverRequest true "交接信息"
// @Success      201  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /handovers [post]
func (c *HandoverController) Create(ctx *gin.Context) {
	var req service.CreateHandoverRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		BadRequest(ctx, err)
		return
	}

	detail, err := c.handoverService.CreateHandover(ctx, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Created(ctx, detail)
}

// Get 获取交接记录
// @Summary      获取交接记录详情
// @Tags         交接记录
// @Produce      json
// @Param        id path string true "客户编号"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /handovers/{id} [get]
func (c *HandoverController) Get(ctx *gin.Context) {
	id, ok := c.validateHandoverID(ctx)
	if !ok {
		return
	}

	detail, err := c.handoverService.GetHandover(ctx, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// Update 编辑交接记录
// @Summary      编辑交接记录
// @Description  草稿与驳回状态可编辑,审批中与终态不可编辑
// @Tags         交接记录
// @Accept       json
// @Produce      json
// @Param        id path string true "客户编号"
// @Param        request body service.UpdateHandoverRequest true "需要修改的字段"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /handovers/{id} [put]
func (c *HandoverController) Update(ctx *gin.Context) {
	id, ok := c.validateHandoverID(ctx)
	if !ok {
		return
	}

	var req service.UpdateHandoverRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		BadRequest(ctx, err)
		return
	}

	detail, err := c.handoverService.UpdateHandover(ctx, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, Response{Code: 0, Message: T(ctx, "success.updated"), Data: detail})
}

// GetStatus 获取状态与审批链
// @Summary      获取交接记录状态
// @Description  返回派生状态、当前待审批级别以及各级审批情况
// @Tags         交接记录
// @Produce      json
// @Param        id path string true "客户编号"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /handovers/{id}/status [get]
func (c *HandoverController) GetStatus(ctx *gin.Context) {
	id, ok := c.validateHandoverID(ctx)
	if !ok {
		return
	}

	view, err := c.handoverService.GetStatus(ctx, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, view)
}

// Submit 提交审批
// @Summary      提交交接记录
// @Tags         审批流程
// @Accept       json
// @Produce      json
// @Param        id path string true "客户编号"
// @Param        request body service.TransitionRequest false "提交信息"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /handovers/{id}/submit [post]
func (c *HandoverController) Submit(ctx *gin.Context) {
	c.transition(ctx, workflow.ActionSubmit)
}

// Approve 审批同意
// @Summary      审批同意
// @Description  仅当前待审批级别可以审批,最后一级审批后记录完成
// @Tags         审批流程
// @Accept       json
// @Produce      json
// @Param        id path string true "客户编号"
// @Param        request body service.TransitionRequest false "审批信息"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /handovers/{id}/approve [post]
func (c *HandoverController) Approve(ctx *gin.Context) {
	c.transition(ctx, workflow.ActionApprove)
}

// Reject 驳回
// @Summary      驳回交接记录
// @Tags         审批流程
// @Accept       json
// @Produce      json
// @Param        id path string true "客户编号"
// @Param        request body service.TransitionRequest false "驳回理由"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /handovers/{id}/reject [post]
func (c *HandoverController) Reject(ctx *gin.Context) {
	c.transition(ctx, workflow.ActionReject)
}

// Assign 指定继任者
// @Summary      指定继任者
// @Description  审批完成后由前任负责人指定继任者
// @Tags         审批流程
// @Accept       json
// @Produce      json
// @Param        id path string true "客户编号"
// @Param        request body service.TransitionRequest true "继任者"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /handovers/{id}/assign [post]
func (c *HandoverController) Assign(ctx *gin.Context) {
	c.transition(ctx, workflow.ActionAssignSuccessor)
}

func (c *HandoverController) transition(ctx *gin.Context, action workflow.Action) {
	id, ok := c.validateHandoverID(ctx)
	if !ok {
		return
	}

	var req service.TransitionRequest
	// 请求体可为空
	if ctx.Request.ContentLength != 0 && ctx.Request.Body != nil {
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			BadRequest(ctx, err)
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			ctx.Request.Body = io.NopCloser(bytes.NewReader(body))
			if err := ctx.ShouldBindJSON(&req); err != nil {
				BadRequest(ctx, err)
				return
			}
		}
	}
	req.Action = string(action)

	result, err := c.handoverService.Transition(ctx, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, result)
}

// GetHistory 获取状态历史
// @Summary      获取状态历史
// @Tags         交接记录
// @Produce      json
// @Param        id path string true "客户编号"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /handovers/{id}/history [get]
func (c *HandoverController) GetHistory(ctx *gin.Context) {
	id, ok := c.validateHandoverID(ctx)
	if !ok {
		return
	}

	history, err := c.handoverService.GetHistory(ctx, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, history)
}

// List 列出交接记录
// @Summary      获取交接记录列表
// @Description  按前任负责人、关键字、状态过滤,支持排序与分页
// @Tags         交接记录
// @Produce      json
// @Param        predecessor query string false "前任负责人"
// @Param        keyword query string false "客户编号或公司名称"
// @Param        include_completed query bool false "包含已完成记录"
// @Param        status query string false "状态码" Enums(DRAFT, PENDING_1, PENDING_2, PENDING_3, PENDING_4, PENDING_5, PENDING_6, PENDING_7, COMPLETED, REJECTED, HANDED_OVER)
// @Param        sort_by query string false "排序字段" Enums(submitted, tax_code, name, customer)
// @Param        order query string false "排序方向" Enums(asc, desc)
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200  {object}  PaginatedResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /handovers [get]
func (c *HandoverController) List(ctx *gin.Context) {
	filter, err := parseListFilter(ctx)
	if err != nil {
		BadRequest(ctx, err)
		return
	}

	result, err := c.handoverService.ListRecords(ctx, filter)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Paginated(ctx, result.Items, PaginationInfo{
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
	})
}

// Export 导出交接记录
// @Summary      导出交接记录
// @Description  以 xlsx 格式导出过滤后的交接记录
// @Tags         交接记录
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        predecessor query string false "前任负责人"
// @Param        keyword query string false "客户编号或公司名称"
// @Param        include_completed query bool false "包含已完成记录"
// @Success      200  {file}  file
// @Failure      400  {object}  ErrorResponse
// @Router       /handovers/export [get]
func (c *HandoverController) Export(ctx *gin.Context) {
	filter, err := parseListFilter(ctx)
	if err != nil {
		BadRequest(ctx, err)
		return
	}

	// 先写入缓冲区,失败时仍可返回 JSON 错误
	var buf bytes.Buffer
	count, err := c.exportService.ExportXLSX(ctx, filter, &buf)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	filename := fmt.Sprintf("handovers_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Header("X-Total-Count", strconv.Itoa(count))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetApprovalRoute 获取审批路线
// @Summary      获取审批路线
// @Description  返回七级审批的级别、角色与对应字段
// @Tags         审批流程
// @Produce      json
// @Success      200  {object}  Response
// @Router       /approval-route [get]
func (c *HandoverController) GetApprovalRoute(ctx *gin.Context) {
	Success(ctx, c.handoverService.GetApprovalRoute())
}

// GetStatistics 获取统计数据
// @Summary      获取交接记录统计
// @Tags         查询统计
// @Produce      json
// @Param        predecessor query string false "前任负责人"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /statistics/handovers [get]
func (c *HandoverController) GetStatistics(ctx *gin.Context) {
	predecessor := strings.TrimSpace(ctx.Query("predecessor"))
	if predecessor != "" {
		if err := utils.ValidateWorkerID(predecessor); err != nil {
			BadRequest(ctx, err)
			return
		}
	}

	stats, err := c.statisticsService.GetStatistics(ctx, predecessor)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, stats)
}

// parseListFilter 解析列表查询参数
func parseListFilter(ctx *gin.Context) (*service.ListFilter, error) {
	filter := &service.ListFilter{
		PredecessorID: strings.TrimSpace(ctx.Query("predecessor")),
		Keyword:       ctx.Query("keyword"),
		Status:        ctx.Query("status"),
		SortBy:        ctx.Query("sort_by"),
		Order:         ctx.Query("order"),
	}

	if filter.PredecessorID != "" {
		if err := utils.ValidateWorkerID(filter.PredecessorID); err != nil {
			return nil, err
		}
	}
	if v := ctx.Query("include_completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid include_completed: %s", v)
		}
		filter.IncludeCompleted = b
	}
	if v := ctx.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid page: %s", v)
		}
		filter.Page = page
	}
	if v := ctx.Query("page_size"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid page_size: %s", v)
		}
		filter.PageSize = pageSize
	}

	return filter, nil
}
