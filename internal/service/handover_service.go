package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/metrics"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/utils"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	maxCommentLength = 2000 // 审批意见长度上限

	actionCreate workflow.Action = "create"
	actionUpdate workflow.Action = "update"
)

// HandoverService 交接记录服务接口
type HandoverService interface {
	CreateHandover(ctx context.Context, req *CreateHandoverRequest) (*HandoverDetail, error)
	UpdateHandover(ctx context.Context, id string, req *UpdateHandoverRequest) (*HandoverDetail, error)
	GetHandover(ctx context.Context, id string) (*HandoverDetail, error)
	GetStatus(ctx context.Context, id string) (*StatusView, error)
	Transition(ctx context.Context, id string, req *TransitionRequest) (*TransitionResult, error)
	ListRecords(ctx context.Context, filter *ListFilter) (*ListResult, error)
	GetApprovalRoute() []workflow.StageDescriptor
	GetHistory(ctx context.Context, id string) ([]*StateHistory, error)
}

// Notifier 迁移提交后的通知出口
type Notifier interface {
	Dispatch(ctx context.Context, intent *workflow.NotificationIntent)
}

// StoreFactory 根据当前连接（或事务）创建记录仓储
type StoreFactory func(db *gorm.DB) repository.HandoverRepository

// HandoverServiceOption 服务选项
type HandoverServiceOption func(*handoverService)

// WithNotifier 指定通知出口
func WithNotifier(n Notifier) HandoverServiceOption {
	return func(s *handoverService) {
		s.notifier = n
	}
}

// WithLogger 指定日志
func WithLogger(logger logrus.FieldLogger) HandoverServiceOption {
	return func(s *handoverService) {
		s.logger = logger
	}
}

// WithStoreFactory 替换仓储实现
func WithStoreFactory(f StoreFactory) HandoverServiceOption {
	return func(s *handoverService) {
		s.newStore = f
	}
}

type handoverService struct {
	db       *gorm.DB
	executor *workflow.Executor
	notifier Notifier
	logger   logrus.FieldLogger
	newStore StoreFactory
}

// NewHandoverService 创建交接记录服务
func NewHandoverService(db *gorm.DB, executor *workflow.Executor, opts ...HandoverServiceOption) HandoverService {
	s := &handoverService{
		db:       db,
		executor: executor,
		logger:   logrus.StandardLogger(),
		newStore: repository.NewHandoverRepository,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHandover 创建草稿状态的交接记录
func (s *handoverService) CreateHandover(ctx context.Context, req *CreateHandoverRequest) (*HandoverDetail, error) {
	actor := resolveActor(ctx, req.ActorID)
	if actor == "" {
		return nil, &workflow.ValidationError{Field: "actor_id", Message: "actor is required"}
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	handover := newHandoverModel(req, actor, now)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.newStore(tx)
		exists, err := store.Exists(ctx, handover.CustomerID)
		if err != nil {
			return err
		}
		if exists {
			return &workflow.ValidationError{Field: "s_customer", Message: fmt.Sprintf("customer %s already exists", handover.CustomerID)}
		}
		if err := store.Create(ctx, handover); err != nil {
			return err
		}
		if err := saveHistory(tx, handover.CustomerID, actionCreate, 0, "", workflow.StatusDraft, "", actor, now); err != nil {
			return err
		}
		return NewAuditLogService(repository.NewAuditLogRepository(tx)).RecordAction(ctx, actor, auditAction(actionCreate), handover.CustomerID, map[string]interface{}{
			"s_name":      handover.Name,
			"s_superior":  handover.SuperiorID,
			"predecessor": actor,
		})
	})
	if err != nil {
		return nil, normalizeError("create handover", err)
	}

	metrics.RecordHandoverCreated()
	s.logger.WithFields(logrus.Fields{
		"handover_id": handover.CustomerID,
		"actor":       actor,
	}).Info("handover created")

	return newDetail(handover), nil
}

// UpdateHandover 编辑描述字段,仅草稿或已驳回的记录可由前任编辑
func (s *handoverService) UpdateHandover(ctx context.Context, id string, req *UpdateHandoverRequest) (*HandoverDetail, error) {
	actor := resolveActor(ctx, req.ActorID)
	if actor == "" {
		return nil, &workflow.ValidationError{Field: "actor_id", Message: "actor is required"}
	}
	columns := req.columns()
	if len(columns) == 0 {
		return nil, &workflow.ValidationError{Message: "no fields to update"}
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	var updated *model.HandoverModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.newStore(tx)
		current, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		status := workflow.DeriveStatus(repository.ToRecord(current))

		if current.PredecessorID != actor {
			return &workflow.DeniedError{Action: actionUpdate, Status: status, Reason: workflow.ReasonWrongActor}
		}
		var guard []string
		switch {
		case status == workflow.StatusDraft:
			guard = []string{workflow.FieldSubmittedAt}
		case status == workflow.StatusRejected:
		case status.IsPending():
			return &workflow.DeniedError{Action: actionUpdate, Status: status, Reason: workflow.ReasonWrongStage}
		default:
			return &workflow.DeniedError{Action: actionUpdate, Status: status, Reason: workflow.ReasonTerminalState}
		}

		if err := store.ConditionalUpdate(ctx, id, guard, columns); err != nil {
			return err
		}

		fields := make([]string, 0, len(columns))
		for col := range columns {
			fields = append(fields, col)
		}
		sort.Strings(fields)
		if err := NewAuditLogService(repository.NewAuditLogRepository(tx)).RecordAction(ctx, actor, auditAction(actionUpdate), id, map[string]interface{}{
			"fields": fields,
			"status": status.String(),
		}); err != nil {
			return err
		}

		updated, err = store.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, normalizeError("update handover", err)
	}
	return newDetail(updated), nil
}

// GetHandover 获取记录详情
func (s *handoverService) GetHandover(ctx context.Context, id string) (*HandoverDetail, error) {
	handover, err := s.newStore(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newDetail(handover), nil
}

// GetStatus 获取状态与审批链视图
func (s *handoverService) GetStatus(ctx context.Context, id string) (*StatusView, error) {
	record, err := s.newStore(s.db).GetByKey(ctx, id)
	if err != nil {
		return nil, err
	}
	status := workflow.DeriveStatus(record)
	return &StatusView{
		HandoverID:    record.CustomerID,
		Label:         record.Label(),
		Status:        status,
		StatusText:    status.Text(),
		PendingStage:  status.PendingStage(),
		PredecessorID: record.PredecessorID,
		SuperiorID:    record.SuperiorID,
		SuccessorID:   record.SuccessorID,
		Chain:         workflow.BuildChainView(record),
	}, nil
}

// Transition 校验并执行状态迁移
// 读取、条件写入、历史与审计在同一事务中,通知在提交后发送
func (s *handoverService) Transition(ctx context.Context, id string, req *TransitionRequest) (*TransitionResult, error) {
	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		metrics.RecordTransition(req.Action, "invalid")
		return nil, err
	}
	actor := resolveActor(ctx, req.ActorID)
	comment, err := utils.TrimAndLimit(req.Comment, maxCommentLength)
	if err != nil {
		metrics.RecordTransition(string(action), "invalid")
		return nil, &workflow.ValidationError{Field: "comment", Message: err.Error()}
	}
	if err := validateTransition(actor, req); err != nil {
		metrics.RecordTransition(string(action), "invalid")
		return nil, err
	}

	var outcome *workflow.Outcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.newStore(tx)
		record, err := store.GetByKey(ctx, id)
		if err != nil {
			return err
		}

		outcome, err = s.executor.Apply(record, workflow.Request{
			Action:        action,
			ActorID:       actor,
			Comment:       comment,
			SuccessorID:   req.SuccessorID,
			SuperiorID:    req.SuperiorID,
			ExpectedStage: req.ExpectedStage,
		})
		if err != nil {
			return err
		}

		if err := store.ConditionalUpdate(ctx, id, outcome.Guard, outcome.Fields); err != nil {
			return err
		}

		now := time.Now()
		if err := saveHistory(tx, id, action, outcome.Decision.Stage, outcome.Previous.String(), outcome.Status, comment, actor, now); err != nil {
			return err
		}
		return NewAuditLogService(repository.NewAuditLogRepository(tx)).RecordAction(ctx, actor, auditAction(action), id, map[string]interface{}{
			"from":              outcome.Previous.String(),
			"to":                outcome.Status.String(),
			"stage":             outcome.Decision.Stage,
			"comment":           comment,
			"successor_id":      req.SuccessorID,
			"identity_verified": outcome.Decision.IdentityVerified,
		})
	})
	metrics.RecordTransition(string(action), transitionResult(err))

	log := s.logger.WithFields(logrus.Fields{
		"handover_id": id,
		"action":      action,
		"actor":       actor,
	})
	if err != nil {
		err = normalizeError("transition handover", err)
		if errors.Is(err, workflow.ErrStorageUnavailable) {
			log.WithError(err).Error("handover transition failed")
		} else {
			log.WithError(err).Info("handover transition rejected")
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"from":  outcome.Previous.String(),
		"to":    outcome.Status.String(),
		"stage": outcome.Decision.Stage,
	}).Info("handover transition applied")

	if s.notifier != nil && outcome.Intent != nil {
		s.notifier.Dispatch(ctx, outcome.Intent)
	}

	return &TransitionResult{
		HandoverID:       id,
		Action:           action,
		PreviousStatus:   outcome.Previous,
		Status:           outcome.Status,
		StatusText:       outcome.Status.Text(),
		Stage:            outcome.Decision.Stage,
		IdentityVerified: outcome.Decision.IdentityVerified,
	}, nil
}

// ListRecords 按派生状态过滤并分页
func (s *handoverService) ListRecords(ctx context.Context, filter *ListFilter) (*ListResult, error) {
	if filter == nil {
		filter = &ListFilter{}
	}
	wf, err := toWorkflowFilter(filter)
	if err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	rs, err := workflow.NewListQueryEngine(s.newStore(s.db)).List(ctx, wf)
	if err != nil {
		return nil, err
	}
	// Collect 会读完并关闭游标,之后才能发起员工查询
	rows, total, err := workflow.Collect(rs, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	names := lookupWorkerNames(s.db, s.logger, rows)
	items := make([]*HandoverSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, newSummary(row, names))
	}

	return &ListResult{
		Items:    items,
		Total:    int64(total),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetApprovalRoute 返回审批链定义
func (s *handoverService) GetApprovalRoute() []workflow.StageDescriptor {
	return workflow.ApprovalChain()
}

// GetHistory 返回状态变更历史
func (s *handoverService) GetHistory(ctx context.Context, id string) ([]*StateHistory, error) {
	exists, err := s.newStore(s.db).Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, id)
	}

	histories, err := repository.NewStateHistoryRepository(s.db.WithContext(ctx)).FindByHandoverID(id)
	if err != nil {
		return nil, workflow.StorageError("find state history", err)
	}

	result := make([]*StateHistory, 0, len(histories))
	for _, h := range histories {
		result = append(result, &StateHistory{
			ID:        h.ID,
			Action:    h.Action,
			Stage:     h.Stage,
			FromState: h.FromState,
			ToState:   h.ToState,
			Comment:   h.Comment,
			Operator:  h.Operator,
			CreatedAt: h.CreatedAt,
		})
	}
	return result, nil
}

// lookupWorkerNames 批量查询前任姓名,查询失败时使用占位名
func lookupWorkerNames(db *gorm.DB, logger logrus.FieldLogger, rows []workflow.Row) map[string]string {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		id := row.Record.PredecessorID
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	names := make(map[string]string, len(ids))
	workers, err := repository.NewWorkerRepository(db).FindByIDs(ids)
	if err != nil {
		logger.WithError(err).Warn("failed to load worker names")
	}
	for _, id := range ids {
		if w, ok := workers[id]; ok && w.UserName != "" {
			names[id] = w.UserName
		} else {
			names[id] = "Worker " + id
		}
	}
	return names
}

func resolveActor(ctx context.Context, explicit string) string {
	if actor := strings.TrimSpace(explicit); actor != "" {
		return actor
	}
	return getUserIDFromContext(ctx)
}

func auditAction(action workflow.Action) string {
	return "handover." + string(action)
}

func saveHistory(tx *gorm.DB, id string, action workflow.Action, stage int, from string, to workflow.StatusCode, comment, actor string, at time.Time) error {
	return repository.NewStateHistoryRepository(tx).Save(&model.StateHistoryModel{
		ID:         uuid.New().String(),
		HandoverID: id,
		Action:     string(action),
		Stage:      stage,
		FromState:  from,
		ToState:    to.String(),
		Comment:    comment,
		Operator:   actor,
		CreatedAt:  at,
	})
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, workflow.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, workflow.ErrActionNotPermitted):
		return "denied"
	case errors.Is(err, workflow.ErrValidation):
		return "invalid"
	case errors.Is(err, workflow.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// normalizeError 事务开启或提交失败时包装为存储错误
func normalizeError(op string, err error) error {
	for _, known := range []error{
		workflow.ErrNotFound,
		workflow.ErrActionNotPermitted,
		workflow.ErrConcurrentModification,
		workflow.ErrValidation,
		workflow.ErrStorageUnavailable,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return workflow.StorageError(op, err)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func toWorkflowFilter(f *ListFilter) (workflow.Filter, error) {
	wf := workflow.Filter{
		PredecessorID:    strings.TrimSpace(f.PredecessorID),
		Keyword:          f.Keyword,
		IncludeCompleted: f.IncludeCompleted,
		SortKey:          workflow.SortKey(strings.ToLower(strings.TrimSpace(f.SortBy))),
		SortDir:          workflow.SortDirection(strings.ToLower(strings.TrimSpace(f.Order))),
	}
	if strings.TrimSpace(f.Status) != "" {
		status, err := workflow.ParseStatusCode(f.Status)
		if err != nil {
			return wf, err
		}
		wf.Status = &status
	}
	return wf, nil
}

func validateCreate(req *CreateHandoverRequest) error {
	if err := utils.ValidateCustomerID(req.CustomerID); err != nil {
		return &workflow.ValidationError{Field: "s_customer", Message: err.Error()}
	}
	if err := utils.ValidateCompanyName(req.Name); err != nil {
		return &workflow.ValidationError{Field: "s_name", Message: err.Error()}
	}
	if req.SuperiorID != "" {
		if err := utils.ValidateWorkerID(req.SuperiorID); err != nil {
			return &workflow.ValidationError{Field: "s_superior", Message: err.Error()}
		}
	}
	if req.AdvisoryFee < 0 || req.AccountClosingFee < 0 || req.OthersFee < 0 {
		return &workflow.ValidationError{Field: "fees", Message: "fees must not be negative"}
	}
	return nil
}

// validateTransition 校验请求中的员工编号,空值交由状态校验处理
func validateTransition(actor string, req *TransitionRequest) error {
	fields := []struct {
		name  string
		value string
	}{
		{"actor_id", actor},
		{"successor_id", req.SuccessorID},
		{"superior_id", req.SuperiorID},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := utils.ValidateWorkerID(f.value); err != nil {
			return &workflow.ValidationError{Field: f.name, Message: err.Error()}
		}
	}
	return nil
}

func validateUpdate(req *UpdateHandoverRequest) error {
	if req.Name != nil {
		if err := utils.ValidateCompanyName(*req.Name); err != nil {
			return &workflow.ValidationError{Field: "s_name", Message: err.Error()}
		}
	}
	if req.SuperiorID != nil && *req.SuperiorID != "" {
		if err := utils.ValidateWorkerID(*req.SuperiorID); err != nil {
			return &workflow.ValidationError{Field: "s_superior", Message: err.Error()}
		}
	}
	for _, fee := range []*int64{req.AdvisoryFee, req.AccountClosingFee, req.OthersFee} {
		if fee != nil && *fee < 0 {
			return &workflow.ValidationError{Field: "fees", Message: "fees must not be negative"}
		}
	}
	return nil
}

func newHandoverModel(req *CreateHandoverRequest, actor string, now time.Time) *model.HandoverModel {
	return &model.HandoverModel{
		CustomerID:        req.CustomerID,
		TaxCodeID:         req.TaxCodeID,
		Name:              strings.TrimSpace(req.Name),
		Address:           req.Address,
		Type:              req.Type,
		DateFrom:          req.DateFrom,
		DateTo:            req.DateTo,
		AdvisoryFee:       req.AdvisoryFee,
		AccountClosingFee: req.AccountClosingFee,
		OthersFee:         req.OthersFee,
		RepName:           req.RepName,
		RepPersonal:       req.RepPersonal,
		RepPartnerName:    req.RepPartnerName,
		RepOthersName:     req.RepOthersName,
		CorpTel:           req.CorpTel,
		CorpFax:           req.CorpFax,
		RepTel:            req.RepTel,
		RepEmail:          req.RepEmail,
		RepContact:        req.RepContact,
		Place:             req.Place,
		PlaceOthers:       req.PlaceOthers,
		AffiliatedCompany: req.AffiliatedCompany,
		HeedingAudit:      req.HeedingAudit,
		LastTaxAuditAt:    req.LastTaxAuditAt,
		TaxAuditMemo:      req.TaxAuditMemo,
		SpecialNotes:      req.SpecialNotes,
		OtherNotes:        req.OtherNotes,
		PredecessorID:     actor,
		SuperiorID:        req.SuperiorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func newDetail(m *model.HandoverModel) *HandoverDetail {
	record := repository.ToRecord(m)
	status := workflow.DeriveStatus(record)
	return &HandoverDetail{
		HandoverModel:     m,
		Status:            status,
		StatusText:        status.Text(),
		TotalCompensation: record.TotalCompensation(),
	}
}

func newSummary(row workflow.Row, names map[string]string) *HandoverSummary {
	r := row.Record
	return &HandoverSummary{
		CustomerID:         r.CustomerID,
		TaxCodeID:          r.TaxCodeID,
		CompanyName:        r.CompanyName,
		RepresentativeName: r.RepresentativeName,
		PredecessorID:      r.PredecessorID,
		PredecessorName:    names[r.PredecessorID],
		SuperiorID:         r.SuperiorID,
		SuccessorID:        r.SuccessorID,
		SubmittedAt:        r.SubmittedAt,
		TotalCompensation:  r.TotalCompensation(),
		Status:             row.Status,
		StatusText:         row.Status.Text(),
	}
}
