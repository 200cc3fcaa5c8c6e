package workflow

import (
	"strings"
	"time"
)

// Outcome 执行结果
// Fields 为需要写入的列,Guard 为写入时必须仍为 NULL 的列
type Outcome struct {
	Record   *Record
	Previous StatusCode
	Status   StatusCode
	Decision Decision
	Fields   map[string]interface{}
	Guard    []string
	Intent   *NotificationIntent
}

// Executor 应用已校验的状态迁移,不做持久化也不发送通知
type Executor struct {
	validator Validator
	now       func() time.Time
}

// ExecutorOption 执行器选项
type ExecutorOption func(*Executor)

// WithClock 指定时间来源
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		e.now = now
	}
}

// NewExecutor 创建执行器
func NewExecutor(v Validator, opts ...ExecutorOption) *Executor {
	e := &Executor{validator: v, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validator 返回执行器使用的校验器
func (e *Executor) Validator() Validator {
	return e.validator
}

// Apply 校验并应用操作,返回修改后的记录副本
func (e *Executor) Apply(r *Record, req Request) (*Outcome, error) {
	if r == nil {
		return nil, ErrNotFound
	}
	decision, err := e.validator.Authorize(r, req)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &DeniedError{Action: req.Action, Status: decision.Status, Reason: decision.Reason}
	}

	now := e.now()
	out := &Outcome{
		Record:   r.Clone(),
		Previous: decision.Status,
		Decision: decision,
		Fields:   make(map[string]interface{}),
	}

	switch req.Action {
	case ActionSubmit:
		e.applySubmit(out, req, now)
	case ActionApprove:
		e.applyApprove(out, req, now)
	case ActionReject:
		e.applyReject(out, req, now)
	case ActionAssignSuccessor:
		e.applyAssign(out, req)
	}

	out.Status = DeriveStatus(out.Record)
	if out.Intent != nil {
		out.Intent.NewStatus = out.Status
		out.Intent.NewStatusText = out.Status.Text()
	}
	return out, nil
}

func (e *Executor) applySubmit(out *Outcome, req Request, now time.Time) {
	rec := out.Record
	rec.SubmittedAt = &now
	out.Fields[FieldSubmittedAt] = now
	if req.SuperiorID != "" {
		rec.SuperiorID = req.SuperiorID
		out.Fields[FieldSuperior] = req.SuperiorID
	}
	out.Guard = []string{FieldSubmittedAt, FieldRejectedAt}

	first, _ := Stage(1)
	out.Intent = newIntent(rec, ActionSubmit, StatusPending1, req.Comment).toActor(first.Role, rec.SuperiorID)
}

func (e *Executor) applyApprove(out *Outcome, req Request, now time.Time) {
	rec := out.Record
	stage, _ := Stage(out.Decision.Stage)

	slot := &rec.Stages[stage.Level-1]
	slot.ApprovedAt = &now
	slot.Comment = optionalString(req.Comment)
	out.Fields[stage.TimestampField] = now
	out.Fields[stage.CommentField] = nullable(slot.Comment)
	out.Guard = []string{stage.TimestampField, FieldRejectedAt, FieldSuccessor}

	if stage.Level == StageCount {
		out.Intent = newIntent(rec, ActionApprove, StatusCompleted, req.Comment).toActor(RolePredecessor, rec.PredecessorID)
		return
	}
	next, _ := Stage(stage.Level + 1)
	out.Intent = newIntent(rec, ActionApprove, PendingStatus(next.Level), req.Comment).toRole(next.Role)
}

func (e *Executor) applyReject(out *Outcome, req Request, now time.Time) {
	rec := out.Record
	stage, _ := Stage(out.Decision.Stage)

	rec.RejectedAt = &now
	slot := &rec.Stages[stage.Level-1]
	slot.Comment = appendComment(slot.Comment, req.Comment)
	out.Fields[FieldRejectedAt] = now
	out.Fields[stage.CommentField] = nullable(slot.Comment)
	out.Guard = []string{FieldRejectedAt, stage.TimestampField}

	out.Intent = newIntent(rec, ActionReject, StatusRejected, req.Comment).toActor(RolePredecessor, rec.PredecessorID)
}

func (e *Executor) applyAssign(out *Outcome, req Request) {
	rec := out.Record
	rec.SuccessorID = strings.TrimSpace(req.SuccessorID)
	out.Fields[FieldSuccessor] = rec.SuccessorID
	out.Guard = []string{FieldSuccessor, FieldRejectedAt}

	intent := newIntent(rec, ActionAssignSuccessor, StatusHandedOver, req.Comment).toActor(RoleSuccessor, rec.SuccessorID)
	intent.CarbonCopyID = rec.PredecessorID
	out.Intent = intent
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func appendComment(existing *string, comment string) *string {
	if strings.TrimSpace(comment) == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		return &comment
	}
	joined := *existing + "\n" + comment
	return &joined
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
