package workflow

import (
	"fmt"
	"strings"
)

// Action 工作流操作
type Action string

const (
	ActionSubmit          Action = "submit"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionAssignSuccessor Action = "assign_successor"
)

// ParseAction 解析操作名称
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionSubmit, ActionApprove, ActionReject, ActionAssignSuccessor:
		return a, nil
	}
	return "", &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", s)}
}

// DenyReason 拒绝原因
type DenyReason string

const (
	ReasonNone          DenyReason = ""
	ReasonWrongStage    DenyReason = "wrong-stage"
	ReasonWrongActor    DenyReason = "wrong-actor"
	ReasonTerminalState DenyReason = "terminal-state"
	ReasonNotSubmitted  DenyReason = "not-submitted"
)

// Request 一次状态迁移请求
type Request struct {
	Action      Action
	ActorID     string
	Comment     string
	SuccessorID string
	// SuperiorID 仅用于 submit,为空时使用记录中已保存的上级
	SuperiorID string
	// ExpectedStage 调用方认为当前待审批的阶段,0 表示不检查
	ExpectedStage int
}

// Decision 校验结果
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Status  StatusCode
	// Stage 本次操作作用的阶段,与审批阶段无关的操作为 0
	Stage int
	// IdentityVerified 操作人身份是否能根据记录字段核实
	// 第 2~7 阶段没有指定审批人字段,始终为 false
	IdentityVerified bool
}

func allow(status StatusCode, stage int, verified bool) Decision {
	return Decision{Allowed: true, Status: status, Stage: stage, IdentityVerified: verified}
}

func deny(status StatusCode, stage int, reason DenyReason) Decision {
	return Decision{Allowed: false, Status: status, Stage: stage, Reason: reason}
}

// Validator 状态迁移校验器
type Validator struct {
	// AllowSelfSuccessor 允许继任者与前任相同
	AllowSelfSuccessor bool
}

// Authorize 判断操作是否允许
// 输入缺失返回 *ValidationError；状态或操作人不符返回 Allowed=false 的 Decision
func (v Validator) Authorize(r *Record, req Request) (Decision, error) {
	if strings.TrimSpace(req.ActorID) == "" {
		return Decision{}, &ValidationError{Field: "actor_id", Message: "actor id is required"}
	}
	if req.ExpectedStage < 0 || req.ExpectedStage > StageCount {
		return Decision{}, &ValidationError{Field: "stage", Message: fmt.Sprintf("stage must be between 1 and %d", StageCount)}
	}

	status := DeriveStatus(r)
	switch req.Action {
	case ActionSubmit:
		return v.authorizeSubmit(r, req, status)
	case ActionApprove:
		return v.authorizeApprove(r, req, status), nil
	case ActionReject:
		return v.authorizeReject(r, req, status), nil
	case ActionAssignSuccessor:
		return v.authorizeAssign(r, req, status)
	}
	return Decision{}, &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", req.Action)}
}

func (v Validator) authorizeSubmit(r *Record, req Request, status StatusCode) (Decision, error) {
	switch {
	case status.IsTerminal():
		return deny(status, 0, ReasonTerminalState), nil
	case status != StatusDraft:
		return deny(status, 0, ReasonWrongStage), nil
	}
	if r.PredecessorID != "" && r.PredecessorID != req.ActorID {
		return deny(status, 0, ReasonWrongActor), nil
	}
	if req.SuperiorID == "" && r.SuperiorID == "" {
		return Decision{}, &ValidationError{Field: "superior_id", Message: "a department head is required before submission"}
	}
	return allow(status, 0, r.PredecessorID != ""), nil
}

func (v Validator) authorizeApprove(r *Record, req Request, status StatusCode) Decision {
	if !status.IsPending() {
		if status == StatusDraft {
			return deny(status, 0, ReasonNotSubmitted)
		}
		return deny(status, 0, ReasonTerminalState)
	}

	stage := status.PendingStage()
	if req.ExpectedStage != 0 && req.ExpectedStage != stage {
		return deny(status, stage, ReasonWrongStage)
	}
	// 阶段必须按顺序填写,前面有空槽说明数据不一致
	for level := 1; level < stage; level++ {
		if !r.Slot(level).Filled() {
			return deny(status, stage, ReasonWrongStage)
		}
	}

	if stage == 1 {
		if r.SuperiorID == "" || r.SuperiorID != req.ActorID {
			return deny(status, stage, ReasonWrongActor)
		}
		return allow(status, stage, true)
	}
	return allow(status, stage, false)
}

func (v Validator) authorizeReject(r *Record, req Request, status StatusCode) Decision {
	if !status.IsPending() {
		if status == StatusDraft {
			return deny(status, 0, ReasonNotSubmitted)
		}
		return deny(status, 0, ReasonTerminalState)
	}

	stage := status.PendingStage()
	if req.ExpectedStage != 0 && req.ExpectedStage != stage {
		return deny(status, stage, ReasonWrongStage)
	}
	if stage == 1 {
		if r.SuperiorID == "" || r.SuperiorID != req.ActorID {
			return deny(status, stage, ReasonWrongActor)
		}
		return allow(status, stage, true)
	}
	return allow(status, stage, false)
}

func (v Validator) authorizeAssign(r *Record, req Request, status StatusCode) (Decision, error) {
	switch status {
	case StatusCompleted:
	case StatusRejected, StatusHandedOver:
		return deny(status, 0, ReasonTerminalState), nil
	default:
		return deny(status, 0, ReasonWrongStage), nil
	}

	successor := strings.TrimSpace(req.SuccessorID)
	if successor == "" {
		return Decision{}, &ValidationError{Field: "successor_id", Message: "successor id is required"}
	}
	if !v.AllowSelfSuccessor && successor == r.PredecessorID {
		return Decision{}, &ValidationError{Field: "successor_id", Message: "successor must differ from predecessor"}
	}
	return allow(status, 0, false), nil
}
