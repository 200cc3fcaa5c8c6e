package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 5, 20, 14, 30, 0, 0, time.UTC)

func newExecutor() *workflow.Executor {
	return workflow.NewExecutor(workflow.Validator{}, workflow.WithClock(func() time.Time { return fixedNow }))
}

func requireDenied(t *testing.T, err error, reason workflow.DenyReason) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrActionNotPermitted)
	var denied *workflow.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, reason, denied.Reason)
}

// TestExecutor_Submit 测试提交草稿
func TestExecutor_Submit(t *testing.T) {
	r := &workflow.Record{CustomerID: "C000001", PredecessorID: "W001"}

	out, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionSubmit, ActorID: "W001", SuperiorID: "W010"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, out.Previous)
	assert.Equal(t, workflow.StatusPending1, out.Status)
	assert.Equal(t, fixedNow, out.Fields[workflow.FieldSubmittedAt])
	assert.Equal(t, "W010", out.Fields[workflow.FieldSuperior])
	assert.ElementsMatch(t, []string{workflow.FieldSubmittedAt, workflow.FieldRejectedAt}, out.Guard)

	require.NotNil(t, out.Intent)
	assert.Equal(t, "W010", out.Intent.RecipientID)
	assert.Equal(t, workflow.RoleDepartmentHead, out.Intent.RecipientRole)
	assert.Empty(t, out.Intent.RecipientDisplayName)
	assert.Equal(t, workflow.StatusPending1.Text(), out.Intent.NewStatusText)

	// 原记录不被修改
	assert.Nil(t, r.SubmittedAt)
	assert.Empty(t, r.SuperiorID)
}

// TestExecutor_SubmitRequiresSuperior 测试缺少上级时提交失败
func TestExecutor_SubmitRequiresSuperior(t *testing.T) {
	r := &workflow.Record{CustomerID: "C000001", PredecessorID: "W001"}
	_, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionSubmit, ActorID: "W001"})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestExecutor_SubmitWrongActor 测试非前任提交
func TestExecutor_SubmitWrongActor(t *testing.T) {
	r := &workflow.Record{CustomerID: "C000001", PredecessorID: "W001", SuperiorID: "W010"}
	_, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionSubmit, ActorID: "W002"})
	requireDenied(t, err, workflow.ReasonWrongActor)
}

// TestExecutor_ApproveStage1 测试部门负责人审批
func TestExecutor_ApproveStage1(t *testing.T) {
	r := approvedThrough(0)

	out, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionApprove, ActorID: "W010", Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending2, out.Status)
	assert.True(t, out.Decision.IdentityVerified)
	assert.Equal(t, fixedNow, out.Fields["dt_approved"])
	assert.Equal(t, "ok", out.Fields["s_approved"])

	// 下一阶段只有角色,没有收件人
	require.NotNil(t, out.Intent)
	assert.False(t, out.Intent.Resolved())
	assert.Equal(t, workflow.RoleDivisionHead, out.Intent.Recipient())
	assert.Equal(t, workflow.RoleDivisionHead, out.Intent.RecipientDisplayName)
}

// TestExecutor_ApproveStage1WrongActor 测试非上级审批第一阶段
func TestExecutor_ApproveStage1WrongActor(t *testing.T) {
	_, err := newExecutor().Apply(approvedThrough(0), workflow.Request{Action: workflow.ActionApprove, ActorID: "W001"})
	requireDenied(t, err, workflow.ReasonWrongActor)
}

// TestExecutor_ApprovePending3 测试 PENDING_3 审批只修改第三阶段
func TestExecutor_ApprovePending3(t *testing.T) {
	r := approvedThrough(2)
	require.Equal(t, workflow.StatusPending3, workflow.DeriveStatus(r))

	out, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionApprove, ActorID: "W020", Comment: "director ok"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending4, out.Status)
	assert.False(t, out.Decision.IdentityVerified)
	assert.Len(t, out.Fields, 2)
	assert.Contains(t, out.Fields, "dt_approved_2")
	assert.Contains(t, out.Fields, "s_approved_2")
	assert.Contains(t, out.Guard, "dt_approved_2")

	for i := 0; i < workflow.StageCount; i++ {
		if i == 2 {
			continue
		}
		assert.Equal(t, r.Stages[i].ApprovedAt, out.Record.Stages[i].ApprovedAt, "stage %d", i+1)
		assert.Equal(t, r.Stages[i].Comment, out.Record.Stages[i].Comment, "stage %d", i+1)
	}
	assert.Equal(t, fixedNow, *out.Record.Stages[2].ApprovedAt)
	assert.Equal(t, "director ok", *out.Record.Stages[2].Comment)
}

// TestExecutor_ApproveExpectedStage 测试指定阶段与当前阶段不一致
func TestExecutor_ApproveExpectedStage(t *testing.T) {
	_, err := newExecutor().Apply(approvedThrough(2), workflow.Request{Action: workflow.ActionApprove, ActorID: "W020", ExpectedStage: 4})
	requireDenied(t, err, workflow.ReasonWrongStage)

	out, err := newExecutor().Apply(approvedThrough(2), workflow.Request{Action: workflow.ActionApprove, ActorID: "W020", ExpectedStage: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Decision.Stage)
}

// TestExecutor_ApproveSkippedStage 测试前序阶段为空时拒绝
func TestExecutor_ApproveSkippedStage(t *testing.T) {
	r := approvedThrough(0)
	r.Stages[2].ApprovedAt = ts()
	_, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionApprove, ActorID: "W020"})
	requireDenied(t, err, workflow.ReasonWrongStage)
}

// TestExecutor_ApproveFinalStage 测试总务确认后完成并通知前任
func TestExecutor_ApproveFinalStage(t *testing.T) {
	out, err := newExecutor().Apply(approvedThrough(6), workflow.Request{Action: workflow.ActionApprove, ActorID: "W070"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, out.Status)
	assert.Contains(t, out.Fields, "dt_checked")
	assert.Nil(t, out.Fields["s_checked"])
	require.NotNil(t, out.Intent)
	assert.Equal(t, "W001", out.Intent.RecipientID)
	assert.Equal(t, workflow.RolePredecessor, out.Intent.RecipientRole)
}

// TestExecutor_ApproveDraftAndTerminal 测试草稿和终态不能审批
func TestExecutor_ApproveDraftAndTerminal(t *testing.T) {
	draft := &workflow.Record{CustomerID: "C000001", SuperiorID: "W010"}
	_, err := newExecutor().Apply(draft, workflow.Request{Action: workflow.ActionApprove, ActorID: "W010"})
	requireDenied(t, err, workflow.ReasonNotSubmitted)

	_, err = newExecutor().Apply(approvedThrough(7), workflow.Request{Action: workflow.ActionApprove, ActorID: "W010"})
	requireDenied(t, err, workflow.ReasonTerminalState)
}

// TestExecutor_Reject 测试驳回写入当前阶段意见
func TestExecutor_Reject(t *testing.T) {
	r := approvedThrough(3)
	out, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionReject, ActorID: "W030", Comment: "fees missing"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, out.Status)
	assert.Equal(t, fixedNow, out.Fields[workflow.FieldRejectedAt])
	assert.Equal(t, "fees missing", out.Fields["s_approved_3"])
	assert.ElementsMatch(t, []string{workflow.FieldRejectedAt, "dt_approved_3"}, out.Guard)
	assert.Nil(t, out.Record.Stages[3].ApprovedAt)

	require.NotNil(t, out.Intent)
	assert.Equal(t, "W001", out.Intent.RecipientID)
	assert.Equal(t, "fees missing", out.Intent.Comment)
	assert.Equal(t, "Rejected", out.Intent.NewStatusText)
}

// TestExecutor_RejectAppendsComment 测试驳回意见追加到已有意见
func TestExecutor_RejectAppendsComment(t *testing.T) {
	r := approvedThrough(3)
	existing := "draft note"
	r.Stages[3].Comment = &existing

	out, err := newExecutor().Apply(r, workflow.Request{Action: workflow.ActionReject, ActorID: "W030", Comment: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "draft note\nrejected", out.Fields["s_approved_3"])
}

// TestExecutor_RejectTwice 测试重复驳回返回不允许
func TestExecutor_RejectTwice(t *testing.T) {
	exec := newExecutor()
	out, err := exec.Apply(approvedThrough(2), workflow.Request{Action: workflow.ActionReject, ActorID: "W020"})
	require.NoError(t, err)

	_, err = exec.Apply(out.Record, workflow.Request{Action: workflow.ActionReject, ActorID: "W020"})
	requireDenied(t, err, workflow.ReasonTerminalState)
}

// TestExecutor_RejectDraft 测试草稿不能驳回
func TestExecutor_RejectDraft(t *testing.T) {
	_, err := newExecutor().Apply(&workflow.Record{CustomerID: "C000001"}, workflow.Request{Action: workflow.ActionReject, ActorID: "W010"})
	requireDenied(t, err, workflow.ReasonNotSubmitted)
}

// TestExecutor_AssignSuccessor 测试完成后指定继任者
func TestExecutor_AssignSuccessor(t *testing.T) {
	out, err := newExecutor().Apply(approvedThrough(7), workflow.Request{Action: workflow.ActionAssignSuccessor, ActorID: "W070", SuccessorID: "W099"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusHandedOver, out.Status)
	assert.Equal(t, "W099", out.Fields[workflow.FieldSuccessor])
	require.NotNil(t, out.Intent)
	assert.Equal(t, "W099", out.Intent.RecipientID)
	assert.Equal(t, "W001", out.Intent.CarbonCopyID)
	assert.Empty(t, out.Intent.RecipientDisplayName)
}

// TestExecutor_AssignSuccessorBeforeCompleted 测试未完成时不能指定继任者
func TestExecutor_AssignSuccessorBeforeCompleted(t *testing.T) {
	for n := 0; n < workflow.StageCount; n++ {
		_, err := newExecutor().Apply(approvedThrough(n), workflow.Request{Action: workflow.ActionAssignSuccessor, ActorID: "W070", SuccessorID: "W099"})
		requireDenied(t, err, workflow.ReasonWrongStage)
	}

	handed := approvedThrough(7)
	handed.SuccessorID = "W098"
	_, err := newExecutor().Apply(handed, workflow.Request{Action: workflow.ActionAssignSuccessor, ActorID: "W070", SuccessorID: "W099"})
	requireDenied(t, err, workflow.ReasonTerminalState)
}

// TestExecutor_AssignSuccessorValidation 测试继任者校验
func TestExecutor_AssignSuccessorValidation(t *testing.T) {
	_, err := newExecutor().Apply(approvedThrough(7), workflow.Request{Action: workflow.ActionAssignSuccessor, ActorID: "W070"})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = newExecutor().Apply(approvedThrough(7), workflow.Request{Action: workflow.ActionAssignSuccessor, ActorID: "W070", SuccessorID: "W001"})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	permissive := workflow.NewExecutor(workflow.Validator{AllowSelfSuccessor: true})
	out, err := permissive.Apply(approvedThrough(7), workflow.Request{Action: workflow.ActionAssignSuccessor, ActorID: "W070", SuccessorID: "W001"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusHandedOver, out.Status)
}

// TestExecutor_MissingActor 测试缺少操作人
func TestExecutor_MissingActor(t *testing.T) {
	_, err := newExecutor().Apply(approvedThrough(1), workflow.Request{Action: workflow.ActionApprove})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestParseAction 测试操作名称解析
func TestParseAction(t *testing.T) {
	action, err := workflow.ParseAction("Assign_Successor")
	require.NoError(t, err)
	assert.Equal(t, workflow.ActionAssignSuccessor, action)

	_, err = workflow.ParseAction("delete")
	assert.ErrorIs(t, err, workflow.ErrValidation)
}
