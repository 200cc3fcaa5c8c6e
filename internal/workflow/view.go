package workflow

import "time"

// StageState 审批链视图中的阶段状态
type StageState string

const (
	StageApproved      StageState = "approved"
	StagePending       StageState = "pending"
	StageNotApplicable StageState = "n/a"
)

// ChainEntry 审批链视图中的一项
type ChainEntry struct {
	Level     int        `json:"level"`
	Role      string     `json:"role"`
	State     StageState `json:"state"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

// BuildChainView 生成七个阶段的展示视图
func BuildChainView(r *Record) []ChainEntry {
	status := DeriveStatus(r)
	pending := status.PendingStage()

	entries := make([]ChainEntry, 0, StageCount)
	for _, stage := range approvalChain {
		slot := r.Stages[stage.Level-1]
		entry := ChainEntry{Level: stage.Level, Role: stage.Role, State: StageNotApplicable}
		switch {
		case slot.Filled():
			entry.State = StageApproved
			entry.Timestamp = cloneTime(slot.ApprovedAt)
		case stage.Level == pending:
			entry.State = StagePending
		}
		if slot.Comment != nil {
			entry.Comment = *slot.Comment
		}
		entries = append(entries, entry)
	}
	return entries
}
