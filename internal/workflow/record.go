package workflow

import "time"

// StageSlot 单个审批阶段的时间戳与意见
type StageSlot struct {
	ApprovedAt *time.Time
	Comment    *string
}

// Filled 阶段是否已审批
func (s StageSlot) Filled() bool {
	return s.ApprovedAt != nil
}

// Record 交接记录中工作流相关的字段
// 描述性字段对引擎不透明,只保留列表摘要需要的部分
type Record struct {
	CustomerID         string
	TaxCodeID          string
	CompanyName        string
	RepresentativeName string
	Address            string
	SpecialNotes       string
	OtherNotes         string
	AdvisoryFee        int64
	AccountClosingFee  int64
	OthersFee          int64

	PredecessorID string
	SuperiorID    string
	SuccessorID   string

	SubmittedAt *time.Time
	RejectedAt  *time.Time
	Stages      [StageCount]StageSlot
}

// Clone 深拷贝记录
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.SubmittedAt = cloneTime(r.SubmittedAt)
	c.RejectedAt = cloneTime(r.RejectedAt)
	for i := range r.Stages {
		c.Stages[i] = StageSlot{
			ApprovedAt: cloneTime(r.Stages[i].ApprovedAt),
			Comment:    cloneString(r.Stages[i].Comment),
		}
	}
	return &c
}

// Slot 返回指定级别的阶段槽位
func (r *Record) Slot(level int) StageSlot {
	if level < 1 || level > StageCount {
		return StageSlot{}
	}
	return r.Stages[level-1]
}

// Label 通知中使用的记录标识
func (r *Record) Label() string {
	if r.CompanyName == "" {
		return r.CustomerID
	}
	return r.CustomerID + " " + r.CompanyName
}

// TotalCompensation 顾问费 + 决算费 + 其他费用
func (r *Record) TotalCompensation() int64 {
	return r.AdvisoryFee + r.AccountClosingFee + r.OthersFee
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
