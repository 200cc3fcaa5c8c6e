package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatusCode 派生出的交接状态
// 状态从不持久化,每次读取都根据时间戳重新计算
type StatusCode int

const (
	StatusDraft StatusCode = iota
	StatusPending1
	StatusPending2
	StatusPending3
	StatusPending4
	StatusPending5
	StatusPending6
	StatusPending7
	StatusCompleted
	StatusRejected
	StatusHandedOver
)

type statusInfo struct {
	code string
	text string
}

var statusTable = map[StatusCode]statusInfo{
	StatusDraft:      {"DRAFT", "Draft"},
	StatusPending1:   {"PENDING_1", "Waiting for confirmation from department head"},
	StatusPending2:   {"PENDING_2", "Waiting for confirmation from division head"},
	StatusPending3:   {"PENDING_3", "Waiting for confirmation from director"},
	StatusPending4:   {"PENDING_4", "Waiting for confirmation from executive director"},
	StatusPending5:   {"PENDING_5", "Waiting for confirmation from senior managing director"},
	StatusPending6:   {"PENDING_6", "Waiting for confirmation from president"},
	StatusPending7:   {"PENDING_7", "Waiting for confirmation from general affairs"},
	StatusCompleted:  {"COMPLETED", "Confirmation completed"},
	StatusRejected:   {"REJECTED", "Rejected"},
	StatusHandedOver: {"HANDED_OVER", "Handed over to successor"},
}

// AllStatuses 返回全部状态码（按枚举顺序）
func AllStatuses() []StatusCode {
	return []StatusCode{
		StatusDraft,
		StatusPending1, StatusPending2, StatusPending3, StatusPending4,
		StatusPending5, StatusPending6, StatusPending7,
		StatusCompleted, StatusRejected, StatusHandedOver,
	}
}

// String 返回状态码字符串,例如 PENDING_3
func (s StatusCode) String() string {
	if info, ok := statusTable[s]; ok {
		return info.code
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Text 返回状态的显示文本
func (s StatusCode) Text() string {
	if info, ok := statusTable[s]; ok {
		return info.text
	}
	return ""
}

// IsPending 是否处于某个待审批阶段
func (s StatusCode) IsPending() bool {
	return s >= StatusPending1 && s <= StatusPending7
}

// IsTerminal 是否为终态
func (s StatusCode) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusHandedOver
}

// PendingStage 返回待审批的阶段级别,非待审批状态返回 0
func (s StatusCode) PendingStage() int {
	if !s.IsPending() {
		return 0
	}
	return int(s-StatusPending1) + 1
}

// PendingStatus 返回等待指定阶段的状态码
func PendingStatus(level int) StatusCode {
	return StatusPending1 + StatusCode(level-1)
}

// ParseStatusCode 解析状态码字符串（不区分大小写）
func ParseStatusCode(s string) (StatusCode, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for code, info := range statusTable {
		if info.code == want {
			return code, nil
		}
	}
	return StatusDraft, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status code %q", s)}
}

// MarshalJSON 以状态码字符串序列化
func (s StatusCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON 从状态码字符串反序列化
func (s *StatusCode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	code, err := ParseStatusCode(raw)
	if err != nil {
		return err
	}
	*s = code
	return nil
}

// DeriveStatus 根据已填写的字段计算记录状态
// 按优先级依次判断,命中即返回
func DeriveStatus(r *Record) StatusCode {
	if r.RejectedAt != nil {
		return StatusRejected
	}
	if r.SuccessorID != "" {
		return StatusHandedOver
	}
	if r.Stages[StageCount-1].Filled() {
		return StatusCompleted
	}
	for level := StageCount - 1; level >= 1; level-- {
		if r.Stages[level-1].Filled() {
			return PendingStatus(level + 1)
		}
	}
	if r.SubmittedAt != nil {
		return StatusPending1
	}
	return StatusDraft
}
