package workflow

// NotificationIntent 描述"通知谁、通知什么",不负责投递
// 第 2~7 阶段只知道角色,RecipientID 为空,由调用方解析收件人
// RecipientDisplayName 仅在只有角色时填写角色名,已知 ID 时由投递方查询姓名
type NotificationIntent struct {
	Action               Action     `json:"action"`
	RecordID             string     `json:"record_id"`
	RecordLabel          string     `json:"record_label"`
	RecipientRole        string     `json:"recipient_role"`
	RecipientID          string     `json:"recipient_id,omitempty"`
	RecipientDisplayName string     `json:"recipient_display_name,omitempty"`
	CarbonCopyID         string     `json:"cc_id,omitempty"`
	NewStatus            StatusCode `json:"new_status"`
	NewStatusText        string     `json:"new_status_text"`
	Comment              string     `json:"comment,omitempty"`
}

// Recipient 返回收件人 ID,未知时返回角色名
func (n NotificationIntent) Recipient() string {
	if n.RecipientID != "" {
		return n.RecipientID
	}
	return n.RecipientRole
}

// Resolved 收件人是否能从记录字段确定
func (n NotificationIntent) Resolved() bool {
	return n.RecipientID != ""
}

func newIntent(r *Record, action Action, status StatusCode, comment string) *NotificationIntent {
	return &NotificationIntent{
		Action:        action,
		RecordID:      r.CustomerID,
		RecordLabel:   r.Label(),
		NewStatus:     status,
		NewStatusText: status.Text(),
		Comment:       comment,
	}
}

func (n *NotificationIntent) toActor(role, id string) *NotificationIntent {
	n.RecipientRole = role
	n.RecipientID = id
	return n
}

func (n *NotificationIntent) toRole(role string) *NotificationIntent {
	n.RecipientRole = role
	n.RecipientDisplayName = role
	return n
}
