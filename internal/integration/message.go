package integration

import (
	"fmt"
	"strings"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
)

const subjectPrefix = "Audit Handover Notification"

// Message 待投递的通知消息
type Message struct {
	NotificationID string                       `json:"notification_id"`
	HandoverID     string                       `json:"handover_id"`
	Action         string                       `json:"action"`
	From           string                       `json:"from"`
	To             string                       `json:"to"`
	ToName         string                       `json:"to_name"`
	ToEmail        string                       `json:"to_email,omitempty"`
	CC             string                       `json:"cc,omitempty"`
	CCEmail        string                       `json:"cc_email,omitempty"`
	Subject        string                       `json:"subject"`
	Body           string                       `json:"body"`
	Intent         *workflow.NotificationIntent `json:"intent"`
}

// FormatSubject 生成通知标题,驳回时追加意见
func FormatSubject(intent *workflow.NotificationIntent) string {
	subject := fmt.Sprintf("%s: %s - Status: %s", subjectPrefix, intent.RecordLabel, intent.NewStatusText)
	if intent.Action == workflow.ActionReject && strings.TrimSpace(intent.Comment) != "" {
		subject += ": " + intent.Comment
	}
	return subject
}

// FormatBody 生成通知正文
func FormatBody(recipientName string, intent *workflow.NotificationIntent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", recipientName)
	fmt.Fprintf(&b, "Handover: %s\n", intent.RecordLabel)
	fmt.Fprintf(&b, "Status: %s\n", intent.NewStatusText)
	if strings.TrimSpace(intent.Comment) != "" {
		fmt.Fprintf(&b, "Comment: %s\n", intent.Comment)
	}
	return b.String()
}
