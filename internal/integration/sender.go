package integration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Sender 通知发送器
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// WebhookSender 通过 Webhook 推送通知
type WebhookSender struct {
	client *resty.Client
	url    string
}

// NewWebhookSender 创建 Webhook 发送器
func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &WebhookSender{client: client, url: url}
}

// Send 推送通知,4xx 响应不重试
func (s *WebhookSender) Send(ctx context.Context, msg *Message) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}

	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}
	err = fmt.Errorf("webhook returned status code: %d", code)
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}

// LogSender 未配置 Webhook 时只写日志
type LogSender struct {
	logger logrus.FieldLogger
}

// NewLogSender 创建日志发送器
func NewLogSender(logger logrus.FieldLogger) *LogSender {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogSender{logger: logger}
}

// Send 记录通知内容
func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	s.logger.WithFields(logrus.Fields{
		"notification_id": msg.NotificationID,
		"handover_id":     msg.HandoverID,
		"action":          msg.Action,
		"to":              msg.To,
		"cc":              msg.CC,
	}).Info(msg.Subject)
	return nil
}
