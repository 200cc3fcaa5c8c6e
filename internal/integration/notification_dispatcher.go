package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/config"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/metrics"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// workerCacheTTL 员工信息缓存时间
const workerCacheTTL = 5 * time.Minute

// Dispatcher 通知分发器
// Dispatch 在事务提交后调用,不向调用方返回投递错误
type Dispatcher interface {
	Dispatch(ctx context.Context, intent *workflow.NotificationIntent)
	ResumePending(ctx context.Context) (int, error)
	Stop()
}

type job struct {
	notification *model.NotificationModel
	intent       *workflow.NotificationIntent
}

// notificationDispatcher 基于数据库的通知分发器
type notificationDispatcher struct {
	notificationRepo repository.NotificationRepository
	workerRepo       repository.WorkerRepository
	sender           Sender
	cfg              config.NotificationConfig
	logger           logrus.FieldLogger
	newBackOff       func() backoff.BackOff
	queue            chan *job
	stop             chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
}

// DispatcherOption 分发器选项
type DispatcherOption func(*notificationDispatcher)

// WithSender 指定发送器
func WithSender(sender Sender) DispatcherOption {
	return func(d *notificationDispatcher) {
		d.sender = sender
	}
}

// WithBackOff 指定重试退避策略
func WithBackOff(newBackOff func() backoff.BackOff) DispatcherOption {
	return func(d *notificationDispatcher) {
		d.newBackOff = newBackOff
	}
}

// NewNotificationDispatcher 创建通知分发器并启动 worker
func NewNotificationDispatcher(db *gorm.DB, cfg config.NotificationConfig, logger logrus.FieldLogger, opts ...DispatcherOption) Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	d := &notificationDispatcher{
		notificationRepo: repository.NewNotificationRepository(db),
		workerRepo:       repository.NewCachedWorkerRepository(repository.NewWorkerRepository(db), workerCacheTTL),
		cfg:              cfg,
		logger:           logger.WithField("component", "notification"),
		queue:            make(chan *job, cfg.QueueSize),
		stop:             make(chan struct{}),
	}
	d.newBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = time.Second
		return bo
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sender == nil {
		if cfg.WebhookURL != "" {
			d.sender = NewWebhookSender(cfg.WebhookURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
		} else {
			d.sender = NewLogSender(d.logger)
		}
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch 持久化通知并异步投递
func (d *notificationDispatcher) Dispatch(ctx context.Context, intent *workflow.NotificationIntent) {
	if intent == nil {
		return
	}

	payload, err := json.Marshal(intent)
	if err != nil {
		d.logger.WithError(err).Error("failed to marshal notification intent")
		return
	}

	now := time.Now()
	n := &model.NotificationModel{
		ID:            uuid.New().String(),
		HandoverID:    intent.RecordID,
		Action:        string(intent.Action),
		Recipient:     intent.Recipient(),
		RecipientRole: intent.RecipientRole,
		Subject:       FormatSubject(intent),
		Payload:       string(payload),
		Status:        model.NotificationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := d.notificationRepo.Save(n); err != nil {
		d.logger.WithError(err).WithField("handover_id", intent.RecordID).Error("failed to save notification")
		return
	}

	d.enqueue(&job{notification: n, intent: intent})
}

// ResumePending 重新投递上次未完成的通知
func (d *notificationDispatcher) ResumePending(ctx context.Context) (int, error) {
	pending, err := d.notificationRepo.FindPending()
	if err != nil {
		return 0, fmt.Errorf("failed to load pending notifications: %w", err)
	}

	count := 0
	for _, n := range pending {
		var intent workflow.NotificationIntent
		if err := json.Unmarshal([]byte(n.Payload), &intent); err != nil {
			d.logger.WithError(err).WithField("notification_id", n.ID).Warn("discarding unreadable notification payload")
			_ = d.notificationRepo.UpdateStatus(n.ID, model.NotificationFailed, n.RetryCount, err.Error())
			continue
		}
		if d.enqueue(&job{notification: n, intent: &intent}) {
			count++
		}
	}
	return count, nil
}

func (d *notificationDispatcher) enqueue(j *job) bool {
	select {
	case <-d.stop:
		return false
	default:
	}

	select {
	case d.queue <- j:
		return true
	default:
		// 队列满时保留 pending 状态,下次启动时重新投递
		d.logger.WithFields(logrus.Fields{
			"notification_id": j.notification.ID,
			"handover_id":     j.notification.HandoverID,
		}).Warn("notification queue full, delivery deferred")
		return false
	}
}

func (d *notificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case j := <-d.queue:
			d.deliver(j)
		case <-d.stop:
			return
		}
	}
}

func (d *notificationDispatcher) deliver(j *job) {
	msg := d.buildMessage(j)
	log := d.logger.WithFields(logrus.Fields{
		"notification_id": msg.NotificationID,
		"handover_id":     msg.HandoverID,
		"to":              msg.To,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-d.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	attempts := 0
	operation := func() error {
		attempts++
		return d.sender.Send(ctx, msg)
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), uint64(d.cfg.MaxRetries)), ctx)
	err := backoff.Retry(operation, bo)

	retries := attempts - 1
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		log.WithError(err).WithField("attempts", attempts).Error("notification delivery failed")
		metrics.RecordNotification(model.NotificationFailed)
		if uerr := d.notificationRepo.UpdateStatus(msg.NotificationID, model.NotificationFailed, retries, err.Error()); uerr != nil {
			log.WithError(uerr).Error("failed to update notification status")
		}
		return
	}

	log.WithField("attempts", attempts).Debug("notification delivered")
	metrics.RecordNotification(model.NotificationSuccess)
	if uerr := d.notificationRepo.UpdateStatus(msg.NotificationID, model.NotificationSuccess, retries, ""); uerr != nil {
		log.WithError(uerr).Error("failed to update notification status")
	}
}

// buildMessage 解析收件人并生成消息
// 只知道角色时发送给配置的兜底收件人
func (d *notificationDispatcher) buildMessage(j *job) *Message {
	intent := j.intent
	msg := &Message{
		NotificationID: j.notification.ID,
		HandoverID:     intent.RecordID,
		Action:         string(intent.Action),
		From:           d.cfg.FromName,
		Subject:        FormatSubject(intent),
		Intent:         intent,
	}

	if intent.Resolved() {
		msg.To = intent.RecipientID
		msg.ToName, msg.ToEmail = d.lookup(intent.RecipientID)
	} else {
		d.logger.WithFields(logrus.Fields{
			"handover_id": intent.RecordID,
			"role":        intent.RecipientRole,
			"fallback":    d.cfg.FallbackID,
		}).Warn("recipient unknown for role, using fallback recipient")
		msg.To = d.cfg.FallbackID
		msg.ToName = d.cfg.FallbackName
		if _, email := d.lookup(d.cfg.FallbackID); email != "" {
			msg.ToEmail = email
		}
	}

	if intent.CarbonCopyID != "" {
		msg.CC = intent.CarbonCopyID
		_, msg.CCEmail = d.lookup(intent.CarbonCopyID)
	}

	msg.Body = FormatBody(msg.ToName, intent)
	return msg
}

// lookup 查询员工姓名与邮箱,不存在时使用占位名
func (d *notificationDispatcher) lookup(id string) (string, string) {
	if id == "" {
		return "", ""
	}
	worker, err := d.workerRepo.FindByID(id)
	if err != nil {
		if !errors.Is(err, repository.ErrWorkerNotFound) {
			d.logger.WithError(err).WithField("worker_id", id).Warn("failed to look up worker")
		}
		return WorkerDisplayName(id), ""
	}
	return worker.UserName, worker.Email
}

// WorkerDisplayName 未知员工的显示名
func WorkerDisplayName(id string) string {
	return "Worker " + id
}

// Stop 停止分发器,未投递的通知保持 pending
func (d *notificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
	d.wg.Wait()
}
