package integration_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/config"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/integration"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.WorkerModel{}, &model.NotificationModel{}))
	return db
}

// recordingSender 记录发送的消息,前 failures 次返回错误
type recordingSender struct {
	mu       sync.Mutex
	messages []*integration.Message
	failures int
	calls    int
}

func (s *recordingSender) Send(ctx context.Context, msg *integration.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("temporary failure")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) sent() []*integration.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*integration.Message(nil), s.messages...)
}

func testConfig() config.NotificationConfig {
	return config.NotificationConfig{
		Enabled:      true,
		Workers:      1,
		QueueSize:    10,
		MaxRetries:   2,
		FallbackID:   "admin",
		FallbackName: "System Admin",
		FromName:     "Handover System",
	}
}

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

func waitForStatus(t *testing.T, db *gorm.DB, handoverID, status string) *model.NotificationModel {
	t.Helper()
	repo := repository.NewNotificationRepository(db)
	var found *model.NotificationModel
	require.Eventually(t, func() bool {
		list, err := repo.FindByHandoverID(handoverID)
		if err != nil || len(list) == 0 {
			return false
		}
		found = list[0]
		return found.Status == status
	}, 2*time.Second, 10*time.Millisecond)
	return found
}

// TestDispatch_ResolvedRecipient 测试已知收件人的投递
func TestDispatch_ResolvedRecipient(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&model.WorkerModel{WorkerID: "W001", UserName: "Tanaka Taro", Email: "tanaka@example.com"}).Error)
	require.NoError(t, db.Create(&model.WorkerModel{WorkerID: "W002", UserName: "Sato Hanako", Email: "sato@example.com"}).Error)

	sender := &recordingSender{}
	d := integration.NewNotificationDispatcher(db, testConfig(), nil, integration.WithSender(sender), integration.WithBackOff(fastBackOff))
	defer d.Stop()

	d.Dispatch(context.Background(), &workflow.NotificationIntent{
		Action:        workflow.ActionAssignSuccessor,
		RecordID:      "C000001",
		RecordLabel:   "C000001 Acme",
		RecipientRole: workflow.RoleSuccessor,
		RecipientID:   "W002",
		CarbonCopyID:  "W001",
		NewStatus:     workflow.StatusHandedOver,
		NewStatusText: workflow.StatusHandedOver.Text(),
	})

	n := waitForStatus(t, db, "C000001", model.NotificationSuccess)
	assert.Equal(t, "W002", n.Recipient)
	assert.Equal(t, 0, n.RetryCount)

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Sato Hanako", msgs[0].ToName)
	assert.Equal(t, "sato@example.com", msgs[0].ToEmail)
	assert.Equal(t, "tanaka@example.com", msgs[0].CCEmail)
	assert.Equal(t, "Handover System", msgs[0].From)
	assert.Equal(t, "Audit Handover Notification: C000001 Acme - Status: Handed over to successor", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "Dear Sato Hanako")
}

// TestDispatch_RoleOnlyUsesFallback 测试只有角色时使用兜底收件人
func TestDispatch_RoleOnlyUsesFallback(t *testing.T) {
	db := setupTestDB(t)
	sender := &recordingSender{}
	d := integration.NewNotificationDispatcher(db, testConfig(), nil, integration.WithSender(sender), integration.WithBackOff(fastBackOff))
	defer d.Stop()

	d.Dispatch(context.Background(), &workflow.NotificationIntent{
		Action:        workflow.ActionApprove,
		RecordID:      "C000002",
		RecordLabel:   "C000002 Beta",
		RecipientRole: "Director",
		NewStatus:     workflow.StatusPending3,
		NewStatusText: workflow.StatusPending3.Text(),
	})

	n := waitForStatus(t, db, "C000002", model.NotificationSuccess)
	assert.Equal(t, "Director", n.Recipient)

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "admin", msgs[0].To)
	assert.Equal(t, "System Admin", msgs[0].ToName)
}

// TestDispatch_RetryThenSuccess 测试失败重试
func TestDispatch_RetryThenSuccess(t *testing.T) {
	db := setupTestDB(t)
	sender := &recordingSender{failures: 2}
	d := integration.NewNotificationDispatcher(db, testConfig(), nil, integration.WithSender(sender), integration.WithBackOff(fastBackOff))
	defer d.Stop()

	d.Dispatch(context.Background(), &workflow.NotificationIntent{
		Action:        workflow.ActionReject,
		RecordID:      "C000003",
		RecordLabel:   "C000003 Gamma",
		RecipientRole: workflow.RolePredecessor,
		RecipientID:   "W404",
		NewStatus:     workflow.StatusRejected,
		NewStatusText: workflow.StatusRejected.Text(),
		Comment:       "missing fee",
	})

	n := waitForStatus(t, db, "C000003", model.NotificationSuccess)
	assert.Equal(t, 2, n.RetryCount)

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Worker W404", msgs[0].ToName)
	assert.Equal(t, "Audit Handover Notification: C000003 Gamma - Status: Rejected: missing fee", msgs[0].Subject)
}

// TestDispatch_RetriesExhausted 测试重试耗尽后标记失败
func TestDispatch_RetriesExhausted(t *testing.T) {
	db := setupTestDB(t)
	sender := &recordingSender{failures: 100}
	d := integration.NewNotificationDispatcher(db, testConfig(), nil, integration.WithSender(sender), integration.WithBackOff(fastBackOff))
	defer d.Stop()

	d.Dispatch(context.Background(), &workflow.NotificationIntent{
		Action:        workflow.ActionSubmit,
		RecordID:      "C000004",
		RecordLabel:   "C000004 Delta",
		RecipientRole: "Superior",
		RecipientID:   "W010",
		NewStatus:     workflow.StatusPending1,
		NewStatusText: workflow.StatusPending1.Text(),
	})

	n := waitForStatus(t, db, "C000004", model.NotificationFailed)
	assert.Equal(t, 2, n.RetryCount)
	assert.Equal(t, "temporary failure", n.LastError)
}

// TestResumePending 测试重启后重新投递
func TestResumePending(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	require.NoError(t, repository.NewNotificationRepository(db).Save(&model.NotificationModel{
		ID:         "n-1",
		HandoverID: "C000005",
		Action:     "approve",
		Recipient:  "Director",
		Payload:    `{"action":"approve","record_id":"C000005","record_label":"C000005 Echo","recipient_role":"Director","new_status":"PENDING_3","new_status_text":"x"}`,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))

	sender := &recordingSender{}
	d := integration.NewNotificationDispatcher(db, testConfig(), nil, integration.WithSender(sender), integration.WithBackOff(fastBackOff))
	defer d.Stop()

	count, err := d.ResumePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	waitForStatus(t, db, "C000005", model.NotificationSuccess)
}

// TestWebhookSender 测试 Webhook 推送
func TestWebhookSender(t *testing.T) {
	var mu sync.Mutex
	var received int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received++
		mu.Unlock()
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	msg := &integration.Message{NotificationID: "n-1", Subject: "s"}

	ok := integration.NewWebhookSender(server.URL+"/hook", time.Second)
	require.NoError(t, ok.Send(context.Background(), msg))

	bad := integration.NewWebhookSender(server.URL+"/bad", time.Second)
	err := bad.Send(context.Background(), msg)
	require.Error(t, err)
	var permanent *backoff.PermanentError
	assert.True(t, errors.As(err, &permanent))

	mu.Lock()
	assert.Equal(t, 2, received)
	mu.Unlock()
}

// TestFormatSubject 测试标题格式
func TestFormatSubject(t *testing.T) {
	intent := &workflow.NotificationIntent{
		Action:        workflow.ActionApprove,
		RecordLabel:   "C000001 Acme",
		NewStatusText: "Confirmation completed",
		Comment:       "ok",
	}
	assert.Equal(t, "Audit Handover Notification: C000001 Acme - Status: Confirmation completed", integration.FormatSubject(intent))

	intent.Action = workflow.ActionReject
	intent.NewStatusText = "Rejected"
	assert.Equal(t, "Audit Handover Notification: C000001 Acme - Status: Rejected: ok", integration.FormatSubject(intent))
}
