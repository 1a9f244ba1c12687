package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/notify"
	"harborview.com/shiftman/utils"
)

// NotificationService manages the client-local notification list. Unlike
// the other entities the backend is not the source of truth here: rows are
// created on-device and only escalations leave it.
type NotificationService struct {
	store *cache.Store
	api   *v1.Client
	sink  notify.Sink
	log   *slog.Logger
	now   func() time.Time
}

// NewNotificationService wires an optional escalation sink; pass nil when
// escalations are not configured.
func NewNotificationService(store *cache.Store, api *v1.Client, sink notify.Sink, log *slog.Logger) *NotificationService {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationService{
		store: store,
		api:   api,
		sink:  sink,
		log:   log,
		now:   time.Now,
	}
}

func (s *NotificationService) Load() []model.Notification {
	return loadCached[model.Notification](s.store, cache.BucketNotifications, s.log)
}

// Add appends a local notification.
func (s *NotificationService) Add(employeeID, title, body, kind string) (*model.Notification, error) {
	n := model.Notification{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Title:      title,
		Body:       body,
		Kind:       kind,
		CreatedAt:  s.now().UTC(),
	}
	if err := cache.PutJSON(s.store, cache.BucketNotifications, n.ID, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAsRead flips the read flag on one notification.
func (s *NotificationService) MarkAsRead(id string) error {
	n, err := cache.GetJSON[model.Notification](s.store, cache.BucketNotifications, id)
	if err != nil || n == nil {
		return fmt.Errorf("notification %s not found", id)
	}
	n.Read = true
	return cache.PutJSON(s.store, cache.BucketNotifications, n.ID, *n)
}

// MarkAllRead flips every unread notification.
func (s *NotificationService) MarkAllRead() error {
	for _, n := range s.Load() {
		if n.Read {
			continue
		}
		n.Read = true
		if err := cache.PutJSON(s.store, cache.BucketNotifications, n.ID, n); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(id string) error {
	return s.store.Delete(cache.BucketNotifications, id)
}

// UnreadCount over an already-loaded list.
func UnreadCount(notifications []model.Notification) int {
	return len(utils.Filter(notifications, func(n model.Notification) bool { return !n.Read }))
}

// Escalate fans a notification out to the configured sinks (Slack, email)
// in addition to the local list.
func (s *NotificationService) Escalate(ctx context.Context, employeeID, title, body string) error {
	n, err := s.Add(employeeID, title, body, "escalation")
	if err != nil {
		return err
	}
	if s.sink == nil {
		return nil
	}
	return s.sink.Notify(ctx, *n)
}

// RegisterPushToken stores the device push token and announces it to the
// backend so server-side events can reach this device.
func (s *NotificationService) RegisterPushToken(ctx context.Context, employeeID, token string) error {
	if err := s.store.PutSetting(cache.SettingPushToken, token); err != nil {
		s.log.Warn("failed to persist push token", "error", err)
	}

	payload := map[string]string{
		"id":         employeeID,
		"employeeId": employeeID,
		"token":      token,
	}
	if _, err := s.api.From("push_tokens").Upsert(ctx, payload); err != nil {
		return fmt.Errorf("register push token: %w", err)
	}
	return nil
}

// PushToken returns the stored device token, or "".
func (s *NotificationService) PushToken() string {
	token, err := s.store.GetSetting(cache.SettingPushToken)
	if err != nil {
		s.log.Warn("failed to read push token", "error", err)
		return ""
	}
	return token
}
