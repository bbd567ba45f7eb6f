package notification

import "sync"

// MockNotifier records sent notifications for tests.
type MockNotifier struct {
	mu                sync.Mutex
	SentNotifications []NotificationData
}

// Send implements Notifier by recording the notification.
func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentNotifications = append(m.SentNotifications, notification)
	return nil
}

// Sent returns a snapshot of the recorded notifications.
func (m *MockNotifier) Sent() []NotificationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotificationData, len(m.SentNotifications))
	copy(out, m.SentNotifications)
	return out
}
