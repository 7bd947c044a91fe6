package notification

// MockNotifier records notices instead of delivering them; used in tests
type MockNotifier struct {
	SentNotifications []SentNotification
}

// SentNotification is one recorded delivery
type SentNotification struct {
	NoticeType NoticeType
	Data       NotificationData
	Template   NoticeTemplate
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.SentNotifications = append(m.SentNotifications, SentNotification{
		NoticeType: noticeType,
		Data:       notification,
		Template:   template,
	})
	return nil
}

// Last returns the most recently recorded notification, or nil
func (m *MockNotifier) Last() *SentNotification {
	if len(m.SentNotifications) == 0 {
		return nil
	}
	return &m.SentNotifications[len(m.SentNotifications)-1]
}
