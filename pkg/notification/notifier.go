package notification

// NotificationSystem represents a delivery channel (e.g., email)
type NotificationSystem string

// NoticeType identifies a kind of outbound notice (e.g., "account_activation")
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
)

// NotificationData carries the recipient and the template values for one
// outbound notice
type NotificationData struct {
	To   string            // Recipient identifier (e.g., email address)
	Data map[string]string // Values interpolated into the notice template
}

// NoticeTemplate holds the renderable parts of a notice
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier delivers a rendered notice over one system
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
