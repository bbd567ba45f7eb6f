package notification

// NotificationSystem represents a type of notification system (e.g., email, SMS).
type NotificationSystem string

// NoticeType represents a kind of notification (e.g., "forgot_password").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	SetupPasswordNotice    NoticeType = "setup_password"
	ForgotPasswordNotice   NoticeType = "forgot_password"
	UnlockAccountNotice    NoticeType = "unlock_account"
	DormantWarningNotice   NoticeType = "dormant_warning"
	AccountInactiveNotice  NoticeType = "account_inactivated"
	PasswordExpiryNotice   NoticeType = "password_expiry_warning"
	PasswordInactiveNotice NoticeType = "password_expired_inactivated"
)

// NoticeTemplate holds the renderable template bodies for a notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// NotificationData is a single outbound notification.
type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional override of the template subject
	Body    string            // Optional literal body when no template applies
	Data    map[string]string // Template variables
}

// Notifier sends a rendered notification through one delivery system.
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
