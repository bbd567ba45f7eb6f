package notice

import (
	"embed"
	"log/slog"

	"github.com/veralend/identity/pkg/notification"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager builds a notification manager with an email notifier
// and the full set of account lifecycle templates registered.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	templates := []struct {
		noticeType notification.NoticeType
		subject    string
		file       string
	}{
		{notification.SetupPasswordNotice, "Set Up Your Password", "templates/email/setup_password.html"},
		{notification.ForgotPasswordNotice, "Password Reset Request", "templates/email/forgot_password.html"},
		{notification.UnlockAccountNotice, "Your Account Has Been Unlocked", "templates/email/unlock_account.html"},
		{notification.DormantWarningNotice, "Inactivity Warning", "templates/email/dormant_warning.html"},
		{notification.AccountInactiveNotice, "Account Deactivated", "templates/email/account_inactivated.html"},
		{notification.PasswordExpiryNotice, "Password Expiry Warning", "templates/email/password_expiry_warning.html"},
		{notification.PasswordInactiveNotice, "Account Deactivated", "templates/email/password_expired_inactivated.html"},
	}

	for _, t := range templates {
		err = notificationManager.RegisterNotification(t.noticeType, notification.EmailSystem, notification.NoticeTemplate{
			Subject: t.subject,
			Html:    loadTemplate(t.file),
		})
		if err != nil {
			slog.Error("failed to register notification", "notice", t.noticeType, "error", err)
			return nil, err
		}
	}

	return notificationManager, nil
}
