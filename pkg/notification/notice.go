package notification

// Notice types produced by the account lifecycle
const (
	AccountActivationNotice NoticeType = "account_activation"
	PasswordResetNotice     NoticeType = "password_reset"
)

// Default email templates for the account notices. Data keys: Name,
// ActivationLink / ResetLink, ExpiryHours.
var (
	AccountActivationTemplate = NoticeTemplate{
		Subject: "Account activation",
		Text: `Hi {{.Name}},

Welcome to Simple Social! Click on the link below to activate your account:

{{.ActivationLink}}
`,
		Html: `<h1>Simple Social</h1>
<p>Hi {{.Name}},</p>
<p>Welcome to Simple Social! Click on the link below to activate your account:</p>
<p><a href="{{.ActivationLink}}">Activate</a></p>
`,
	}

	PasswordResetTemplate = NoticeTemplate{
		Subject: "Password reset",
		Text: `To reset your password click the link below:

{{.ResetLink}}

This link will expire in {{.ExpiryHours}} hours.

If you did not request your password to be reset, please ignore this email and your password will stay as it is.
`,
		Html: `<h1>Password reset</h1>
<p>To reset your password click the link below:</p>
<p><a href="{{.ResetLink}}">Reset password</a></p>
<p>This link will expire in {{.ExpiryHours}} hours.</p>
<p>If you did not request your password to be reset, please ignore this email and your password will stay as it is.</p>
`,
	}
)

// RegisterAccountNotices wires the default account templates for email
// delivery
func RegisterAccountNotices(nm *NotificationManager) error {
	if err := nm.RegisterNotification(AccountActivationNotice, EmailSystem, AccountActivationTemplate); err != nil {
		return err
	}
	return nm.RegisterNotification(PasswordResetNotice, EmailSystem, PasswordResetTemplate)
}
