package templates

// MagicLinkData holds variables for the auth.magic_link scenario.
type MagicLinkData struct {
	Host      string
	URL       string
	Email     string
	ExpiresIn string
}

// MagicLink is the typed handle for the auth.magic_link template.
var MagicLink = Expect[MagicLinkData]("auth.magic_link")

// SMTPTestData holds variables for the admin.smtp_test scenario.
type SMTPTestData struct {
	Host     string
	SMTPHost string
	SMTPPort int
	SentAt   string
}

// SMTPTest is the typed handle for the admin.smtp_test template.
var SMTPTest = Expect[SMTPTestData]("admin.smtp_test")

// Scenarios lists every handle the application renders.
var Scenarios = []IHandle{MagicLink, SMTPTest}
