package settings

import "time"

// Setting is one admin-editable key/value row.
type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Keys understood by the SMTP transport resolver.
const (
	KeySMTPHost = "smtpHost"
	KeySMTPPort = "smtpPort"
	KeySMTPUser = "smtpUser"
	KeySMTPPass = "smtpPass"
	KeySMTPFrom = "smtpFrom"
)

// secretKeys are never echoed back in full.
var secretKeys = map[string]bool{KeySMTPPass: true}

// knownKeys lists every key an admin may set.
var knownKeys = map[string]bool{
	KeySMTPHost: true,
	KeySMTPPort: true,
	KeySMTPUser: true,
	KeySMTPPass: true,
	KeySMTPFrom: true,
}

// mask hides secret values.
func mask(key, value string) string {
	if !secretKeys[key] || value == "" {
		return value
	}
	return "********"
}
