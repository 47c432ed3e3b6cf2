package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

const defaultSMTPTimeout = 10 * time.Second

// smtpEmailSender is the concrete implementation for sending emails via SMTP.
type smtpEmailSender struct {
	log *slog.Logger
}

// NewSMTPEmailSender creates a sender that opens one SMTP connection per dispatch.
func NewSMTPEmailSender(log *slog.Logger) emailSender {
	return &smtpEmailSender{log: log}
}

func newSMTPServer(cfg TransportConfig) *mail.SMTPServer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	server := mail.NewSMTPClient()
	server.Host = cfg.Host
	server.Port = cfg.Port
	server.Username = cfg.Username
	server.Password = cfg.Password
	server.Encryption = mail.EncryptionSTARTTLS
	if cfg.Port == 465 {
		server.Encryption = mail.EncryptionSSLTLS
	}
	server.Authentication = mail.AuthPlain
	if cfg.Username == "" {
		server.Authentication = mail.AuthNone
	}
	server.KeepAlive = true
	server.ConnectTimeout = timeout
	server.SendTimeout = timeout
	return server
}

// Send delivers msg to each recipient separately over one connection, so a
// rejected address does not hide the outcome of the others. Recipients not yet
// attempted when ctx ends are reported as pending.
func (s *smtpEmailSender) Send(ctx context.Context, cfg TransportConfig, msg Message) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{Pending: msg.To}, err
	}

	smtpClient, err := newSMTPServer(cfg).Connect()
	if err != nil {
		return Report{Pending: msg.To}, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer smtpClient.Close()

	var report Report
	for i, to := range msg.To {
		if ctx.Err() != nil {
			report.Pending = append(report.Pending, msg.To[i:]...)
			break
		}

		email := mail.NewMSG()
		email.SetFrom(cfg.From).AddTo(to).SetSubject(msg.Subject)
		email.SetBody(mail.TextPlain, msg.TextBody)
		if msg.HTMLBody != "" {
			email.AddAlternative(mail.TextHTML, msg.HTMLBody)
		}
		if email.Error != nil {
			return report, fmt.Errorf("failed to build email: %w", email.Error)
		}

		if err := email.Send(smtpClient); err != nil {
			s.log.Warn("smtp rejected recipient", "to", to, "error", err)
			report.Rejected = append(report.Rejected, to)
			continue
		}
		report.Accepted = append(report.Accepted, to)
	}

	s.log.Info("email sent via smtp", "accepted", len(report.Accepted), "rejected", len(report.Rejected), "pending", len(report.Pending))
	return report, nil
}
