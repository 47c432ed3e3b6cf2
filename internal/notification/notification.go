package notification

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/delordemm1/go-sprints-api/internal/domainerr"
	"github.com/delordemm1/go-sprints-api/internal/notification/templates"
)

// ErrDelivery is returned when any recipient was rejected or left pending, or
// when the transport itself failed. Its context names the failed recipients.
var ErrDelivery = domainerr.New("ErrDelivery", http.StatusBadGateway, "urn:problem:notification/err-delivery", "email delivery failed")

// TransportConfig is resolved per dispatch so admin overrides apply without a restart.
type TransportConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Addr returns host:port for logs.
func (c TransportConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Message is one rendered email addressed to one or more recipients.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Report says what happened to each recipient of a dispatch.
type Report struct {
	Accepted []string
	Rejected []string
	Pending  []string
}

// Failed lists rejected then pending recipients.
func (r Report) Failed() []string {
	out := make([]string, 0, len(r.Rejected)+len(r.Pending))
	out = append(out, r.Rejected...)
	return append(out, r.Pending...)
}

// Err converts a report with failed recipients into ErrDelivery.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return ErrDelivery.WithContext(map[string]any{"failedRecipients": failed})
}

// emailSender talks to the outbound transport. Implemented by smtpEmailSender.
type emailSender interface {
	Send(ctx context.Context, cfg TransportConfig, msg Message) (Report, error)
}

// Service renders a template and dispatches it synchronously.
type Service interface {
	SendTemplate(ctx context.Context, cfg TransportConfig, to []string, id string, data any) (Report, error)
}

type service struct {
	log         *slog.Logger
	renderer    templates.Renderer
	emailSender emailSender
}

// NewService creates a new notification service.
func NewService(log *slog.Logger, renderer templates.Renderer, sender emailSender) Service {
	return &service{
		log:         log,
		renderer:    renderer,
		emailSender: sender,
	}
}

// SendTemplate waits for the transport's verdict, bounded by cfg.Timeout.
// Transport failures and partial failures both come back as ErrDelivery.
func (s *service) SendTemplate(ctx context.Context, cfg TransportConfig, to []string, id string, data any) (Report, error) {
	rendered, err := s.renderer.RenderAny(ctx, id, data)
	if err != nil {
		s.log.Error("failed to render notification template", "template", id, "error", err)
		return Report{Pending: to}, ErrDelivery.WithCause(err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	s.log.Info("dispatching email notification", "template", id, "recipients", len(to), "smtp", cfg.Addr())
	report, err := s.emailSender.Send(ctx, cfg, Message{
		To:       to,
		Subject:  rendered.Subject,
		TextBody: rendered.EmailText,
		HTMLBody: rendered.EmailHTML,
	})
	if err != nil {
		s.log.Error("failed to send notification", "template", id, "smtp", cfg.Addr(), "error", err)
		if len(report.Failed()) == 0 {
			report.Pending = to
		}
		return report, ErrDelivery.WithCause(err).WithContext(map[string]any{"failedRecipients": report.Failed()})
	}
	if err := report.Err(); err != nil {
		s.log.Error("email not delivered to every recipient", "template", id, "rejected", report.Rejected, "pending", report.Pending)
		return report, err
	}
	return report, nil
}
