package settings

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/notification"
	"github.com/delordemm1/go-sprints-api/internal/notification/templates"
	"github.com/delordemm1/go-sprints-api/internal/validation"
)

// Service manages admin settings and resolves the outbound mail transport.
type Service interface {
	// List returns every setting with secrets masked.
	List(ctx context.Context) ([]Setting, error)

	// Set validates and stores one setting.
	Set(ctx context.Context, key, value string) (*Setting, error)

	// Transport merges stored SMTP overrides over the environment defaults.
	// It never fails: when the settings store is unreachable the defaults are
	// returned and a warning is logged.
	Transport(ctx context.Context) notification.TransportConfig

	// SendTestEmail dispatches the admin.smtp_test template to "to" using the
	// resolved transport.
	SendTestEmail(ctx context.Context, to, host string) (notification.Report, error)
}

type service struct {
	repo     Repository
	cache    *cache
	notifier notification.Service
	logger   *slog.Logger
	config   *config.Config
}

// Config holds the dependencies for the settings service.
type Config struct {
	Repo     Repository
	Cache    hashStore
	Notifier notification.Service
	Logger   *slog.Logger
	Config   *config.Config
}

// NewService creates a new settings service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{
		repo:     cfg.Repo,
		cache:    newCache(cfg.Cache),
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		config:   cfg.Config,
	}
}

func (s *service) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list settings", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	for i := range rows {
		rows[i].Value = mask(rows[i].Key, rows[i].Value)
	}
	return rows, nil
}

func (s *service) Set(ctx context.Context, key, value string) (*Setting, error) {
	if !knownKeys[key] {
		return nil, ErrUnknownKey.WithDetail("unknown setting key " + strconv.Quote(key))
	}
	value = strings.TrimSpace(value)
	if err := validateValue(key, value); err != nil {
		return nil, err
	}

	row, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		s.logger.Error("failed to store setting", "key", key, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if err := s.cache.invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate settings cache", "error", err)
	}

	s.logger.Info("setting updated", "key", key)
	row.Value = mask(row.Key, row.Value)
	return row, nil
}

func (s *service) Transport(ctx context.Context) notification.TransportConfig {
	env := s.config.SMTP
	tc := notification.TransportConfig{
		Host:     env.Host,
		Port:     env.Port,
		Username: env.Username,
		Password: env.Password,
		From:     env.From,
		Timeout:  env.Timeout,
	}

	values, err := s.values(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable, using environment smtp config", "error", err)
		return tc
	}

	if v := values[KeySMTPHost]; v != "" {
		tc.Host = v
	}
	if v := values[KeySMTPPort]; v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			tc.Port = port
		} else {
			s.logger.Warn("ignoring invalid smtpPort setting", "value", v)
		}
	}
	if v := values[KeySMTPUser]; v != "" {
		tc.Username = v
	}
	if v := values[KeySMTPPass]; v != "" {
		tc.Password = v
	}
	if v := values[KeySMTPFrom]; v != "" {
		tc.From = v
	}
	return tc
}

func (s *service) SendTestEmail(ctx context.Context, to, host string) (notification.Report, error) {
	if err := validation.Var("to", to, "required,email"); err != nil {
		return notification.Report{}, err
	}
	tc := s.Transport(ctx)
	return s.notifier.SendTemplate(ctx, tc, []string{to}, templates.SMTPTest.ID(), templates.SMTPTestData{
		Host:     host,
		SMTPHost: tc.Host,
		SMTPPort: tc.Port,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// values reads through the redis cache to the settings table.
func (s *service) values(ctx context.Context) (map[string]string, error) {
	if m, ok, err := s.cache.get(ctx); err != nil {
		s.logger.Warn("settings cache read failed", "error", err)
	} else if ok {
		return m, nil
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		m[r.Key] = r.Value
	}
	if err := s.cache.put(ctx, m); err != nil {
		s.logger.Warn("settings cache write failed", "error", err)
	}
	return m, nil
}

// valueRules are validator tags per key; an empty value clears the override.
var valueRules = map[string]string{
	KeySMTPHost: "omitempty,hostname_rfc1123",
	KeySMTPPort: "omitempty,port",
	KeySMTPFrom: "omitempty,email",
}

func validateValue(key, value string) error {
	rule, ok := valueRules[key]
	if !ok {
		return nil
	}
	return validation.Var(key, value, rule)
}

// Keys returns the settable keys in a stable order.
func Keys() []string {
	out := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
