package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/notification"
	"github.com/delordemm1/go-sprints-api/internal/validation"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeRepo struct {
	rows    map[string]string
	err     error
	listed  int
	updated time.Time
}

func (f *fakeRepo) List(context.Context) ([]Setting, error) {
	f.listed++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Setting, 0, len(f.rows))
	for _, k := range Keys() {
		if v, ok := f.rows[k]; ok {
			out = append(out, Setting{Key: k, Value: v, UpdatedAt: f.updated})
		}
	}
	return out, nil
}

func (f *fakeRepo) Upsert(_ context.Context, key, value string) (*Setting, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rows[key] = value
	return &Setting{Key: key, Value: value, UpdatedAt: f.updated}, nil
}

type fakeHash struct {
	data    map[string]string
	ttl     time.Duration
	readErr error
	deleted int
}

func (f *fakeHash) HGetAll(context.Context, string) *redis.MapStringStringCmd {
	if f.readErr != nil {
		return redis.NewMapStringStringResult(nil, f.readErr)
	}
	cp := make(map[string]string, len(f.data))
	for k, v := range f.data {
		cp[k] = v
	}
	return redis.NewMapStringStringResult(cp, nil)
}

func (f *fakeHash) HSet(_ context.Context, _ string, values ...any) *redis.IntCmd {
	for i := 0; i+1 < len(values); i += 2 {
		f.data[values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeHash) Expire(_ context.Context, _ string, ttl time.Duration) *redis.BoolCmd {
	f.ttl = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeHash) Del(context.Context, ...string) *redis.IntCmd {
	f.deleted++
	f.data = map[string]string{}
	return redis.NewIntResult(1, nil)
}

type fakeNotifier struct {
	cfg notification.TransportConfig
	to  []string
	id  string
}

func (f *fakeNotifier) SendTemplate(_ context.Context, cfg notification.TransportConfig, to []string, id string, _ any) (notification.Report, error) {
	f.cfg, f.to, f.id = cfg, to, id
	return notification.Report{Accepted: to}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SMTP = config.SMTPConfig{Host: "smtp.hostinger.com", Port: 587, Username: "env-user", Password: "env-pass", From: "env@example.com", Timeout: 10 * time.Second}
	return cfg
}

func newTestService(repo Repository, hash hashStore, n notification.Service) Service {
	return NewService(&Config{Repo: repo, Cache: hash, Notifier: n, Logger: discard, Config: testConfig()})
}

func TestTransport_OverridesEnv(t *testing.T) {
	repo := &fakeRepo{rows: map[string]string{KeySMTPHost: "mail.example.com", KeySMTPPort: "465", KeySMTPPass: "db-pass"}}
	svc := newTestService(repo, nil, nil)

	tc := svc.Transport(context.Background())
	assert.Equal(t, "mail.example.com", tc.Host)
	assert.Equal(t, 465, tc.Port)
	assert.Equal(t, "env-user", tc.Username)
	assert.Equal(t, "db-pass", tc.Password)
	assert.Equal(t, "env@example.com", tc.From)
	assert.Equal(t, 10*time.Second, tc.Timeout)
}

func TestTransport_FailsOpenToEnv(t *testing.T) {
	svc := newTestService(&fakeRepo{err: errors.New("connection refused")}, nil, nil)

	tc := svc.Transport(context.Background())
	assert.Equal(t, "smtp.hostinger.com", tc.Host)
	assert.Equal(t, 587, tc.Port)
	assert.Equal(t, "env-pass", tc.Password)
}

func TestTransport_IgnoresBadPort(t *testing.T) {
	svc := newTestService(&fakeRepo{rows: map[string]string{KeySMTPPort: "abc"}}, nil, nil)
	assert.Equal(t, 587, svc.Transport(context.Background()).Port)
}

func TestTransport_ReadsThroughCache(t *testing.T) {
	repo := &fakeRepo{rows: map[string]string{KeySMTPHost: "mail.example.com"}}
	hash := &fakeHash{data: map[string]string{}}
	svc := newTestService(repo, hash, nil)
	ctx := context.Background()

	assert.Equal(t, "mail.example.com", svc.Transport(ctx).Host)
	assert.Equal(t, "mail.example.com", svc.Transport(ctx).Host)
	assert.Equal(t, 1, repo.listed, "second read must be served from the cache")
	assert.Equal(t, cacheTTL, hash.ttl)

	_, err := svc.Set(ctx, KeySMTPHost, "smtp2.example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, hash.deleted)
	assert.Equal(t, "smtp2.example.com", svc.Transport(ctx).Host)
	assert.Equal(t, 2, repo.listed)
}

func TestTransport_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := &fakeRepo{rows: map[string]string{KeySMTPFrom: "db@example.com"}}
	hash := &fakeHash{data: map[string]string{}, readErr: errors.New("redis down")}
	svc := newTestService(repo, hash, nil)

	assert.Equal(t, "db@example.com", svc.Transport(context.Background()).From)
}

func TestSet_Validation(t *testing.T) {
	svc := newTestService(&fakeRepo{rows: map[string]string{}}, nil, nil)
	ctx := context.Background()

	_, err := svc.Set(ctx, "theme", "dark")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = svc.Set(ctx, KeySMTPPort, "99999")
	var ve *validation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"must be a port between 1 and 65535"}, ve.Fields()[KeySMTPPort])

	_, err = svc.Set(ctx, KeySMTPPort, "abc")
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Set(ctx, KeySMTPPort, "")
	assert.NoError(t, err)

	_, err = svc.Set(ctx, KeySMTPFrom, "not-an-address")
	assert.ErrorAs(t, err, &ve)

	row, err := svc.Set(ctx, KeySMTPPass, "  s3cret ")
	require.NoError(t, err)
	assert.Equal(t, "********", row.Value)
}

func TestList_MasksSecrets(t *testing.T) {
	svc := newTestService(&fakeRepo{rows: map[string]string{KeySMTPPass: "s3cret", KeySMTPUser: "u"}}, nil, nil)
	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		if r.Key == KeySMTPPass {
			assert.Equal(t, "********", r.Value)
		} else {
			assert.Equal(t, "u", r.Value)
		}
	}
}

func TestSendTestEmail(t *testing.T) {
	n := &fakeNotifier{}
	svc := newTestService(&fakeRepo{rows: map[string]string{KeySMTPHost: "mail.example.com"}}, nil, n)

	report, err := svc.SendTestEmail(context.Background(), "admin@example.com", "app.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com"}, report.Accepted)
	assert.Equal(t, "admin.smtp_test", n.id)
	assert.Equal(t, "mail.example.com", n.cfg.Host)

	_, err = svc.SendTestEmail(context.Background(), "nope", "app.example.com")
	assert.Error(t, err)
}
