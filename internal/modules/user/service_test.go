package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/domainerr"
	"github.com/delordemm1/go-sprints-api/internal/notification"
	"github.com/delordemm1/go-sprints-api/internal/notification/templates"
	"github.com/delordemm1/go-sprints-api/internal/session"
	"github.com/delordemm1/go-sprints-api/internal/validation"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- fakes ---

type fakeRepo struct {
	users     map[string]*User
	tokens    map[string]*VerificationToken
	states    map[string]*OAuthState
	activity  []ActivityLog
	upsertErr error
	activErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[string]*User{},
		tokens: map[string]*VerificationToken{},
		states: map[string]*OAuthState{},
	}
}

func (f *fakeRepo) UpsertByEmail(_ context.Context, u *User) (*User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if existing, ok := f.users[u.Email]; ok {
		cp := *existing
		cp.Name = u.Name
		if u.Image != nil {
			cp.Image = u.Image
		}
		cp.LastLoginAt = u.LastLoginAt
		f.users[u.Email] = &cp
		return &cp, nil
	}
	cp := *u
	f.users[u.Email] = &cp
	return &cp, nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) CreateVerificationToken(_ context.Context, t *VerificationToken) error {
	f.tokens[t.Identifier+"|"+t.TokenHash] = t
	return nil
}

func (f *fakeRepo) ConsumeVerificationToken(_ context.Context, identifier, hash string) (*VerificationToken, error) {
	key := identifier + "|" + hash
	t, ok := f.tokens[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.tokens, key)
	return t, nil
}

func (f *fakeRepo) DeleteExpiredVerificationTokens(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.ExpiresAt.Before(before) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) InsertOAuthState(_ context.Context, s *OAuthState) error {
	f.states[s.State] = s
	return nil
}

func (f *fakeRepo) ConsumeOAuthState(_ context.Context, state string) (*OAuthState, error) {
	s, ok := f.states[state]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.states, state)
	return s, nil
}

func (f *fakeRepo) DeleteExpiredOAuthStates(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for k, s := range f.states {
		if s.ExpiresAt.Before(before) {
			delete(f.states, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) InsertActivity(_ context.Context, a *ActivityLog) error {
	if f.activErr != nil {
		return f.activErr
	}
	f.activity = append(f.activity, *a)
	return nil
}

type fakeSender struct {
	sent   []notification.Message
	report func(to []string) notification.Report
	err    error
}

func (f *fakeSender) Send(_ context.Context, _ notification.TransportConfig, msg notification.Message) (notification.Report, error) {
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return notification.Report{}, f.err
	}
	if f.report != nil {
		return f.report(msg.To), nil
	}
	return notification.Report{Accepted: msg.To}, nil
}

type staticTransport struct{}

func (staticTransport) Transport(context.Context) notification.TransportConfig {
	return notification.TransportConfig{Host: "smtp.test", Port: 587, From: "noreply@test", Timeout: time.Second}
}

type fakeCooldown struct{ allow bool }

func (f fakeCooldown) Acquire(context.Context, string) (bool, error) { return f.allow, nil }

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	svc    Service
	repo   *fakeRepo
	sender *fakeSender
	clock  *clock
	minter session.Minter
	cfg    *config.Config
}

func newFixture(t *testing.T, mutate func(*config.Config, *Config)) *fixture {
	t.Helper()
	c := &clock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	minter, err := session.NewMinter(testSecret, session.Config{Now: c.Now})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.Auth.Secret = testSecret
	cfg.Auth.VerificationMaxAge = 24 * time.Hour

	repo := newFakeRepo()
	sender := &fakeSender{}
	engine := templates.NewEngine(templates.Config{}, discard)
	deps := &Config{
		Repo:      repo,
		Minter:    minter,
		Notifier:  notification.NewService(discard, engine, sender),
		Transport: staticTransport{},
		Logger:    discard,
		Config:    cfg,
		Now:       c.Now,
	}
	if mutate != nil {
		mutate(cfg, deps)
	}
	return &fixture{svc: NewService(deps), repo: repo, sender: sender, clock: c, minter: minter, cfg: cfg}
}

// sentToken pulls the token out of the last dispatched link.
func (f *fixture) sentLink(t *testing.T) *url.URL {
	t.Helper()
	require.NotEmpty(t, f.sender.sent)
	body := f.sender.sent[len(f.sender.sent)-1].TextBody
	i := strings.Index(body, "http")
	require.GreaterOrEqual(t, i, 0, body)
	raw := strings.Fields(body[i:])[0]
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// --- magic link ---

func TestRequestSignIn_SendsLink(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.RequestSignIn(context.Background(), SignInRequest{
		Email:       "  Ada@Example.com ",
		CallbackURL: "/dashboard/class/4",
		Origin:      "https://learn.example.com",
	})
	require.NoError(t, err)

	require.Len(t, f.repo.tokens, 1)
	for _, tok := range f.repo.tokens {
		assert.Equal(t, "ada@example.com", tok.Identifier)
		assert.Equal(t, f.clock.t.Add(24*time.Hour), tok.ExpiresAt)
	}

	msg := f.sender.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Equal(t, "Sign in to learn.example.com", msg.Subject)

	link := f.sentLink(t)
	assert.Equal(t, "learn.example.com", link.Host)
	assert.Equal(t, magicLinkCallbackPath, link.Path)
	assert.Equal(t, "ada@example.com", link.Query().Get("email"))
	assert.Equal(t, "/dashboard/class/4", link.Query().Get("callbackUrl"))
	assert.Len(t, link.Query().Get("token"), 64)
}

func TestRequestSignIn_RejectsEmptyEmail(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.RequestSignIn(context.Background(), SignInRequest{Email: "  ", Origin: "https://x.test"})

	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.repo.tokens)
	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.repo.users, "identity must not be resolved at request time")
}

func TestRequestSignIn_PartialFailureIsDeliveryError(t *testing.T) {
	f := newFixture(t, nil)
	f.sender.report = func(to []string) notification.Report {
		return notification.Report{Rejected: to}
	}

	err := f.svc.RequestSignIn(context.Background(), SignInRequest{Email: "bob@example.com", Origin: "https://x.test"})
	require.ErrorIs(t, err, ErrDelivery)

	var de *domainerr.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, map[string]any{"failedRecipients": []string{"bob@example.com"}}, de.ProblemContext())
	assert.Equal(t, deliveryDetail, de.ProblemDetail())
}

func TestRequestSignIn_TransportErrorHidesCause(t *testing.T) {
	f := newFixture(t, nil)
	f.sender.err = errors.New("535 authentication failed for user smtp-admin")

	err := f.svc.RequestSignIn(context.Background(), SignInRequest{Email: "bob@example.com", Origin: "https://x.test"})
	require.ErrorIs(t, err, ErrDelivery)

	var de *domainerr.DomainError
	require.ErrorAs(t, err, &de)
	assert.NotContains(t, de.ProblemDetail(), "smtp-admin")
}

func TestRequestSignIn_FixesLoopbackInProduction(t *testing.T) {
	f := newFixture(t, func(c *config.Config, _ *Config) {
		c.Server.Env = "production"
		c.Auth.ExternalURLCandidates = []string{"https://app.example.com"}
	})

	require.NoError(t, f.svc.RequestSignIn(context.Background(), SignInRequest{
		Email:  "ada@example.com",
		Origin: "http://localhost:3000",
	}))

	link := f.sentLink(t)
	assert.Equal(t, "https", link.Scheme)
	assert.Equal(t, "app.example.com", link.Host)
	assert.Equal(t, magicLinkCallbackPath, link.Path)
	assert.Equal(t, "Sign in to app.example.com", f.sender.sent[0].Subject)
}

func TestRequestSignIn_LoopbackWithoutCandidateIsKept(t *testing.T) {
	f := newFixture(t, func(c *config.Config, _ *Config) {
		c.Server.Env = "production"
	})

	require.NoError(t, f.svc.RequestSignIn(context.Background(), SignInRequest{
		Email:  "ada@example.com",
		Origin: "http://localhost:3000",
	}))
	assert.Equal(t, "localhost:3000", f.sentLink(t).Host)
}

func TestRequestSignIn_LoopbackKeptOutsideProduction(t *testing.T) {
	f := newFixture(t, func(c *config.Config, _ *Config) {
		c.Auth.ExternalURLCandidates = []string{"https://app.example.com"}
	})

	require.NoError(t, f.svc.RequestSignIn(context.Background(), SignInRequest{
		Email:  "ada@example.com",
		Origin: "http://localhost:3000",
	}))
	assert.Equal(t, "localhost:3000", f.sentLink(t).Host)
}

func TestRequestSignIn_Cooldown(t *testing.T) {
	f := newFixture(t, func(_ *config.Config, d *Config) {
		d.Cooldown = fakeCooldown{allow: false}
	})

	err := f.svc.RequestSignIn(context.Background(), SignInRequest{Email: "ada@example.com", Origin: "https://x.test"})
	assert.ErrorIs(t, err, ErrResendTooSoon)
	assert.Empty(t, f.repo.tokens)
}

func TestRedeemMagicLink_SingleUse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestSignIn(ctx, SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	token := f.sentLink(t).Query().Get("token")

	res, err := f.svc.RedeemMagicLink(ctx, "ada@example.com", token)
	require.NoError(t, err)

	claims, err := f.minter.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, session.RoleUser, claims.Role)
	assert.Equal(t, f.repo.users["ada@example.com"].ID, claims.Subject)

	_, err = f.svc.RedeemMagicLink(ctx, "ada@example.com", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRedeemMagicLink_Expired(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestSignIn(ctx, SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	token := f.sentLink(t).Query().Get("token")

	f.clock.t = f.clock.t.Add(24*time.Hour + time.Second)
	_, err := f.svc.RedeemMagicLink(ctx, "ada@example.com", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, f.repo.users)
}

func TestRedeemMagicLink_WrongEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestSignIn(ctx, SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	token := f.sentLink(t).Query().Get("token")

	_, err := f.svc.RedeemMagicLink(ctx, "eve@example.com", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConcurrentTokensBothRedeemable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	req := SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}

	require.NoError(t, f.svc.RequestSignIn(ctx, req))
	first := f.sentLink(t).Query().Get("token")
	require.NoError(t, f.svc.RequestSignIn(ctx, req))
	second := f.sentLink(t).Query().Get("token")

	_, err := f.svc.RedeemMagicLink(ctx, req.Email, second)
	require.NoError(t, err)
	_, err = f.svc.RedeemMagicLink(ctx, req.Email, first)
	require.NoError(t, err)
}

// --- identity ---

func TestResolveIdentity_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	hints := ProfileHints{ProfileName: "Ada Lovelace"}

	first, err := f.svc.ResolveIdentity(ctx, "ada@example.com", ProviderGoogle, hints)
	require.NoError(t, err)
	firstLogin := *first.User.LastLoginAt

	f.clock.t = f.clock.t.Add(time.Hour)
	second, err := f.svc.ResolveIdentity(ctx, "ada@example.com", ProviderEmail, hints)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.User.Name, second.User.Name)
	assert.Equal(t, first.User.Role, second.User.Role)
	assert.True(t, second.User.LastLoginAt.After(firstLogin))
	assert.Len(t, f.repo.users, 1)
}

func TestResolveIdentity_NewUserDefaults(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.ResolveIdentity(context.Background(), "grace@example.com", ProviderEmail, ProfileHints{})
	require.NoError(t, err)

	assert.Equal(t, "grace", res.User.Name)
	assert.Equal(t, session.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.Nil(t, res.User.Image)
	assert.True(t, res.Activity.OK())
	require.Len(t, f.repo.activity, 1)
	assert.Equal(t, actionLogin, f.repo.activity[0].Action)
}

func TestDisplayNameFallback(t *testing.T) {
	assert.Equal(t, "Explicit", displayName("a@b.c", ProfileHints{Name: "Explicit", ProfileName: "Profile"}))
	assert.Equal(t, "Profile", displayName("a@b.c", ProfileHints{ProfileName: "Profile"}))
	assert.Equal(t, "a", displayName("a@b.c", ProfileHints{Name: "  "}))
}

func TestResolveIdentity_KeepsImageWhenNoneOffered(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.ResolveIdentity(ctx, "ada@example.com", ProviderGoogle, ProfileHints{ProfilePicture: "https://img/ada.png"})
	require.NoError(t, err)

	res, err := f.svc.ResolveIdentity(ctx, "ada@example.com", ProviderEmail, ProfileHints{})
	require.NoError(t, err)
	require.NotNil(t, res.User.Image)
	assert.Equal(t, "https://img/ada.png", *res.User.Image)
}

func TestResolveIdentity_ActivityFailureIsBestEffort(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.activErr = errors.New("activity_logs: relation does not exist")

	res, err := f.svc.ResolveIdentity(context.Background(), "ada@example.com", ProviderEmail, ProfileHints{})
	require.NoError(t, err)
	assert.False(t, res.Activity.OK())
	assert.NotNil(t, res.User)
}

func TestSignIn_UpsertFailureStillIssuesSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestSignIn(ctx, SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	token := f.sentLink(t).Query().Get("token")

	f.repo.upsertErr = errors.New("connection refused")
	_, err := f.svc.ResolveIdentity(ctx, "ada@example.com", ProviderEmail, ProfileHints{})
	require.ErrorIs(t, err, ErrPersistence)

	res, err := f.svc.RedeemMagicLink(ctx, "ada@example.com", token)
	require.NoError(t, err)
	claims, err := f.minter.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Subject)
	assert.Equal(t, session.RoleUser, claims.Role)
}

func TestSignIn_CarriesStoredRole(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.users["root@example.com"] = &User{ID: "u-admin", Email: "root@example.com", Name: "Root", Role: session.RoleAdmin, IsActive: true}

	res, err := f.svc.(*service).completeSignIn(context.Background(), ProviderEmail, "root@example.com", ProfileHints{})
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, res.Identity.Role)
	assert.Equal(t, "u-admin", res.Identity.Subject)
}

// --- oauth ---

func newGoogleServer(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if verified {
			_, _ = io.WriteString(w, `{"email":"ada@example.com","verified_email":true,"name":"Ada Lovelace","picture":"https://img/ada.png"}`)
			return
		}
		_, _ = io.WriteString(w, `{"email":"ada@example.com","verified_email":false}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func googleFixture(t *testing.T, verified bool) *fixture {
	srv := newGoogleServer(t, verified)
	return newFixture(t, func(_ *config.Config, d *Config) {
		d.Google = newGoogleProvider(config.GoogleConfig{ClientID: "cid", ClientSecret: "csecret"},
			oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
			srv.URL+"/userinfo")
	})
}

func TestOAuth_RoundTrip(t *testing.T) {
	f := googleFixture(t, true)
	ctx := context.Background()

	authURL, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://preview.example.com", "/admin/settings")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "https://preview.example.com/auth/callback/google", q.Get("redirect_uri"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	state := q.Get("state")
	require.NotEmpty(t, state)

	res, err := f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://preview.example.com", state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "/admin/settings", res.CallbackURL)
	assert.Equal(t, "Ada Lovelace", f.repo.users["ada@example.com"].Name)

	_, err = f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://preview.example.com", state, "good-code")
	assert.ErrorIs(t, err, ErrOAuthStateInvalid)
}

func TestOAuth_LinksToEmailAccount(t *testing.T) {
	f := googleFixture(t, true)
	ctx := context.Background()
	emailUser, err := f.svc.ResolveIdentity(ctx, "ada@example.com", ProviderEmail, ProfileHints{})
	require.NoError(t, err)

	authURL, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)

	res, err := f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://x.test", u.Query().Get("state"), "good-code")
	require.NoError(t, err)
	assert.Equal(t, emailUser.User.ID, res.Identity.Subject)
}

func TestRedeemMagicLink_KeepsProviderName(t *testing.T) {
	f := googleFixture(t, true)
	ctx := context.Background()

	authURL, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)
	_, err = f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://x.test", u.Query().Get("state"), "good-code")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestSignIn(ctx, SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	res, err := f.svc.RedeemMagicLink(ctx, "ada@example.com", f.sentLink(t).Query().Get("token"))
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", res.Identity.Name)
	assert.Equal(t, "Ada Lovelace", f.repo.users["ada@example.com"].Name)
	assert.Equal(t, "https://img/ada.png", *f.repo.users["ada@example.com"].Image)
}

func TestOAuth_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified email", func(t *testing.T) {
		f := googleFixture(t, false)
		authURL, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)
		_, err = f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://x.test", u.Query().Get("state"), "good-code")
		assert.ErrorIs(t, err, ErrOAuthEmailMissing)
	})

	t.Run("bad code", func(t *testing.T) {
		f := googleFixture(t, true)
		authURL, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)
		_, err = f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://x.test", u.Query().Get("state"), "bad-code")
		assert.ErrorIs(t, err, ErrOAuthExchangeFailed)
	})

	t.Run("expired state", func(t *testing.T) {
		f := googleFixture(t, true)
		authURL, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)
		f.clock.t = f.clock.t.Add(oauthStateTTL)
		_, err = f.svc.CompleteOAuth(ctx, ProviderGoogle, "https://x.test", u.Query().Get("state"), "good-code")
		assert.ErrorIs(t, err, ErrOAuthStateExpired)
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
		_, err = f.svc.InitiateOAuth(ctx, ProviderEmail, "https://x.test", "/")
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})
}

func TestSweepExpired(t *testing.T) {
	f := googleFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestSignIn(ctx, SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	_, err := f.svc.InitiateOAuth(ctx, ProviderGoogle, "https://x.test", "/")
	require.NoError(t, err)

	tokens, states, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, tokens)
	assert.Zero(t, states)

	f.clock.t = f.clock.t.Add(time.Hour)
	tokens, states, err = f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, tokens, "magic links live for a day")
	assert.Equal(t, int64(1), states)

	f.clock.t = f.clock.t.Add(24 * time.Hour)
	tokens, _, err = f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tokens)
	assert.Empty(t, f.repo.tokens)
}

func TestProviders(t *testing.T) {
	f := googleFixture(t, true)
	ps := f.svc.Providers()
	require.Len(t, ps, 2)
	assert.Equal(t, ProviderGoogle, ps[0].ID())
	assert.Equal(t, ProviderTypeOAuth, ps[0].Type())
	assert.Equal(t, ProviderTypeEmail, ps[1].Type())

	link, ok := ps[1].(LinkProvider)
	require.True(t, ok)
	require.NoError(t, link.IssueAndDeliver(context.Background(), SignInRequest{Email: "ada@example.com", Origin: "https://x.test"}))
	assert.Len(t, f.sender.sent, 1)

	assert.Nil(t, NewGoogleProvider(config.GoogleConfig{}))
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "24 hours", humanDuration(24*time.Hour))
	assert.Equal(t, "2 days", humanDuration(48*time.Hour))
	assert.Equal(t, "3 hours", humanDuration(3*time.Hour))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "15m0s", humanDuration(15*time.Minute))
}
