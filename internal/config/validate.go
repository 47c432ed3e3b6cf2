package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const minSecretLength = 32

// Validate checks the credential configuration and cookie policy. It does not
// touch the network; it only rejects combinations the auth flow cannot serve.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d characters", minSecretLength))
	}
	if c.Auth.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_MAX_AGE must be positive"))
	}
	if c.Auth.ShortCookieMaxAge <= 0 {
		errs = append(errs, errors.New("AUTH_SHORT_COOKIE_MAX_AGE must be positive"))
	}
	if c.Auth.VerificationMaxAge <= 0 {
		errs = append(errs, errors.New("AUTH_VERIFICATION_MAX_AGE must be positive"))
	}
	if c.Auth.SessionUpdateAge < 0 || c.Auth.SessionUpdateAge > c.Auth.SessionMaxAge {
		errs = append(errs, errors.New("AUTH_SESSION_UPDATE_AGE must be between 0 and AUTH_SESSION_MAX_AGE"))
	}
	if c.Auth.SignInCooldown < 0 {
		errs = append(errs, errors.New("AUTH_SIGNIN_COOLDOWN must not be negative"))
	}
	for name, p := range map[string]string{
		"AUTH_SIGNIN_PAGE":      c.Auth.SignInPage,
		"AUTH_ERROR_PAGE":       c.Auth.ErrorPage,
		"AUTH_DEFAULT_CALLBACK": c.Auth.DefaultCallback,
		"AUTH_ADMIN_PREFIX":     c.Auth.AdminPrefix,
	} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", name, p))
		}
	}
	if c.Auth.PublicURL != "" {
		if u, err := url.Parse(c.Auth.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("public url %q is not an absolute URL", c.Auth.PublicURL))
		}
	}

	if (c.Google.ClientID == "") != (c.Google.ClientSecret == "") {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together"))
	}

	if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
		errs = append(errs, errors.New("SMTP_HOST and SMTP_PORT are required for email sign-in"))
	}
	if c.SMTP.From == "" {
		errs = append(errs, errors.New("SMTP_FROM is required for email sign-in"))
	}
	if c.SMTP.Timeout <= 0 || c.SMTP.Timeout > 2*time.Minute {
		errs = append(errs, errors.New("SMTP_TIMEOUT must be within (0, 2m]"))
	}

	return errors.Join(errs...)
}
