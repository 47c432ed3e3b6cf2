package user

import (
	"net/http"

	"github.com/delordemm1/go-sprints-api/internal/domainerr"
	"github.com/delordemm1/go-sprints-api/internal/notification"
)

// --- Pre-defined Domain Errors ---
// These variables represent specific, known error conditions in the auth domain.

var (
	// Resource & identity
	ErrNotFound = domainerr.New("ErrNotFound", http.StatusNotFound,
		"urn:problem:user/err-not-found", "user not found")

	ErrPersistence = domainerr.New("ErrPersistence", http.StatusInternalServerError,
		"urn:problem:user/err-persistence", "failed to store user record")

	// Magic link
	ErrInvalidToken = domainerr.New("ErrInvalidToken", http.StatusBadRequest,
		"urn:problem:auth/err-invalid-token", "the sign-in link is invalid or has expired")

	ErrMissingCSRF = domainerr.New("ErrMissingCSRF", http.StatusForbidden,
		"urn:problem:auth/err-missing-csrf", "missing or invalid anti-forgery token")

	ErrResendTooSoon = domainerr.New("ErrResendTooSoon", http.StatusTooManyRequests,
		"urn:problem:auth/err-resend-too-soon", "please wait before requesting another sign-in link")

	// ErrDelivery is the notification error; re-exported so callers of this
	// module can match on it without importing notification.
	ErrDelivery = notification.ErrDelivery

	// OAuth
	ErrUnsupportedProvider = domainerr.New("ErrUnsupportedProvider", http.StatusNotFound,
		"urn:problem:auth/err-unsupported-provider", "unsupported sign-in provider")

	ErrOAuthStateInvalid = domainerr.New("ErrOAuthStateInvalid", http.StatusBadRequest,
		"urn:problem:auth/err-oauth-state-invalid", "invalid oauth state")

	ErrOAuthStateExpired = domainerr.New("ErrOAuthStateExpired", http.StatusBadRequest,
		"urn:problem:auth/err-oauth-state-expired", "oauth state has expired")

	ErrOAuthExchangeFailed = domainerr.New("ErrOAuthExchangeFailed", http.StatusUnauthorized,
		"urn:problem:auth/err-oauth-exchange-failed", "oauth authentication failed")

	ErrOAuthEmailMissing = domainerr.New("ErrOAuthEmailMissing", http.StatusBadRequest,
		"urn:problem:auth/err-oauth-email-missing", "verified email not provided by oauth provider")

	// Generic internal
	ErrInternal = domainerr.New("ErrInternal", http.StatusInternalServerError,
		"urn:problem:user/err-internal", "internal server error")
)

// deliveryDetail is the only thing a client learns about a failed dispatch.
const deliveryDetail = "Failed to send the sign-in email. Please try again."
