// Package siteurl works out which origin outbound links should point at.
package siteurl

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// RequestOrigin returns scheme://host for r. When trustHost is set the
// X-Forwarded-Proto and X-Forwarded-Host headers of a reverse proxy win.
func RequestOrigin(r *http.Request, trustHost bool) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if trustHost {
		if p := firstValue(r.Header.Get("X-Forwarded-Proto")); p != "" {
			scheme = strings.ToLower(p)
		}
		if h := firstValue(r.Header.Get("X-Forwarded-Host")); h != "" {
			host = h
		}
	}
	return scheme + "://" + host
}

// Origin prefers the configured public URL and falls back to the request origin.
func Origin(publicURL string, r *http.Request, trustHost bool) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	return RequestOrigin(r, trustHost)
}

// Host returns the host (with port, if any) of an origin or absolute URL.
func Host(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("siteurl: %q has no host", origin)
	}
	return u.Host, nil
}

// IsLoopbackHost reports whether host (with or without port) names the local machine.
func IsLoopbackHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(strings.ToLower(host), "[]")
	switch host {
	case "localhost", "127.0.0.1", "0.0.0.0", "::1":
		return true
	}
	return false
}

// FixOutcome describes what FixLoopbackURL did.
type FixOutcome int

const (
	// NotLoopback means the URL already pointed somewhere reachable.
	NotLoopback FixOutcome = iota
	// Rewritten means the loopback origin was replaced by a candidate.
	Rewritten
	// NoCandidate means the URL is loopback but nothing usable was configured.
	NoCandidate
)

// FixLoopbackURL replaces the scheme and host of a loopback raw URL with the
// first usable external candidate. Path and query are kept.
func FixLoopbackURL(raw string, candidates []string) (string, FixOutcome) {
	u, err := url.Parse(raw)
	if err != nil || !IsLoopbackHost(u.Host) {
		return raw, NotLoopback
	}

	for _, c := range candidates {
		cu, err := url.Parse(strings.TrimSpace(c))
		if err != nil || cu.Scheme == "" || cu.Host == "" || IsLoopbackHost(cu.Host) {
			continue
		}
		u.Scheme = cu.Scheme
		u.Host = cu.Host
		return u.String(), Rewritten
	}
	return raw, NoCandidate
}

// SafeCallback keeps callback targets on this site. Relative paths are kept,
// absolute URLs are reduced to their path when they point at origin, and
// everything else falls back to def.
func SafeCallback(raw, origin, def string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		if !safePath(raw) {
			return def
		}
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return def
	}
	o, err := url.Parse(origin)
	if err != nil || !strings.EqualFold(u.Host, o.Host) || u.Scheme != o.Scheme {
		return def
	}

	out := u.EscapedPath()
	if out == "" {
		out = "/"
	}
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if !safePath(out) {
		return def
	}
	return out
}

// safePath rejects paths a browser could read as protocol-relative: a
// backslash counts as a slash there, raw or percent-encoded, and tabs and
// newlines are dropped before parsing.
func safePath(p string) bool {
	if strings.ContainsFunc(p, isBrowserStripped) || strings.ContainsRune(p, '\\') {
		return false
	}
	path, _, _ := strings.Cut(p, "?")
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return false
	}
	return !strings.ContainsRune(decoded, '\\') &&
		!strings.ContainsFunc(decoded, isBrowserStripped) &&
		!strings.HasPrefix(decoded, "//")
}

func isBrowserStripped(r rune) bool { return r < 0x20 || r == 0x7f }

func firstValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
