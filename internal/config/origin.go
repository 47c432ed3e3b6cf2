package config

import (
	"strings"
)

// LookupFunc reads a single environment variable.
type LookupFunc func(key string) (string, bool)

// publicURLVars is the order in which hosting platforms expose the external origin.
var publicURLVars = []string{
	"PUBLIC_URL",
	"RAILWAY_STATIC_URL",
	"RENDER_EXTERNAL_URL",
	"APP_URL",
	"SITE_URL",
}

// loopbackFixVars is the order consulted when a dispatched link points at a loopback host.
var loopbackFixVars = []string{
	"AUTH_URL",
	"PUBLIC_URL",
	"APP_URL",
	"SITE_URL",
}

// ResolvePublicURL picks the externally reachable origin of the deployment.
// AUTH_URL always wins; VERCEL_URL is a bare host and gets an https scheme;
// the remaining platform variables are only consulted in production.
func ResolvePublicURL(lookup LookupFunc, production bool) string {
	if v := get(lookup, "AUTH_URL"); v != "" {
		return v
	}
	if v := get(lookup, "VERCEL_URL"); v != "" {
		return "https://" + v
	}
	if !production {
		return ""
	}
	for _, key := range publicURLVars {
		if v := get(lookup, key); v != "" {
			return v
		}
	}
	return ""
}

// ExternalURLCandidates returns the non-empty origin candidates in priority order.
func ExternalURLCandidates(lookup LookupFunc) []string {
	var out []string
	for _, key := range loopbackFixVars {
		if v := get(lookup, key); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func get(lookup LookupFunc, key string) string {
	v, ok := lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(v), "/")
}
