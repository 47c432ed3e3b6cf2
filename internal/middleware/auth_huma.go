package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/domainerr"
	apphttpx "github.com/delordemm1/go-sprints-api/internal/httpx"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

var (
	ErrUnauthorized = domainerr.New("ErrUnauthorized", http.StatusUnauthorized, "urn:problem:auth/err-unauthorized", "authentication required")
	ErrForbidden    = domainerr.New("ErrForbidden", http.StatusForbidden, "urn:problem:auth/err-forbidden", "insufficient permissions")
)

// RequireSession is a Huma middleware that rejects anonymous requests with an
// RFC 7807 ErrUnauthorized problem. The Sessions chi middleware must run first.
func RequireSession() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if contextx.Session(ctx.Context()) == nil {
			writeProblem(ctx, ErrUnauthorized)
			return
		}
		next(ctx)
	}
}

// RequireRole is RequireSession plus a role check answering ErrForbidden.
func RequireRole(role session.Role) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		claims := contextx.Session(ctx.Context())
		if claims == nil {
			writeProblem(ctx, ErrUnauthorized)
			return
		}
		if !claims.HasRole(role) {
			writeProblem(ctx, ErrForbidden)
			return
		}
		next(ctx)
	}
}

func writeProblem(ctx huma.Context, err error) {
	p, ok := apphttpx.ToProblem(ctx.Context(), err).(*apphttpx.Problem)
	if !ok {
		p = apphttpx.InternalProblem(ctx.Context(), "")
	}
	ctx.SetHeader("Content-Type", "application/problem+json")
	ctx.SetStatus(p.GetStatus())
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(p)
}
