// Package httpx renders every failure the API returns as application/problem+json.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
)

// Problem is an RFC 9457 problem document with three extensions: a stable
// business code, an optional context payload and the chi request id.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Errors []*huma.ErrorDetail `json:"errors,omitempty"`

	Code      string `json:"code,omitempty"`
	Context   any    `json:"context,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (p *Problem) Error() string {
	switch {
	case p.Detail != "":
		return p.Detail
	case p.Title != "":
		return p.Title
	}
	return http.StatusText(p.GetStatus())
}

// GetStatus implements huma.StatusError.
func (p *Problem) GetStatus() int {
	if p.Status == 0 {
		return http.StatusInternalServerError
	}
	return p.Status
}

// ContentType implements huma.ContentTypeFilter.
func (p *Problem) ContentType(ct string) string {
	switch ct {
	case "application/json":
		return "application/problem+json"
	case "application/cbor":
		return "application/problem+cbor"
	}
	return ct
}

// DomainProblem is satisfied by domainerr.Error. Anything implementing it is
// rendered with its own code, status and client-facing detail.
type DomainProblem interface {
	ProblemCode() string
	ProblemStatus() int
	ProblemTitle() string
	ProblemDetail() string
	ProblemTypeURI() string
	ProblemContext() any
}

// ToProblem converts err for a huma handler return. Status errors pass through,
// domain errors are formatted, and anything else becomes a generic ErrInternal
// so driver and transport messages never reach the client.
func ToProblem(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}

	var dp DomainProblem
	if !errors.As(err, &dp) {
		return InternalProblem(ctx, "")
	}

	code, status := dp.ProblemCode(), dp.ProblemStatus()
	p := newProblem(status, code, dp.ProblemDetail())
	if uri := dp.ProblemTypeURI(); uri != "" {
		p.Type = uri
	}
	if title := dp.ProblemTitle(); title != "" {
		p.Title = title
	}
	p.Context = dp.ProblemContext()
	p.RequestID = middleware.GetReqID(ctx)
	return p
}

// WriteProblem renders err as problem+json from plain net/http code.
func WriteProblem(w http.ResponseWriter, r *http.Request, err error) {
	p, ok := ToProblem(r.Context(), err).(*Problem)
	if !ok {
		p = InternalProblem(r.Context(), "")
	}
	p.Instance = r.URL.Path
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.GetStatus())
	_ = json.NewEncoder(w).Encode(p)
}

// ValidationProblem is a 400 ErrValidation carrying the failing fields.
func ValidationProblem(ctx context.Context, summary string, fields map[string][]string) *Problem {
	if summary == "" {
		summary = "Validation error"
	}
	p := newProblem(http.StatusBadRequest, "ErrValidation", summary)
	p.Type = "urn:problem:validation-error"
	p.Title = "Validation error"
	p.Context = map[string]any{"fields": fields}
	p.RequestID = middleware.GetReqID(ctx)
	return p
}

// InternalProblem is a 500 ErrInternal with a safe detail when none is given.
func InternalProblem(ctx context.Context, detail string) *Problem {
	if detail == "" {
		detail = "Something went wrong. Please try again later."
	}
	p := newProblem(http.StatusInternalServerError, "ErrInternal", detail)
	p.Type = "urn:problem:internal"
	p.RequestID = middleware.GetReqID(ctx)
	return p
}

// UseProblems makes huma build its own errors (request decoding, schema
// validation, unknown content types) as Problems with a status-derived code.
func UseProblems() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		p := newProblem(status, statusCode(status), msg)
		for _, err := range errs {
			if err == nil {
				continue
			}
			var d huma.ErrorDetailer
			if errors.As(err, &d) {
				p.Errors = append(p.Errors, d.ErrorDetail())
				continue
			}
			p.Errors = append(p.Errors, &huma.ErrorDetail{Message: err.Error()})
		}
		return p
	}
}

func newProblem(status int, code, detail string) *Problem {
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &Problem{
		Type:   "urn:problem:" + toKebab(code),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

// statusCode names a bare HTTP status the way domain codes are named:
// 422 becomes ErrUnprocessableEntity.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ErrInternal"
	}
	var b strings.Builder
	b.WriteString("Err")
	for _, word := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		b.WriteString(strings.ToUpper(word[:1]) + word[1:])
	}
	return b.String()
}

// toKebab turns ErrInvalidToken or USER_NOT_FOUND into err-invalid-token and
// user-not-found.
func toKebab(s string) string {
	var b strings.Builder
	afterLower, afterSep := false, true
	for _, r := range s {
		if r == '_' || r == ' ' || r == '-' {
			if !afterSep {
				b.WriteByte('-')
				afterSep = true
			}
			afterLower = false
			continue
		}
		if unicode.IsUpper(r) && afterLower && !afterSep {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
		afterSep = false
		afterLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return strings.TrimSuffix(b.String(), "-")
}
