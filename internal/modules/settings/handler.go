package settings

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/httpx"
	"github.com/delordemm1/go-sprints-api/internal/middleware"
	"github.com/delordemm1/go-sprints-api/internal/session"
	"github.com/delordemm1/go-sprints-api/internal/siteurl"
	"github.com/delordemm1/go-sprints-api/internal/validation"
)

// Handler holds the dependencies for the admin settings endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the settings module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the admin settings operations. Every one requires an
// ADMIN session.
func (h *Handler) RegisterRoutes(api huma.API) {
	admin := huma.Middlewares{middleware.RequireRole(session.RoleAdmin)}

	huma.Register(api, huma.Operation{
		OperationID: "list-settings",
		Method:      http.MethodGet,
		Path:        "/admin/settings",
		Summary:     "List admin settings",
		Tags:        []string{"Admin"},
		Middlewares: admin,
	}, h.ListHandler)

	huma.Register(api, huma.Operation{
		OperationID: "put-setting",
		Method:      http.MethodPut,
		Path:        "/admin/settings/{key}",
		Summary:     "Create or update a setting",
		Tags:        []string{"Admin"},
		Middlewares: admin,
	}, h.PutHandler)

	huma.Register(api, huma.Operation{
		OperationID: "test-smtp",
		Method:      http.MethodPost,
		Path:        "/admin/settings/smtp/test",
		Summary:     "Send a test email with the resolved SMTP transport",
		Tags:        []string{"Admin"},
		Middlewares: admin,
	}, h.TestSMTPHandler)
}

// --- DTOs ---

type SettingDTO struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListResponse struct {
	Body struct {
		Settings []SettingDTO `json:"settings"`
		Keys     []string     `json:"keys"`
	}
}

type PutRequest struct {
	Key  string `path:"key"`
	Body struct {
		Value string `json:"value" validate:"max=512"`
	}
}

type PutResponse struct {
	Body SettingDTO
}

type TestSMTPRequest struct {
	Body struct {
		To string `json:"to" validate:"required,email"`
	}
}

type TestSMTPResponse struct {
	Body struct {
		Success  bool     `json:"success"`
		Accepted []string `json:"accepted"`
		Message  string   `json:"message"`
	}
}

func toDTO(s Setting) SettingDTO {
	return SettingDTO{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt}
}

// --- Handlers ---

func (h *Handler) ListHandler(ctx context.Context, _ *struct{}) (*ListResponse, error) {
	rows, err := h.service.List(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListResponse{}
	resp.Body.Settings = make([]SettingDTO, 0, len(rows))
	for _, r := range rows {
		resp.Body.Settings = append(resp.Body.Settings, toDTO(r))
	}
	resp.Body.Keys = Keys()
	return resp, nil
}

func (h *Handler) PutHandler(ctx context.Context, input *PutRequest) (*PutResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	row, err := h.service.Set(ctx, input.Key, input.Body.Value)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	h.logger.Info("admin updated setting", "key", input.Key, "by", contextx.Session(ctx).Subject)
	return &PutResponse{Body: toDTO(*row)}, nil
}

func (h *Handler) TestSMTPHandler(ctx context.Context, input *TestSMTPRequest) (*TestSMTPResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	host := hostOf(contextx.Origin(ctx))
	report, err := h.service.SendTestEmail(ctx, input.Body.To, host)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &TestSMTPResponse{}
	resp.Body.Success = true
	resp.Body.Accepted = report.Accepted
	resp.Body.Message = "Test email sent"
	return resp, nil
}

func hostOf(origin string) string {
	if origin == "" {
		return "localhost"
	}
	if u, err := siteurl.Host(origin); err == nil {
		return u
	}
	return origin
}
